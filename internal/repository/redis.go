package repository

import (
	"context"
	"errors"
	"fmt"

	"umkmorder/internal/entity"

	"github.com/redis/go-redis/v9"
)

const _redisMaxUpdateAttempts = 10

var (
	_ DocumentStore = (*RedisStore)(nil)

	errRedisContention = errors.New("document changed concurrently")
)

// RedisStore keeps each document in a string key. Update uses optimistic
// WATCH/MULTI and retries when another writer got in first.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "repository.RedisStore.Get"

	doc, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %s: %w", op, key, entity.ErrDataNotFound)
		}
		return nil, fmt.Errorf("%s: get: %w", op, err)
	}
	return doc, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, doc []byte) error {
	const op = "repository.RedisStore.Put"

	if err := s.client.Set(ctx, s.key(key), doc, 0).Err(); err != nil {
		return fmt.Errorf("%s: set: %w", op, err)
	}
	return nil
}

func (s *RedisStore) Update(
	ctx context.Context,
	key string,
	fn func(current []byte) ([]byte, error),
) error {
	const op = "repository.RedisStore.Update"

	redisKey := s.key(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, redisKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("get: %w", err)
		}
		if errors.Is(err, redis.Nil) {
			current = nil
		}

		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, next, 0)
			return nil
		})
		if errors.Is(err, redis.TxFailedErr) {
			return errRedisContention
		}
		return err
	}

	for range _redisMaxUpdateAttempts {
		err := s.client.Watch(ctx, txf, redisKey)
		if errors.Is(err, errRedisContention) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	return fmt.Errorf("%s: %s: %w", op, key, errRedisContention)
}
