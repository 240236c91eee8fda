package repository_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"umkmorder/internal/entity"
	"umkmorder/internal/repository"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items keyed by pk and understands the two condition
// expressions DynamoStore issues.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	// beforePut runs once before the next PutItem, outside the lock.
	beforePut func()
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) GetItem(_ context.Context, params *dyn.GetItemInput, _ ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pk := params.Key["pk"].(*types.AttributeValueMemberS).Value
	return &dyn.GetItemOutput{Item: f.items[pk]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dyn.PutItemInput, _ ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	if hook := f.beforePut; hook != nil {
		f.beforePut = nil
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	pk := params.Item["pk"].(*types.AttributeValueMemberS).Value
	existing, exists := f.items[pk]

	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_not_exists(pk)":
			if exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "version = :v":
			want := params.ExpressionAttributeValues[":v"].(*types.AttributeValueMemberN).Value
			if !exists || existing["version"].(*types.AttributeValueMemberN).Value != want {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, fmt.Errorf("unexpected condition %q", *params.ConditionExpression)
		}
	}

	f.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func TestDynamoStore_GetPut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewDynamoStore(newFakeDynamo(), "documents")

	_, err := store.Get(ctx, "umkmOrders")
	require.ErrorIs(t, err, entity.ErrDataNotFound)

	require.NoError(t, store.Put(ctx, "umkmOrders", []byte(`[1]`)))
	require.NoError(t, store.Put(ctx, "umkmOrders", []byte(`[1,2]`)))

	doc, err := store.Get(ctx, "umkmOrders")
	require.NoError(t, err)
	require.JSONEq(t, `[1,2]`, string(doc))
}

func TestDynamoStore_RejectsOversizeDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeDynamo()
	store := repository.NewDynamoStore(fake, "documents")

	require.NoError(t, store.Put(ctx, "umkmOrders", []byte(`[1]`)))

	oversize := []byte(`"` + strings.Repeat("x", repository.DynamoMaxDocumentBytes) + `"`)

	err := store.Put(ctx, "umkmOrders", oversize)
	require.ErrorIs(t, err, repository.ErrDocumentTooLarge)

	err = store.Update(ctx, "umkmOrders", func([]byte) ([]byte, error) { return oversize, nil })
	require.ErrorIs(t, err, repository.ErrDocumentTooLarge)

	doc, err := store.Get(ctx, "umkmOrders")
	require.NoError(t, err)
	require.JSONEq(t, `[1]`, string(doc))
}

func TestDynamoStore_UpdateRetriesOnVersionConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeDynamo()
	store := repository.NewDynamoStore(fake, "documents")
	require.NoError(t, store.Put(ctx, "k", []byte(`"a"`)))

	fake.beforePut = func() {
		require.NoError(t, repository.NewDynamoStore(fake, "documents").Put(ctx, "k", []byte(`"b"`)))
	}

	var seen []string
	err := store.Update(ctx, "k", func(current []byte) ([]byte, error) {
		seen = append(seen, string(current))
		return append(current[:len(current)-1:len(current)-1], []byte(`+"`)...), nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{`"a"`, `"b"`}, seen)

	doc, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `"b+"`, string(doc))
}

func TestDynamoStore_UpdateWithOrderRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewOrderRepository(repository.NewDynamoStore(newFakeDynamo(), "documents"), "")

	order := generateFakeOrder("SMB101626010")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	_, err = repo.Create(ctx, generateFakeOrder("smb101626010"))
	require.True(t, errors.Is(err, entity.ErrConflictingData))

	got, err := repo.GetByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	require.Equal(t, order, got)
}
