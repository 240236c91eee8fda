package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"umkmorder/internal/entity"
	storedynamo "umkmorder/pkg/storage/dynamodb"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

const (
	_dynamoMaxUpdateAttempts = 10

	// DynamoMaxDocumentBytes is the largest doc DynamoStore writes. DynamoDB
	// caps an item at 400 KB; 1 KB is left for pk, version and updated_at.
	DynamoMaxDocumentBytes = 399 * 1024
)

var (
	_ DocumentStore = (*DynamoStore)(nil)

	// ErrDocumentTooLarge is returned instead of sending an item DynamoDB
	// would reject.
	ErrDocumentTooLarge = errors.New("document exceeds the dynamodb item size limit")

	errDynamoContention = errors.New("document version changed concurrently")
)

type dynamoDocument struct {
	PK        string `dynamodbav:"pk"`
	Doc       string `dynamodbav:"doc"`
	Version   int64  `dynamodbav:"version"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// DynamoStore keeps each document as an item {pk, doc, version}. Update
// writes conditionally on the version it read.
type DynamoStore struct {
	client storedynamo.API
	table  string
	now    func() time.Time
}

func NewDynamoStore(client storedynamo.API, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table, now: time.Now}
}

func (s *DynamoStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "repository.DynamoStore.Get"

	item, err := s.load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%s: %s: %w", op, key, entity.ErrDataNotFound)
	}
	return []byte(item.Doc), nil
}

func (s *DynamoStore) Put(ctx context.Context, key string, doc []byte) error {
	const op = "repository.DynamoStore.Put"

	current, err := s.load(ctx, key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var version int64
	if current != nil {
		version = current.Version
	}

	if err = s.store(ctx, key, doc, version, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *DynamoStore) Update(
	ctx context.Context,
	key string,
	fn func(current []byte) ([]byte, error),
) error {
	const op = "repository.DynamoStore.Update"

	for range _dynamoMaxUpdateAttempts {
		item, err := s.load(ctx, key)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		var (
			current []byte
			version int64
		)
		if item != nil {
			current, version = []byte(item.Doc), item.Version
		}

		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}

		err = s.store(ctx, key, next, version, true)
		if errors.Is(err, errDynamoContention) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	return fmt.Errorf("%s: %s: %w", op, key, errDynamoContention)
}

func (s *DynamoStore) load(ctx context.Context, key string) (*dynamoDocument, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", describeAPIError(err))
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var item dynamoDocument
	if err = attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &item, nil
}

// store writes version+1. With conditional set the write only succeeds when
// the stored version still equals version (or the item is absent for 0).
func (s *DynamoStore) store(ctx context.Context, key string, doc []byte, version int64, conditional bool) error {
	if len(doc) > DynamoMaxDocumentBytes {
		return fmt.Errorf("%s is %d bytes, limit %d: %w", key, len(doc), DynamoMaxDocumentBytes, ErrDocumentTooLarge)
	}

	item, err := attributevalue.MarshalMap(dynamoDocument{
		PK:        key,
		Doc:       string(doc),
		Version:   version + 1,
		UpdatedAt: s.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}
	if conditional {
		if version == 0 {
			input.ConditionExpression = aws.String("attribute_not_exists(pk)")
		} else {
			input.ConditionExpression = aws.String("version = :v")
			input.ExpressionAttributeValues = map[string]types.AttributeValue{
				":v": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", version)},
			}
		}
	}

	if _, err = s.client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return errDynamoContention
		}
		return fmt.Errorf("put item: %w", describeAPIError(err))
	}
	return nil
}

// describeAPIError prefixes service errors with their AWS error code.
func describeAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	return err
}
