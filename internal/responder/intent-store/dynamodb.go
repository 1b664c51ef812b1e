package intentstore

import (
	"context"
	"fmt"

	apperrors "messenger-responder/internal/common/errors"
	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const BackendDynamoDB = "dynamodb"

// DynamoDBAPI is the subset of *dynamodb.Client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBStore reads intent records from a table keyed on a string partition key.
type DynamoDBStore struct {
	client       DynamoDBAPI
	table        string
	partitionKey string
	logger       logger.Logger
}

func NewDynamoDBStore(client DynamoDBAPI, table, partitionKey string, log logger.Logger) *DynamoDBStore {
	return &DynamoDBStore{
		client:       client,
		table:        table,
		partitionKey: partitionKey,
		logger:       log.WithFields(map[string]interface{}{"component": "intent-store", "backend": BackendDynamoDB}),
	}
}

func (s *DynamoDBStore) GetIntent(ctx context.Context, intent string) (*models.IntentRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			s.partitionKey: &types.AttributeValueMemberS{Value: intent},
		},
	})
	if err != nil {
		return nil, apperrors.NewStoreLookupFailedError(BackendDynamoDB, err)
	}
	if len(out.Item) == 0 {
		return nil, apperrors.NewIntentNotFoundError(intent)
	}

	var item map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewMalformedIntentRecordError(intent, err.Error())
	}

	rec, err := models.RecordFromItem(intent, item, s.partitionKey)
	if err != nil {
		return nil, apperrors.NewMalformedIntentRecordError(intent, err.Error())
	}

	s.logger.Debug("intent record loaded", map[string]interface{}{
		"intent": intent,
		"direct": rec.IsDirect(),
	})
	return rec, nil
}

func (s *DynamoDBStore) PutIntent(ctx context.Context, record *models.IntentRecord) error {
	item, err := attributevalue.MarshalMap(record.Item(s.partitionKey))
	if err != nil {
		return fmt.Errorf("marshal intent %s: %w", record.Intent, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put intent %s: %w", record.Intent, err)
	}
	return nil
}
