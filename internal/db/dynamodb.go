package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/trendeval/internal/models"
)

// EvaluationTTL is how long a stored evaluation is kept.
const EvaluationTTL = 90 * 24 * time.Hour

// PutItemAPI is the part of the DynamoDB client the store needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// EvaluationStore writes evaluation records to a DynamoDB table keyed by
// experiment_id and run_id.
type EvaluationStore struct {
	client    PutItemAPI
	tableName string
}

func NewEvaluationStore(client PutItemAPI, tableName string) *EvaluationStore {
	return &EvaluationStore{client: client, tableName: tableName}
}

func (s *EvaluationStore) Name() string {
	return "dynamodb"
}

func (s *EvaluationStore) Close() {}

// EvaluationToDynamoDBItem marshals rec and adds the ttl attribute.
func EvaluationToDynamoDBItem(rec models.EvaluationRecord) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to marshal evaluation: %w", err)
	}
	item["ttl"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.CreatedAt.Add(EvaluationTTL).Unix())}
	return item, nil
}

func (s *EvaluationStore) Publish(ctx context.Context, rec models.EvaluationRecord) error {
	item, err := EvaluationToDynamoDBItem(rec)
	if err != nil {
		return err
	}

	backoff := 500 * time.Millisecond
	for attempt := 1; ; attempt++ {
		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      item,
		})
		if err == nil || attempt == 3 {
			break
		}
		slog.Warn("[DynamoDB] Retrying evaluation write...",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to store evaluation: %w", err)
	}

	slog.Info("[DynamoDB] Successfully stored evaluation",
		slog.String("table", s.tableName),
		slog.String("run_id", rec.RunID))
	return nil
}
