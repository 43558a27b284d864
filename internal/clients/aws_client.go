package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/spacesedan/trendeval/config"
)

var (
	awsCfg  aws.Config
	awsErr  error
	awsOnce sync.Once
)

func GetAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsOnce.Do(func() {
		slog.Info("[AWSClient] Initializing AWS Config...")
		awsCfg, awsErr = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if awsErr != nil {
			awsErr = fmt.Errorf("[AWSClient] failed to load AWS config: %w", awsErr)
			return
		}
		slog.Info("[AWSClient] AWS Config Initialized", slog.String("region", cfg.Region))
	})
	return awsCfg, awsErr
}

// GetDynamoDBClient points the client at AWS_ENDPOINT when set, e.g. a
// local DynamoDB.
func GetDynamoDBClient(ctx context.Context, cfg config.AWSConfig) (*dynamodb.Client, error) {
	base, err := GetAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(base, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
