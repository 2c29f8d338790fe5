// Package dynamo implements the order and notification repositories on
// DynamoDB, the key-value store the service writes to by default.
package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-faster/errors"
)

// Config holds the DynamoDB connection settings.
type Config struct {
	Region string
	// Endpoint overrides the service endpoint, for dynamodb-local.
	Endpoint string
}

// NewClient creates a DynamoDB client from the default AWS credential
// chain. Constructed once at process start; safe for concurrent use.
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Ping performs a cheap call to verify connectivity, for readiness
// probes.
func Ping(ctx context.Context, client *dynamodb.Client) error {
	_, err := client.ListTables(ctx, &dynamodb.ListTablesInput{
		Limit: aws.Int32(1),
	})
	return err
}
