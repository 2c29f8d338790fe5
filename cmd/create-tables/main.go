// Command create-tables provisions the DynamoDB tables the intake
// service writes to. Safe to re-run: existing tables are left alone.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/order-intake/internal/storage/dynamo"
)

func main() {
	var (
		region             string
		endpoint           string
		ordersTable        string
		notificationsTable string
	)

	flag.StringVar(&region, "region", "us-east-1", "AWS region (or AWS_REGION env)")
	flag.StringVar(&endpoint, "endpoint", "", "DynamoDB endpoint override for dynamodb-local (or DYNAMODB_ENDPOINT env)")
	flag.StringVar(&ordersTable, "orders-table", "orders", "orders table name (or ORDERS_TABLE env)")
	flag.StringVar(&notificationsTable, "notifications-table", "notifications", "notifications table name (or NOTIFICATIONS_TABLE env)")
	flag.Parse()

	if v := os.Getenv("AWS_REGION"); v != "" && region == "us-east-1" {
		region = v
	}
	if endpoint == "" {
		endpoint = os.Getenv("DYNAMODB_ENDPOINT")
	}
	if v := os.Getenv("ORDERS_TABLE"); v != "" && ordersTable == "orders" {
		ordersTable = v
	}
	if v := os.Getenv("NOTIFICATIONS_TABLE"); v != "" && notificationsTable == "notifications" {
		notificationsTable = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, region, endpoint, ordersTable, notificationsTable); err != nil {
		slog.Error("create tables failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("tables ready")
}

func run(ctx context.Context, region, endpoint, ordersTable, notificationsTable string) error {
	client, err := dynamo.NewClient(ctx, dynamo.Config{
		Region:   region,
		Endpoint: endpoint,
	})
	if err != nil {
		return errors.Wrap(err, "create client")
	}

	tables := map[string]string{
		ordersTable:        "orderID",
		notificationsTable: "notificationId",
	}

	g, ctx := errgroup.WithContext(ctx)
	for table, key := range tables {
		g.Go(func() error {
			return createTable(ctx, client, table, key)
		})
	}
	return g.Wait()
}

// createTable creates a single on-demand table with a string hash key
// and waits until it is active.
func createTable(ctx context.Context, client *dynamodb.Client, table, key string) error {
	slog.Info("creating table", slog.String("table", table), slog.String("key", key))

	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{{
			AttributeName: aws.String(key),
			AttributeType: types.ScalarAttributeTypeS,
		}},
		KeySchema: []types.KeySchemaElement{{
			AttributeName: aws.String(key),
			KeyType:       types.KeyTypeHash,
		}},
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			slog.Info("table already exists", slog.String("table", table))
			return nil
		}
		return errors.Wrapf(err, "create table %s", table)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	}, 2*time.Minute); err != nil {
		return errors.Wrapf(err, "wait for table %s", table)
	}

	slog.Info("table created", slog.String("table", table))
	return nil
}
