package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/xenking/order-intake/internal/domain/order"
)

var _ order.NotificationRepository = (*NotificationRepository)(nil)

// NotificationRepository implements order.NotificationRepository backed
// by a DynamoDB table keyed by notificationId.
type NotificationRepository struct {
	client *dynamodb.Client
	table  string
}

// NewNotificationRepository returns a NotificationRepository writing to
// the given table.
func NewNotificationRepository(client *dynamodb.Client, table string) *NotificationRepository {
	return &NotificationRepository{client: client, table: table}
}

type notificationRecord struct {
	NotificationID string `dynamodbav:"notificationId"`
	UserEmail      string `dynamodbav:"userEmail"`
	Message        string `dynamodbav:"message"`
	IsRead         bool   `dynamodbav:"isRead"`
	CreatedAt      string `dynamodbav:"createdAt"`
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *order.Notification) error {
	av, err := attributevalue.MarshalMap(notificationRecord{
		NotificationID: n.ID,
		UserEmail:      n.UserEmail,
		Message:        n.Message,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling notification %q: %w", n.ID, err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("creating notification %q: %w", n.ID, err)
	}

	return nil
}
