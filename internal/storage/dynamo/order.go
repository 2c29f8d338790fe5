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

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by a DynamoDB
// table keyed by orderID.
type OrderRepository struct {
	client *dynamodb.Client
	table  string
}

// NewOrderRepository returns an OrderRepository writing to the given
// table.
func NewOrderRepository(client *dynamodb.Client, table string) *OrderRepository {
	return &OrderRepository{client: client, table: table}
}

// orderRecord is the stored item shape. Money is stored as DynamoDB
// numbers; createdAt as an ISO-8601 string.
type orderRecord struct {
	OrderID     string       `dynamodbav:"orderID"`
	UserEmail   string       `dynamodbav:"userEmail"`
	Items       []itemRecord `dynamodbav:"items"`
	TotalAmount float64      `dynamodbav:"totalAmount"`
	OrderStatus string       `dynamodbav:"orderStatus"`
	CreatedAt   string       `dynamodbav:"createdAt"`
}

type itemRecord struct {
	Name     string  `dynamodbav:"name"`
	Price    float64 `dynamodbav:"price"`
	Quantity int     `dynamodbav:"quantity"`
}

func newOrderRecord(o *order.Order) orderRecord {
	items := make([]itemRecord, len(o.Items))
	for i, item := range o.Items {
		items[i] = itemRecord{
			Name:     item.Name,
			Price:    item.Price.InexactFloat64(),
			Quantity: item.Quantity,
		}
	}
	return orderRecord{
		OrderID:     o.ID,
		UserEmail:   o.UserEmail,
		Items:       items,
		TotalAmount: o.TotalAmount.InexactFloat64(),
		OrderStatus: o.Status,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	av, err := attributevalue.MarshalMap(newOrderRecord(o))
	if err != nil {
		return fmt.Errorf("marshaling order %q: %w", o.ID, err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}
