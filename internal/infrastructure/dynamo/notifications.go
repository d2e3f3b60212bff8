package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/pkg/id"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    API
	tableName string
}

func NewNotificationRepo(client API, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	n.NotificationID = id.New()
	n.CreatedAt = time.Now().UTC()
	if err := putNew(ctx, r.client, r.tableName, fieldNotificationID, n); err != nil {
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	var n domain.Notification
	key := strKey(fieldNotificationID, notificationID)
	if err := getItem(ctx, r.client, r.tableName, key, "notification "+notificationID, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Find queries the user_id-created_at GSI when the query pins a user.
func (r *NotificationRepo) Find(ctx context.Context, q domain.Query) ([]domain.Notification, error) {
	st, err := compile(q, notificationIndexes)
	if err != nil {
		return nil, err
	}
	raw, err := collect(ctx, r.client, r.tableName, st)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	out := []domain.Notification{}
	if err := attributevalue.UnmarshalListOfMaps(raw, &out); err != nil {
		return nil, err
	}
	if q.OrderBy == domain.FieldCreatedAt {
		sortByTime(out, func(n domain.Notification) time.Time { return n.CreatedAt }, q.Descending)
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string, readAt time.Time) error {
	return updateExisting(ctx, r.client, r.tableName, fieldNotificationID, notificationID, "notification "+notificationID,
		map[string]interface{}{
			fieldIsRead: true,
			fieldReadAt: readAt.UTC(),
		})
}
