package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/pkg/id"
)

// ItemRepo provides typed DynamoDB operations for the items table.
type ItemRepo struct {
	client    API
	tableName string
}

func NewItemRepo(client API, tableName string) *ItemRepo {
	return &ItemRepo{client: client, tableName: tableName}
}

// Create assigns the item id and posting date, then stores it.
func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	it.ItemID = id.New()
	it.Date = time.Now().UTC()
	if err := putNew(ctx, r.client, r.tableName, fieldItemID, it); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (r *ItemRepo) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	var it domain.Item
	if err := getItem(ctx, r.client, r.tableName, strKey(fieldItemID, itemID), "item "+itemID, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepo) Find(ctx context.Context, q domain.Query) ([]domain.Item, error) {
	st, err := compile(q, itemIndexes)
	if err != nil {
		return nil, err
	}
	raw, err := collect(ctx, r.client, r.tableName, st)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	items := []domain.Item{}
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, err
	}
	if q.OrderBy == domain.FieldDate {
		sortByTime(items, func(it domain.Item) time.Time { return it.Date }, q.Descending)
	}
	return items, nil
}

// Count returns how many items satisfy q without transferring them.
func (r *ItemRepo) Count(ctx context.Context, q domain.Query) (int, error) {
	st, err := compile(q, itemIndexes)
	if err != nil {
		return 0, err
	}
	n, err := count(ctx, r.client, r.tableName, st)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (r *ItemRepo) UpdateStatus(ctx context.Context, itemID string, status domain.ItemStatus) error {
	return updateExisting(ctx, r.client, r.tableName, fieldItemID, itemID, "item "+itemID,
		map[string]interface{}{fieldStatus: status})
}
