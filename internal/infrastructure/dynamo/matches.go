package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/pkg/id"
)

// MatchRepo provides typed DynamoDB operations for the matches table.
type MatchRepo struct {
	client    API
	tableName string
}

func NewMatchRepo(client API, tableName string) *MatchRepo {
	return &MatchRepo{client: client, tableName: tableName}
}

// Create assigns the match id and creation time. An empty status defaults to Pending.
func (r *MatchRepo) Create(ctx context.Context, m *domain.Match) error {
	m.MatchID = id.New()
	m.CreatedAt = time.Now().UTC()
	if m.Status == "" {
		m.Status = domain.MatchPending
	}
	if err := putNew(ctx, r.client, r.tableName, fieldMatchID, m); err != nil {
		return fmt.Errorf("put match: %w", err)
	}
	return nil
}

func (r *MatchRepo) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	var m domain.Match
	if err := getItem(ctx, r.client, r.tableName, strKey(fieldMatchID, matchID), "match "+matchID, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) Find(ctx context.Context, q domain.Query) ([]domain.Match, error) {
	st, err := compile(q, matchIndexes)
	if err != nil {
		return nil, err
	}
	raw, err := collect(ctx, r.client, r.tableName, st)
	if err != nil {
		return nil, fmt.Errorf("find matches: %w", err)
	}
	matches := []domain.Match{}
	if err := attributevalue.UnmarshalListOfMaps(raw, &matches); err != nil {
		return nil, err
	}
	if q.OrderBy == domain.FieldCreatedAt {
		sortByTime(matches, func(m domain.Match) time.Time { return m.CreatedAt }, q.Descending)
	}
	return matches, nil
}

func (r *MatchRepo) UpdateStatus(ctx context.Context, matchID string, status domain.MatchStatus) error {
	return updateExisting(ctx, r.client, r.tableName, fieldMatchID, matchID, "match "+matchID,
		map[string]interface{}{
			fieldStatus:    status,
			fieldUpdatedAt: time.Now().UTC(),
		})
}
