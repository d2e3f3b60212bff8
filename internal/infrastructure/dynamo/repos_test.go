package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lost-found-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records inputs and serves canned outputs. Query and Scan pages are consumed in order.
type fakeAPI struct {
	getOut    *dynamodb.GetItemOutput
	putErr    error
	updateErr error
	pages     []*dynamodb.QueryOutput
	scans     []*dynamodb.ScanOutput

	puts    []*dynamodb.PutItemInput
	updates []*dynamodb.UpdateItemInput
	queries []*dynamodb.QueryInput
	scanIns []*dynamodb.ScanInput
}

func (f *fakeAPI) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getOut == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.getOut, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	out := f.pages[0]
	f.pages = f.pages[1:]
	return out, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanIns = append(f.scanIns, in)
	out := f.scans[0]
	f.scans = f.scans[1:]
	return out, nil
}

func marshal(t *testing.T, v interface{}) map[string]types.AttributeValue {
	t.Helper()
	m, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return m
}

func TestItemRepo_CreateAssignsIDAndDate(t *testing.T) {
	api := &fakeAPI{}
	it := &domain.Item{Title: "Blue Backpack", Status: domain.StatusLost}

	require.NoError(t, NewItemRepo(api, "items").Create(context.Background(), it))

	assert.NotEmpty(t, it.ItemID)
	assert.False(t, it.Date.IsZero())
	require.Len(t, api.puts, 1)
	assert.Equal(t, "attribute_not_exists(#k)", *api.puts[0].ConditionExpression)
	assert.Equal(t, &types.AttributeValueMemberS{Value: it.ItemID}, api.puts[0].Item["item_id"])
	assert.IsType(t, &types.AttributeValueMemberNULL{}, api.puts[0].Item["image_url"])
}

func TestItemRepo_GetMissingIsNotFound(t *testing.T) {
	_, err := NewItemRepo(&fakeAPI{}, "items").Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestItemRepo_FindPaginatesAndSortsNewestFirst(t *testing.T) {
	older := domain.Item{ItemID: "a", Title: "Old", Status: domain.StatusFound, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := domain.Item{ItemID: "b", Title: "New", Status: domain.StatusFound, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	api := &fakeAPI{pages: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{marshal(t, older)}, LastEvaluatedKey: strKey("item_id", "a")},
		{Items: []map[string]types.AttributeValue{marshal(t, newer)}},
	}}

	q := domain.NewQuery().Eq(domain.FieldStatus, domain.StatusFound).Newest(domain.FieldDate)
	got, err := NewItemRepo(api, "items").Find(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ItemID)
	assert.Equal(t, "a", got[1].ItemID)
	require.Len(t, api.queries, 2)
	assert.Equal(t, "status-date-index", aws.ToString(api.queries[0].IndexName))
	assert.Equal(t, strKey("item_id", "a"), api.queries[1].ExclusiveStartKey)
}

func TestItemRepo_FindWithoutIndexScans(t *testing.T) {
	api := &fakeAPI{scans: []*dynamodb.ScanOutput{{}}}

	got, err := NewItemRepo(api, "items").Find(context.Background(), domain.NewQuery())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.Len(t, api.scanIns, 1)
	assert.Nil(t, api.scanIns[0].FilterExpression)
}

func TestItemRepo_CountSumsPages(t *testing.T) {
	api := &fakeAPI{pages: []*dynamodb.QueryOutput{
		{Count: 3, LastEvaluatedKey: strKey("item_id", "x")},
		{Count: 2},
	}}

	n, err := NewItemRepo(api, "items").Count(context.Background(), domain.NewQuery().Eq(domain.FieldPostedBy, "alice"))

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, types.SelectCount, api.queries[0].Select)
	assert.Equal(t, "posted_by-date-index", aws.ToString(api.queries[0].IndexName))
}

func TestItemRepo_UpdateStatusMissingIsNotFound(t *testing.T) {
	api := &fakeAPI{updateErr: &types.ConditionalCheckFailedException{}}

	err := NewItemRepo(api, "items").UpdateStatus(context.Background(), "gone", domain.StatusReturned)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.Len(t, api.updates, 1)
	assert.Equal(t, "attribute_exists(#k)", *api.updates[0].ConditionExpression)
	assert.Equal(t, "item_id", api.updates[0].ExpressionAttributeNames["#k"])
}

func TestMatchRepo_CreateDefaultsToPending(t *testing.T) {
	api := &fakeAPI{}
	m := &domain.Match{LostItemID: "a", FoundItemID: "b", ConfidenceScore: 70}

	require.NoError(t, NewMatchRepo(api, "matches").Create(context.Background(), m))

	assert.NotEmpty(t, m.MatchID)
	assert.Equal(t, domain.MatchPending, m.Status)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestMatchRepo_UpdateStatusStampsUpdatedAt(t *testing.T) {
	api := &fakeAPI{}

	require.NoError(t, NewMatchRepo(api, "matches").UpdateStatus(context.Background(), "m1", domain.MatchConfirmed))

	require.Len(t, api.updates, 1)
	u := api.updates[0]
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", *u.UpdateExpression)
	assert.Equal(t, "status", u.ExpressionAttributeNames["#f0"])
	assert.Equal(t, "updated_at", u.ExpressionAttributeNames["#f1"])
}

func TestNotificationRepo_MarkRead(t *testing.T) {
	api := &fakeAPI{}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, NewNotificationRepo(api, "notifications").MarkRead(context.Background(), "n1", at))

	u := api.updates[0]
	assert.Equal(t, "is_read", u.ExpressionAttributeNames["#f0"])
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, u.ExpressionAttributeValues[":v0"])
	assert.Equal(t, "read_at", u.ExpressionAttributeNames["#f1"])
}

func TestUserRepo_GetRoundTrip(t *testing.T) {
	stored := domain.UserProfile{UserID: "u1", Email: "a@example.com", DisplayName: "Alice"}
	api := &fakeAPI{getOut: &dynamodb.GetItemOutput{Item: marshal(t, stored)}}

	got, err := NewUserRepo(api, "users").Get(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.Nil(t, got.Phone)
}
