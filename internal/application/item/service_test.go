package item

import (
	"context"
	"errors"
	"testing"

	"github.com/lost-found-api/internal/application/match"
	"github.com/lost-found-api/internal/application/notification"
	"github.com/lost-found-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockItemStore struct{ mock.Mock }

func (m *mockItemStore) Create(ctx context.Context, it *domain.Item) error {
	err := m.Called(ctx, it).Error(0)
	if err == nil {
		it.ItemID = "new-item"
	}
	return err
}
func (m *mockItemStore) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	args := m.Called(ctx, itemID)
	if it, _ := args.Get(0).(*domain.Item); it != nil {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockItemStore) Find(ctx context.Context, q domain.Query) ([]domain.Item, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]domain.Item)
	return items, args.Error(1)
}

type mockMatcher struct{ mock.Mock }

func (m *mockMatcher) Generate(ctx context.Context, it domain.Item) match.GenerateResult {
	return m.Called(ctx, it).Get(0).(match.GenerateResult)
}

// --- helpers ---

func validReq() domain.CreateItemRequest {
	return domain.CreateItemRequest{
		Title:    "  Blue Backpack ",
		Category: "Bags",
		Status:   "Lost",
		Location: "Library",
	}
}

// wired builds the item service on top of real match and notification services over memStore.
func wired(store *memStore, images *fakeImages) (Service, match.Service, notification.Service) {
	notifSvc := notification.NewService(memNotifications{store}, nil)
	matchSvc := match.NewService(match.ServiceDeps{
		ItemRepo:  memItems{store},
		MatchRepo: memMatches{store},
		Notifier:  notifSvc,
	})
	itemSvc := NewService(ServiceDeps{
		ItemRepo:   memItems{store},
		ImageStore: images,
		Matcher:    matchSvc,
	})
	return itemSvc, matchSvc, notifSvc
}

// --- validation tests ---

func TestCreate_ValidationRejectsBeforeAnySideEffect(t *testing.T) {
	cases := map[string]func(r *domain.CreateItemRequest){
		"blank title":      func(r *domain.CreateItemRequest) { r.Title = "   " },
		"missing category": func(r *domain.CreateItemRequest) { r.Category = "" },
		"missing status":   func(r *domain.CreateItemRequest) { r.Status = "" },
		"lowercase status": func(r *domain.CreateItemRequest) { r.Status = "lost" },
		"returned status":  func(r *domain.CreateItemRequest) { r.Status = "Returned" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo, images, matcher := &mockItemStore{}, &fakeImages{}, &mockMatcher{}
			req := validReq()
			mutate(&req)

			svc := NewService(ServiceDeps{ItemRepo: repo, ImageStore: images, Matcher: matcher})
			_, err := svc.Create(context.Background(), CreateInput{
				Request:  req,
				PosterID: "alice",
				Image:    &Image{Data: []byte("png"), Filename: "a.png", ContentType: "image/png"},
			})

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrBadRequest))
			assert.Zero(t, images.uploads)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_UploadFailureAbortsCreation(t *testing.T) {
	repo, matcher := &mockItemStore{}, &mockMatcher{}
	images := &fakeImages{err: errors.New("bucket missing")}

	svc := NewService(ServiceDeps{ItemRepo: repo, ImageStore: images, Matcher: matcher})
	_, err := svc.Create(context.Background(), CreateInput{
		Request:  validReq(),
		PosterID: "alice",
		Image:    &Image{Data: []byte("png"), Filename: "a.png", ContentType: "image/png"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.ErrorContains(t, err, "bucket missing")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	matcher.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestCreate_TrimsAndStoresImageURL(t *testing.T) {
	repo, matcher, images := &mockItemStore{}, &mockMatcher{}, &fakeImages{}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(it *domain.Item) bool {
		return it.Title == "Blue Backpack" && it.PostedBy == "alice" && it.Status == domain.StatusLost && it.ImageURL != nil
	})).Return(nil)
	matcher.On("Generate", mock.Anything, mock.Anything).Return(match.GenerateResult{})

	svc := NewService(ServiceDeps{ItemRepo: repo, ImageStore: images, Matcher: matcher})
	res, err := svc.Create(context.Background(), CreateInput{
		Request:  validReq(),
		PosterID: "alice",
		Image:    &Image{Data: []byte("png"), Filename: "bag.png", ContentType: "image/png"},
	})

	require.NoError(t, err)
	assert.Equal(t, "https://images.example/items/1-bag.png", *res.Item.ImageURL)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.MatchWarning)
	repo.AssertExpectations(t)
}

func TestCreate_DegradedMatchingStillCreatesItem(t *testing.T) {
	repo, matcher := &mockItemStore{}, &mockMatcher{}
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	matcher.On("Generate", mock.Anything, mock.Anything).
		Return(match.GenerateResult{Matches: []domain.GeneratedMatch{}, Err: errors.New("scan failed")})

	svc := NewService(ServiceDeps{ItemRepo: repo, ImageStore: &fakeImages{}, Matcher: matcher})
	res, err := svc.Create(context.Background(), CreateInput{Request: validReq(), PosterID: "alice"})

	require.NoError(t, err)
	assert.Equal(t, "new-item", res.Item.ItemID)
	assert.Empty(t, res.Matches)
	assert.NotEmpty(t, res.MatchWarning)
}

func TestCreate_StoreErrorPropagates(t *testing.T) {
	repo, matcher := &mockItemStore{}, &mockMatcher{}
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	svc := NewService(ServiceDeps{ItemRepo: repo, ImageStore: &fakeImages{}, Matcher: matcher})
	_, err := svc.Create(context.Background(), CreateInput{Request: validReq(), PosterID: "alice"})

	assert.ErrorContains(t, err, "throttled")
	matcher.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

// --- List tests ---

func TestList_BuildsPredicates(t *testing.T) {
	repo := &mockItemStore{}
	want := domain.NewQuery().Eq(domain.FieldStatus, "Found").Eq(domain.FieldCategory, "Bags").Newest(domain.FieldDate)
	repo.On("Find", mock.Anything, want).Return([]domain.Item{{ItemID: "i1"}}, nil)

	got, err := NewService(ServiceDeps{ItemRepo: repo}).List(context.Background(), domain.ItemFilter{Status: "Found", Category: "Bags"})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestList_NoFilters(t *testing.T) {
	repo := &mockItemStore{}
	repo.On("Find", mock.Anything, domain.NewQuery().Newest(domain.FieldDate)).Return([]domain.Item{}, nil)

	_, err := NewService(ServiceDeps{ItemRepo: repo}).List(context.Background(), domain.ItemFilter{})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// --- end-to-end scenarios over the in-memory store ---

func TestScenario_BackpackMatchAndConfirmation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	itemSvc, matchSvc, notifSvc := wired(store, &fakeImages{})

	a, err := itemSvc.Create(ctx, CreateInput{PosterID: "alice", Request: domain.CreateItemRequest{
		Title: "Blue Backpack", Category: "Bags", Status: "Lost", Location: "Library",
	}})
	require.NoError(t, err)
	assert.Empty(t, a.Matches)

	b, err := itemSvc.Create(ctx, CreateInput{PosterID: "bob", Request: domain.CreateItemRequest{
		Title: "Backpack Blue", Category: "Bags", Status: "Found", Location: "Library",
	}})
	require.NoError(t, err)
	require.Len(t, b.Matches, 1)
	assert.GreaterOrEqual(t, b.Matches[0].ConfidenceScore, 60)
	assert.Equal(t, a.Item.ItemID, b.Matches[0].MatchedItem.ItemID)

	m, err := memMatches{store}.Get(ctx, b.Matches[0].MatchID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchPending, m.Status)
	assert.Equal(t, a.Item.ItemID, m.LostItemID)
	assert.Equal(t, b.Item.ItemID, m.FoundItemID)

	// exactly one notification, addressed to the poster of the pre-existing item
	require.Len(t, store.notifications, 1)
	alices, err := notifSvc.List(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, alices, 1)
	assert.Equal(t, m.MatchID, alices[0].MatchID)
	bobs, err := notifSvc.List(ctx, "bob", nil)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	// a stranger may not resolve the match
	_, err = matchSvc.UpdateStatus(ctx, m.MatchID, "Confirmed", "mallory")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	// confirming twice leaves both items Returned
	for i := 0; i < 2; i++ {
		_, err = matchSvc.UpdateStatus(ctx, m.MatchID, "Confirmed", "alice")
		require.NoError(t, err)
	}
	for _, id := range []string{a.Item.ItemID, b.Item.ItemID} {
		it, err := itemSvc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReturned, it.Status)
	}

	// read acknowledgement is idempotent
	_, err = notifSvc.MarkRead(ctx, alices[0].NotificationID, "alice")
	require.NoError(t, err)
	n, err := notifSvc.MarkRead(ctx, alices[0].NotificationID, "alice")
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	unread := false
	left, err := notifSvc.List(ctx, "alice", &unread)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestScenario_DifferentCategoryProducesNoMatch(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	itemSvc, _, _ := wired(store, &fakeImages{})

	_, err := itemSvc.Create(ctx, CreateInput{PosterID: "alice", Request: domain.CreateItemRequest{
		Title: "Blue Backpack", Category: "Bags", Status: "Lost", Location: "Library",
	}})
	require.NoError(t, err)
	c, err := itemSvc.Create(ctx, CreateInput{PosterID: "carol", Request: domain.CreateItemRequest{
		Title: "Keys", Category: "Electronics", Status: "Found",
	}})

	require.NoError(t, err)
	assert.Empty(t, c.Matches)
	assert.Empty(t, store.matches)
	assert.Empty(t, store.notifications)
}

func TestScenario_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	itemSvc, _, _ := wired(store, &fakeImages{})

	for _, title := range []string{"Scarf", "Umbrella", "Wallet"} {
		_, err := itemSvc.Create(ctx, CreateInput{PosterID: "alice", Request: domain.CreateItemRequest{
			Title: title, Category: "Misc", Status: "Lost",
		}})
		require.NoError(t, err)
	}
	got, err := itemSvc.List(ctx, domain.ItemFilter{Category: "Misc"})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Wallet", got[0].Title)
	assert.Equal(t, "Scarf", got[2].Title)
}
