package item

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lost-found-api/internal/domain"
)

// memStore is an in-memory document store covering items, matches and notifications.
type memStore struct {
	mu            sync.Mutex
	seq           int
	clock         time.Time
	items         map[string]domain.Item
	matches       map[string]domain.Match
	notifications map[string]domain.Notification
}

func newMemStore() *memStore {
	return &memStore{
		clock:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		items:         map[string]domain.Item{},
		matches:       map[string]domain.Match{},
		notifications: map[string]domain.Notification{},
	}
}

func (s *memStore) next(prefix string) (string, time.Time) {
	s.seq++
	s.clock = s.clock.Add(time.Second)
	return fmt.Sprintf("%s%d", prefix, s.seq), s.clock
}

func satisfies(q domain.Query, get func(field string) interface{}) bool {
	for _, p := range q.Predicates {
		if p.Op != domain.OpEq || get(p.Field) != p.Value {
			return false
		}
	}
	return true
}

type memItems struct{ *memStore }

func (r memItems) Create(_ context.Context, it *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it.ItemID, it.Date = r.next("item-")
	r.items[it.ItemID] = *it
	return nil
}

func (r memItems) Get(_ context.Context, itemID string) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	return &it, nil
}

func (r memItems) Find(_ context.Context, q domain.Query) ([]domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Item{}
	for _, it := range r.items {
		it := it
		if satisfies(q, func(f string) interface{} {
			switch f {
			case domain.FieldStatus:
				return string(it.Status)
			case domain.FieldCategory:
				return it.Category
			case domain.FieldPostedBy:
				return it.PostedBy
			}
			return nil
		}) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r memItems) UpdateStatus(_ context.Context, itemID string, status domain.ItemStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it := r.items[itemID]
	it.Status = status
	r.items[itemID] = it
	return nil
}

type memMatches struct{ *memStore }

func (r memMatches) Create(_ context.Context, m *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.MatchID, m.CreatedAt = r.next("match-")
	r.matches[m.MatchID] = *m
	return nil
}

func (r memMatches) Get(_ context.Context, matchID string) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("match not found: %w", domain.ErrNotFound)
	}
	return &m, nil
}

func (r memMatches) Find(_ context.Context, q domain.Query) ([]domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Match{}
	for _, m := range r.matches {
		m := m
		if satisfies(q, func(f string) interface{} {
			switch f {
			case domain.FieldLostItemID:
				return m.LostItemID
			case domain.FieldFoundItemID:
				return m.FoundItemID
			}
			return nil
		}) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMatches) UpdateStatus(_ context.Context, matchID string, status domain.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.matches[matchID]
	now := r.clock
	m.Status, m.UpdatedAt = status, &now
	r.matches[matchID] = m
	return nil
}

type memNotifications struct{ *memStore }

func (r memNotifications) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.NotificationID, n.CreatedAt = r.next("notif-")
	r.notifications[n.NotificationID] = *n
	return nil
}

func (r memNotifications) Get(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	return &n, nil
}

func (r memNotifications) Find(_ context.Context, q domain.Query) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range r.notifications {
		n := n
		if satisfies(q, func(f string) interface{} {
			switch f {
			case domain.FieldUserID:
				return n.UserID
			case domain.FieldIsRead:
				return n.IsRead
			}
			return nil
		}) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memNotifications) MarkRead(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.notifications[id]
	n.IsRead, n.ReadAt = true, &at
	r.notifications[id] = n
	return nil
}

// fakeImages records uploads and optionally fails them.
type fakeImages struct {
	err     error
	uploads int
}

func (f *fakeImages) UploadImage(_ context.Context, _ []byte, filename, _, folder string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads++
	return fmt.Sprintf("https://images.example/%s/%d-%s", folder, f.uploads, filename), nil
}
