package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lost-found-api/internal/domain"
	"github.com/rs/zerolog/log"
)

type Service interface {
	NotifyMatch(ctx context.Context, m *domain.Match, existing, incoming domain.Item) (*domain.Notification, error)
	List(ctx context.Context, userID string, isRead *bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
}

type notificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	Find(ctx context.Context, q domain.Query) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string, readAt time.Time) error
}

// pusher delivers a stored notification out of band (e.g. SNS).
type pusher interface {
	Push(ctx context.Context, n *domain.Notification) error
}

type service struct {
	repo   notificationStore
	pusher pusher
}

// NewService builds the notification service. p may be nil to disable push delivery.
func NewService(repo notificationStore, p pusher) Service {
	return &service{repo: repo, pusher: p}
}

// NotifyMatch writes exactly one notification for m, addressed to the poster of
// the pre-existing item. Push delivery is best effort.
func (s *service) NotifyMatch(ctx context.Context, m *domain.Match, existing, incoming domain.Item) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:  existing.PostedBy,
		MatchID: m.MatchID,
		Message: matchMessage(existing, incoming, m.ConfidenceScore),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	if s.pusher != nil {
		if err := s.pusher.Push(ctx, n); err != nil {
			log.Warn().Err(err).Str("notification_id", n.NotificationID).Msg("push delivery failed")
		}
	}
	return n, nil
}

func matchMessage(existing, incoming domain.Item, score int) string {
	return fmt.Sprintf("A possible match for your %s item %q: %s item %q (confidence %d%%).",
		strings.ToLower(string(existing.Status)), existing.Title,
		strings.ToLower(string(incoming.Status)), incoming.Title, score)
}

// List returns the user's notifications newest first, optionally narrowed by read state.
func (s *service) List(ctx context.Context, userID string, isRead *bool) ([]domain.Notification, error) {
	q := domain.NewQuery().Eq(domain.FieldUserID, userID)
	if isRead != nil {
		q = q.Eq(domain.FieldIsRead, *isRead)
	}
	return s.repo.Find(ctx, q.Newest(domain.FieldCreatedAt))
}

// MarkRead flags the notification as read. Marking an already read notification succeeds
// without touching read_at.
func (s *service) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	if n.IsRead {
		return n, nil
	}
	now := time.Now().UTC()
	if err := s.repo.MarkRead(ctx, notificationID, now); err != nil {
		return nil, err
	}
	n.IsRead, n.ReadAt = true, &now
	return n, nil
}
