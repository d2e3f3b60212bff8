package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lost-found-api/internal/application/scoring"
	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/pkg/metrics"
	"github.com/rs/zerolog/log"
)

// Routing keys for match events.
const (
	EventMatchCreated       = "match.created"
	EventMatchStatusChanged = "match.status_changed"
)

// GenerateResult is the outcome of a best-effort match generation run.
// When Err is non-nil the run was aborted, Matches is empty and the caller
// must treat the result as degraded rather than failed.
type GenerateResult struct {
	Matches []domain.GeneratedMatch
	Err     error
}

// Degraded reports whether the run aborted.
func (r GenerateResult) Degraded() bool { return r.Err != nil }

type Service interface {
	Generate(ctx context.Context, item domain.Item) GenerateResult
	UpdateStatus(ctx context.Context, matchID, status, userID string) (*domain.Match, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Match, error)
}

type itemStore interface {
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	Find(ctx context.Context, q domain.Query) ([]domain.Item, error)
	UpdateStatus(ctx context.Context, itemID string, status domain.ItemStatus) error
}

type matchStore interface {
	Create(ctx context.Context, m *domain.Match) error
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	Find(ctx context.Context, q domain.Query) ([]domain.Match, error)
	UpdateStatus(ctx context.Context, matchID string, status domain.MatchStatus) error
}

type notifier interface {
	NotifyMatch(ctx context.Context, m *domain.Match, existing, incoming domain.Item) (*domain.Notification, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

type service struct {
	items     itemStore
	matches   matchStore
	notifier  notifier
	events    eventPublisher
	threshold int
}

type ServiceDeps struct {
	ItemRepo  itemStore
	MatchRepo matchStore
	Notifier  notifier
	Events    eventPublisher // optional
	Threshold int            // defaults to scoring.Threshold
}

func NewService(deps ServiceDeps) Service {
	threshold := deps.Threshold
	if threshold <= 0 {
		threshold = scoring.Threshold
	}
	return &service{
		items:     deps.ItemRepo,
		matches:   deps.MatchRepo,
		notifier:  deps.Notifier,
		events:    deps.Events,
		threshold: threshold,
	}
}

// Generate scores item against every opposing report in the same category and
// materializes a Match plus one Notification for each candidate at or above the
// threshold. It never returns an error: failures yield a degraded result.
func (s *service) Generate(ctx context.Context, item domain.Item) GenerateResult {
	matches, err := s.generate(ctx, item)
	if err != nil {
		metrics.MatchGenerationDegraded.Inc()
		log.Warn().Err(err).Str("item_id", item.ItemID).Msg("match generation degraded")
		return GenerateResult{Matches: []domain.GeneratedMatch{}, Err: err}
	}
	return GenerateResult{Matches: matches}
}

func (s *service) generate(ctx context.Context, item domain.Item) ([]domain.GeneratedMatch, error) {
	opposite, ok := item.Status.Opposite()
	if !ok {
		return nil, fmt.Errorf("item %s has status %q: %w", item.ItemID, item.Status, domain.ErrBadRequest)
	}
	candidates, err := s.items.Find(ctx, domain.NewQuery().
		Eq(domain.FieldCategory, item.Category).
		Eq(domain.FieldStatus, string(opposite)))
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	generated := []domain.GeneratedMatch{}
	for _, candidate := range candidates {
		if candidate.ItemID == item.ItemID {
			continue
		}
		metrics.CandidatesScored.Inc()
		score := scoring.Score(candidate, item)
		if score < s.threshold {
			continue
		}
		m := newMatch(item, candidate, score)
		if err := s.matches.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("create match: %w", err)
		}
		if _, err := s.notifier.NotifyMatch(ctx, m, candidate, item); err != nil {
			return nil, fmt.Errorf("notify match %s: %w", m.MatchID, err)
		}
		metrics.MatchesCreated.Inc()
		s.publish(ctx, EventMatchCreated, m)
		generated = append(generated, domain.GeneratedMatch{
			MatchID:         m.MatchID,
			ConfidenceScore: score,
			MatchedItem: domain.MatchedItem{
				ItemID:      candidate.ItemID,
				Title:       candidate.Title,
				Description: candidate.Description,
			},
		})
	}
	return generated, nil
}

// newMatch orients the pair using the new item's status.
func newMatch(incoming, candidate domain.Item, score int) *domain.Match {
	m := &domain.Match{ConfidenceScore: score, Status: domain.MatchPending}
	if incoming.Status == domain.StatusLost {
		m.LostItemID, m.FoundItemID = incoming.ItemID, candidate.ItemID
	} else {
		m.LostItemID, m.FoundItemID = candidate.ItemID, incoming.ItemID
	}
	return m
}

func (s *service) UpdateStatus(ctx context.Context, matchID, status, userID string) (*domain.Match, error) {
	next := domain.MatchStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("invalid match status %q: %w", status, domain.ErrBadRequest)
	}
	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	lost, err := s.lookupItem(ctx, m.LostItemID)
	if err != nil {
		return nil, err
	}
	found, err := s.lookupItem(ctx, m.FoundItemID)
	if err != nil {
		return nil, err
	}
	if !ownsEither(userID, lost, found) {
		return nil, fmt.Errorf("user does not own either item of match %s: %w", matchID, domain.ErrForbidden)
	}
	if m.Status.Terminal() && m.Status != next {
		return nil, fmt.Errorf("match already %s: %w", m.Status, domain.ErrBadRequest)
	}

	if m.Status != next {
		if err := s.matches.UpdateStatus(ctx, matchID, next); err != nil {
			return nil, err
		}
		metrics.MatchStatusChanges.WithLabelValues(string(next)).Inc()
	}
	if next == domain.MatchConfirmed {
		for _, itemID := range []string{m.LostItemID, m.FoundItemID} {
			if err := s.items.UpdateStatus(ctx, itemID, domain.StatusReturned); err != nil {
				return nil, fmt.Errorf("mark item %s returned: %w", itemID, err)
			}
		}
	}

	if m.Status != next {
		now := time.Now().UTC()
		m.Status, m.UpdatedAt = next, &now
		s.publish(ctx, EventMatchStatusChanged, m)
	}
	return m, nil
}

// lookupItem returns nil without error when the item no longer resolves.
func (s *service) lookupItem(ctx context.Context, itemID string) (*domain.Item, error) {
	it, err := s.items.Get(ctx, itemID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return it, err
}

func ownsEither(userID string, items ...*domain.Item) bool {
	for _, it := range items {
		if it != nil && it.PostedBy == userID {
			return true
		}
	}
	return false
}

// ListForUser returns every match referencing an item posted by userID, newest first.
func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.Match, error) {
	owned, err := s.items.Find(ctx, domain.NewQuery().Eq(domain.FieldPostedBy, userID))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := []domain.Match{}
	for _, it := range owned {
		for _, field := range []string{domain.FieldLostItemID, domain.FieldFoundItemID} {
			ms, err := s.matches.Find(ctx, domain.NewQuery().Eq(field, it.ItemID))
			if err != nil {
				return nil, err
			}
			for _, m := range ms {
				if _, dup := seen[m.MatchID]; dup {
					continue
				}
				seen[m.MatchID] = struct{}{}
				out = append(out, m)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *service) publish(ctx context.Context, key string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("routing_key", key).Msg("event publish failed")
	}
}
