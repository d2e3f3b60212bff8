package item

import (
	"context"
	"fmt"
	"strings"

	"github.com/lost-found-api/internal/application/match"
	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/pkg/metrics"
	"github.com/lost-found-api/internal/pkg/validate"
	"github.com/rs/zerolog/log"
)

// EventItemCreated is published after an item report is persisted.
const EventItemCreated = "item.created"

// imageFolder is the object-storage folder item photos are uploaded to.
const imageFolder = "items"

// Image is an optional photo attached to a new report.
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

type CreateInput struct {
	Request  domain.CreateItemRequest
	PosterID string
	Image    *Image
}

type CreateResult struct {
	Item         *domain.Item            `json:"item"`
	Matches      []domain.GeneratedMatch `json:"matches"`
	MatchWarning string                  `json:"match_warning,omitempty"`
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Get(ctx context.Context, itemID string) (*domain.Item, error)
}

type itemStore interface {
	Create(ctx context.Context, it *domain.Item) error
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	Find(ctx context.Context, q domain.Query) ([]domain.Item, error)
}

type imageStore interface {
	UploadImage(ctx context.Context, data []byte, filename, contentType, folder string) (string, error)
}

type matcher interface {
	Generate(ctx context.Context, item domain.Item) match.GenerateResult
}

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

type service struct {
	repo    itemStore
	images  imageStore
	matcher matcher
	events  eventPublisher
}

type ServiceDeps struct {
	ItemRepo   itemStore
	ImageStore imageStore
	Matcher    matcher
	Events     eventPublisher // optional
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:    deps.ItemRepo,
		images:  deps.ImageStore,
		matcher: deps.Matcher,
		events:  deps.Events,
	}
}

// Create validates and persists a report, then runs match generation against it.
// Upload failures abort creation; match generation failures only degrade the result.
func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	req := trimRequest(input.Request)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	it := &domain.Item{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ContactInfo: req.ContactInfo,
		Location:    req.Location,
		PostedBy:    input.PosterID,
		Status:      domain.ItemStatus(req.Status),
	}
	if input.Image != nil && len(input.Image.Data) > 0 {
		url, err := s.images.UploadImage(ctx, input.Image.Data, input.Image.Filename, input.Image.ContentType, imageFolder)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w: %w", domain.ErrBadRequest, err)
		}
		it.ImageURL = &url
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	metrics.ItemsCreated.WithLabelValues(string(it.Status)).Inc()
	if s.events != nil {
		if err := s.events.Publish(ctx, EventItemCreated, it); err != nil {
			log.Warn().Err(err).Str("item_id", it.ItemID).Msg("event publish failed")
		}
	}

	res := s.matcher.Generate(ctx, *it)
	out := &CreateResult{Item: it, Matches: res.Matches}
	if out.Matches == nil {
		out.Matches = []domain.GeneratedMatch{}
	}
	if res.Degraded() {
		out.MatchWarning = "match suggestions are temporarily unavailable"
	}
	return out, nil
}

func trimRequest(r domain.CreateItemRequest) domain.CreateItemRequest {
	return domain.CreateItemRequest{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Category:    strings.TrimSpace(r.Category),
		ContactInfo: strings.TrimSpace(r.ContactInfo),
		Location:    strings.TrimSpace(r.Location),
		Status:      strings.TrimSpace(r.Status),
	}
}

// List returns the filtered items, newest first.
func (s *service) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	q := domain.NewQuery()
	if filter.Status != "" {
		q = q.Eq(domain.FieldStatus, filter.Status)
	}
	if filter.Category != "" {
		q = q.Eq(domain.FieldCategory, filter.Category)
	}
	return s.repo.Find(ctx, q.Newest(domain.FieldDate))
}

func (s *service) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	return s.repo.Get(ctx, itemID)
}
