package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/pkg/validate"
)

type Service interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, ident domain.Identity, req domain.UpsertProfileRequest) (*domain.UserProfile, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Put(ctx context.Context, u *domain.UserProfile) error
}

type itemCounter interface {
	Count(ctx context.Context, q domain.Query) (int, error)
}

type service struct {
	repo  userStore
	items itemCounter
}

func NewService(repo userStore, items itemCounter) Service {
	return &service{repo: repo, items: items}
}

// GetProfile returns the stored profile with the number of items the user posted.
func (s *service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.items.Count(ctx, domain.NewQuery().Eq(domain.FieldPostedBy, userID))
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	return &domain.Profile{UserProfile: *u, ItemsCount: count}, nil
}

// UpsertProfile creates or replaces the caller's profile. Email always comes from the verified identity.
func (s *service) UpsertProfile(ctx context.Context, ident domain.Identity, req domain.UpsertProfileRequest) (*domain.UserProfile, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	u := &domain.UserProfile{
		UserID:      ident.UserID,
		Email:       ident.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	existing, err := s.repo.Get(ctx, ident.UserID)
	switch {
	case err == nil:
		u.CreatedAt = existing.CreatedAt
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
