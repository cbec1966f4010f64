package profile

import (
	"context"
	"database/sql"
	"errors"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/profile/entity"
)

type Store interface {
	Get(ctx context.Context) (*entity.Profile, error)
	Upsert(ctx context.Context, p *entity.Profile) error
}

type Service struct {
	store Store
	kit   *mutation.Kit
	cache *cache.Store
}

func NewService(store Store, kit *mutation.Kit, c *cache.Store) *Service {
	return &Service{store: store, kit: kit, cache: c}
}

// Get returns the profile, or an empty one before the first save.
func (s *Service) Get(ctx context.Context) (*entity.Profile, error) {
	return cache.Remember(s.cache, cache.TagProfile, entity.SingletonID, func() (*entity.Profile, error) {
		p, err := s.store.Get(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return &entity.Profile{ID: entity.SingletonID}, nil
		}
		if err != nil {
			return nil, s.kit.Fail("load profile", err)
		}
		return p, nil
	})
}

func (s *Service) Upsert(ctx context.Context, in entity.Input) (*entity.Profile, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}

	before, err := s.store.Get(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, s.kit.Fail("update profile", err)
	}
	action := auditentity.ActionUpdate
	if before == nil {
		action = auditentity.ActionCreate
	}

	p := &entity.Profile{
		ID:          entity.SingletonID,
		Name:        in.Name,
		Title:       in.Title,
		Bio:         in.Bio,
		About:       in.About,
		Email:       in.Email,
		Location:    in.Location,
		GithubURL:   in.GithubURL,
		LinkedinURL: in.LinkedinURL,
		TwitterURL:  in.TwitterURL,
		WebsiteURL:  in.WebsiteURL,
		ResumeURL:   in.ResumeURL,
		PhotoURL:    in.PhotoURL,
		PhotoKey:    in.PhotoKey,
	}
	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, s.kit.Fail("update profile", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: action, Entity: entity.EntityName, EntityID: p.ID, Before: before, After: p,
	}, cache.TagProfile, cache.TagSite)
	return p, nil
}
