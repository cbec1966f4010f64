package project

import (
	"context"
	"time"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/utilities"
)

// Store is the persistence the service needs; *repo.ProjectRepo implements it.
type Store interface {
	List(ctx context.Context, opts repo.ListOptions) ([]entity.Project, error)
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	Create(ctx context.Context, p *entity.Project) error
	Update(ctx context.Context, p *entity.Project) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	TogglePublished(ctx context.Context, id string) (bool, error)
	SetTags(ctx context.Context, id string, tags []string) error
	Reorder(ctx context.Context, items []database.Position) error
}

var invalidates = []string{cache.TagProjects, cache.TagSite}

// Service implements project reads and the admin mutations.
type Service struct {
	store Store
	kit   *mutation.Kit
	cache *cache.Store
}

func NewService(store Store, kit *mutation.Kit, c *cache.Store) *Service {
	return &Service{store: store, kit: kit, cache: c}
}

// List is the admin listing.
func (s *Service) List(ctx context.Context, opts repo.ListOptions) ([]entity.Project, error) {
	out, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, s.kit.Fail("list projects", err)
	}
	return out, nil
}

// ListPublic returns published, live projects through the cache.
func (s *Service) ListPublic(ctx context.Context) ([]entity.Project, error) {
	return cache.Remember(s.cache, cache.TagProjects, "public", func() ([]entity.Project, error) {
		out, err := s.store.List(ctx, repo.ListOptions{PublishedOnly: true})
		if err != nil {
			return nil, s.kit.Fail("list projects", err)
		}
		return out, nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Project, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.kit.NotFoundOr("get project", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in entity.Input) (*entity.Project, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	normalized, err := mutation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	p := fromInput(utilities.NewID(), in, normalized)
	if err := s.store.Create(ctx, p); err != nil {
		return nil, s.kit.Fail("create project", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionCreate, Entity: entity.EntityName, EntityID: p.ID, After: p,
	}, invalidates...)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in entity.Input) (*entity.Project, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	normalized, err := mutation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.kit.NotFoundOr("update project", err)
	}
	p := fromInput(id, in, normalized)
	if err := s.store.Update(ctx, p); err != nil {
		return nil, s.kit.NotFoundOr("update project", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionUpdate, Entity: entity.EntityName, EntityID: id, Before: before, After: p,
	}, invalidates...)
	return p, nil
}

// Delete soft-deletes a project.
func (s *Service) Delete(ctx context.Context, id string) error {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return err
	}
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return s.kit.NotFoundOr("delete project", err)
	}
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return s.kit.NotFoundOr("delete project", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionDelete, Entity: entity.EntityName, EntityID: id,
		Before: before, After: mutation.SoftDeleted(time.Now()),
	}, invalidates...)
	return nil
}

func (s *Service) Restore(ctx context.Context, id string) error {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return err
	}
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return s.kit.NotFoundOr("restore project", err)
	}
	if err := s.store.Restore(ctx, id); err != nil {
		return s.kit.NotFoundOr("restore project", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionRestore, Entity: entity.EntityName, EntityID: id,
		Before: before, After: mutation.Restored(),
	}, invalidates...)
	return nil
}

// TogglePublish flips the published flag and returns the new value.
func (s *Service) TogglePublish(ctx context.Context, id string) (bool, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return false, err
	}
	published, err := s.store.TogglePublished(ctx, id)
	if err != nil {
		return false, s.kit.NotFoundOr("update project", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionTogglePublish, Entity: entity.EntityName, EntityID: id,
		Before: map[string]bool{"published": !published},
		After:  map[string]bool{"published": published},
	}, invalidates...)
	return published, nil
}

func (s *Service) SetTags(ctx context.Context, id string, in entity.TagsInput) ([]string, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	normalized, err := mutation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetTags(ctx, id, normalized); err != nil {
		return nil, s.kit.NotFoundOr("update project tags", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionUpdateTags, Entity: entity.EntityName, EntityID: id,
		After: map[string][]string{"tags": normalized},
	}, invalidates...)
	return normalized, nil
}

func (s *Service) Reorder(ctx context.Context, in mutation.ReorderInput) error {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return err
	}
	if err := s.kit.Check(in); err != nil {
		return err
	}
	if err := s.store.Reorder(ctx, in.Positions()); err != nil {
		return s.kit.NotFoundOr("reorder projects", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionReorder, Entity: entity.EntityName, After: in.Items,
	}, invalidates...)
	return nil
}

func fromInput(id string, in entity.Input, tags []string) *entity.Project {
	return &entity.Project{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		ImageKey:    in.ImageKey,
		DemoURL:     in.DemoURL,
		GithubURL:   in.GithubURL,
		Tags:        tags,
		Published:   in.Published,
		Order:       in.Order,
	}
}
