package experience

import (
	"context"
	"time"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/utilities"
)

type Store interface {
	List(ctx context.Context, includeDeleted bool) ([]entity.Experience, error)
	GetByID(ctx context.Context, id string) (*entity.Experience, error)
	Create(ctx context.Context, e *entity.Experience) error
	Update(ctx context.Context, e *entity.Experience) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Reorder(ctx context.Context, items []database.Position) error
}

var invalidates = []string{cache.TagExperiences, cache.TagSite}

type Service struct {
	store Store
	kit   *mutation.Kit
	cache *cache.Store
}

func NewService(store Store, kit *mutation.Kit, c *cache.Store) *Service {
	return &Service{store: store, kit: kit, cache: c}
}

func (s *Service) List(ctx context.Context, includeDeleted bool) ([]entity.Experience, error) {
	out, err := s.store.List(ctx, includeDeleted)
	if err != nil {
		return nil, s.kit.Fail("list experiences", err)
	}
	return out, nil
}

func (s *Service) ListPublic(ctx context.Context) ([]entity.Experience, error) {
	return cache.Remember(s.cache, cache.TagExperiences, "public", func() ([]entity.Experience, error) {
		out, err := s.store.List(ctx, false)
		if err != nil {
			return nil, s.kit.Fail("list experiences", err)
		}
		return out, nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Experience, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.kit.NotFoundOr("get experience", err)
	}
	return e, nil
}

func (s *Service) Create(ctx context.Context, in entity.Input) (*entity.Experience, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.build(utilities.NewID(), in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, s.kit.Fail("create experience", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionCreate, Entity: entity.EntityName, EntityID: e.ID, After: e,
	}, invalidates...)
	return e, nil
}

func (s *Service) Update(ctx context.Context, id string, in entity.Input) (*entity.Experience, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.build(id, in)
	if err != nil {
		return nil, err
	}
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.kit.NotFoundOr("update experience", err)
	}
	if err := s.store.Update(ctx, e); err != nil {
		return nil, s.kit.NotFoundOr("update experience", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionUpdate, Entity: entity.EntityName, EntityID: id, Before: before, After: e,
	}, invalidates...)
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return err
	}
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return s.kit.NotFoundOr("delete experience", err)
	}
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return s.kit.NotFoundOr("delete experience", err)
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
		return s.kit.NotFoundOr("restore experience", err)
	}
	if err := s.store.Restore(ctx, id); err != nil {
		return s.kit.NotFoundOr("restore experience", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionRestore, Entity: entity.EntityName, EntityID: id,
		Before: before, After: mutation.Restored(),
	}, invalidates...)
	return nil
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
		return s.kit.NotFoundOr("reorder experiences", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionReorder, Entity: entity.EntityName, After: in.Items,
	}, invalidates...)
	return nil
}

// build validates in and converts it to a row. A current position has no end
// date; otherwise the end date is required and may not precede the start.
func (s *Service) build(id string, in entity.Input) (*entity.Experience, error) {
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	start, err := database.ParseDate(in.StartDate)
	if err != nil {
		return nil, mutation.Invalid("start_date", "must be a date (YYYY-MM-DD)")
	}

	var end *database.Date
	if !in.Current {
		if in.EndDate == "" {
			return nil, mutation.Invalid("end_date", "is required unless current")
		}
		d, err := database.ParseDate(in.EndDate)
		if err != nil {
			return nil, mutation.Invalid("end_date", "must be a date (YYYY-MM-DD)")
		}
		if d.Before(start.Time) {
			return nil, mutation.Invalid("end_date", "must not be before start_date")
		}
		end = &d
	}

	return &entity.Experience{
		ID:          id,
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
		Current:     in.Current,
		Icon:        in.Icon,
		Order:       in.Order,
	}, nil
}
