package certificate

import (
	"context"
	"time"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/utilities"
)

type Store interface {
	List(ctx context.Context, includeDeleted bool) ([]entity.Certificate, error)
	GetByID(ctx context.Context, id string) (*entity.Certificate, error)
	Create(ctx context.Context, c *entity.Certificate) error
	Update(ctx context.Context, c *entity.Certificate) error
	SetTags(ctx context.Context, id string, tags []string) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Reorder(ctx context.Context, items []database.Position) error
}

var invalidates = []string{cache.TagCertificates, cache.TagSite}

type Service struct {
	store Store
	kit   *mutation.Kit
	cache *cache.Store
}

func NewService(store Store, kit *mutation.Kit, c *cache.Store) *Service {
	return &Service{store: store, kit: kit, cache: c}
}

func (s *Service) List(ctx context.Context, includeDeleted bool) ([]entity.Certificate, error) {
	out, err := s.store.List(ctx, includeDeleted)
	if err != nil {
		return nil, s.kit.Fail("list certificates", err)
	}
	return out, nil
}

func (s *Service) ListPublic(ctx context.Context) ([]entity.Certificate, error) {
	return cache.Remember(s.cache, cache.TagCertificates, "public", func() ([]entity.Certificate, error) {
		out, err := s.store.List(ctx, false)
		if err != nil {
			return nil, s.kit.Fail("list certificates", err)
		}
		return out, nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Certificate, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.kit.NotFoundOr("get certificate", err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, in entity.Input) (*entity.Certificate, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.build(utilities.NewID(), in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, s.kit.Fail("create certificate", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionCreate, Entity: entity.EntityName, EntityID: c.ID, After: c,
	}, invalidates...)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, in entity.Input) (*entity.Certificate, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.build(id, in)
	if err != nil {
		return nil, err
	}
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.kit.NotFoundOr("update certificate", err)
	}
	if err := s.store.Update(ctx, c); err != nil {
		return nil, s.kit.NotFoundOr("update certificate", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionUpdate, Entity: entity.EntityName, EntityID: id, Before: before, After: c,
	}, invalidates...)
	return c, nil
}

func (s *Service) SetTags(ctx context.Context, id string, in entity.TagsInput) ([]string, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	tags, err := mutation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetTags(ctx, id, tags); err != nil {
		return nil, s.kit.NotFoundOr("update certificate tags", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionUpdateTags, Entity: entity.EntityName, EntityID: id,
		After: map[string][]string{"tags": tags},
	}, invalidates...)
	return tags, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return err
	}
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return s.kit.NotFoundOr("delete certificate", err)
	}
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return s.kit.NotFoundOr("delete certificate", err)
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
		return s.kit.NotFoundOr("restore certificate", err)
	}
	if err := s.store.Restore(ctx, id); err != nil {
		return s.kit.NotFoundOr("restore certificate", err)
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
		return s.kit.NotFoundOr("reorder certificates", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionReorder, Entity: entity.EntityName, After: in.Items,
	}, invalidates...)
	return nil
}

func (s *Service) build(id string, in entity.Input) (*entity.Certificate, error) {
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	issued, err := database.ParseDate(in.IssueDate)
	if err != nil {
		return nil, mutation.Invalid("issue_date", "must be a date (YYYY-MM-DD)")
	}
	tags, err := mutation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	return &entity.Certificate{
		ID:            id,
		Title:         in.Title,
		Issuer:        in.Issuer,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		ImageKey:      in.ImageKey,
		CredentialURL: in.CredentialURL,
		IssueDate:     issued,
		Tags:          tags,
		Order:         in.Order,
	}, nil
}
