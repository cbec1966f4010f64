package section

import (
	"context"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section/entity"
)

// Store is implemented by *repo.Repo.
type Store interface {
	List(ctx context.Context) ([]entity.Section, error)
	Get(ctx context.Context, section string) (*entity.Section, error)
	Update(ctx context.Context, s *entity.Section) error
	Toggle(ctx context.Context, section string) (bool, error)
	Reorder(ctx context.Context, sections []string) error
	InsertMissing(ctx context.Context, defaults []entity.Section) (int, error)
}

var invalidates = []string{cache.TagSections, cache.TagSite}

// Service encapsulates section visibility and depends on a store.
type Service struct {
	store Store
	kit   *mutation.Kit
	cache *cache.Store
}

// NewService constructs a Service with the provided store.
func NewService(store Store, kit *mutation.Kit, c *cache.Store) *Service {
	return &Service{store: store, kit: kit, cache: c}
}

// List returns every section in display order.
func (s *Service) List(ctx context.Context) ([]entity.Section, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, s.kit.Fail("list sections", err)
	}
	return out, nil
}

// Visible returns the keys of visible sections in display order.
func (s *Service) Visible(ctx context.Context) ([]string, error) {
	return cache.Remember(s.cache, cache.TagSections, "visible", func() ([]string, error) {
		all, err := s.store.List(ctx)
		if err != nil {
			return nil, s.kit.Fail("list sections", err)
		}
		keys := make([]string, 0, len(all))
		for _, sec := range all {
			if sec.Visible {
				keys = append(keys, sec.Section)
			}
		}
		return keys, nil
	})
}

// Toggle flips a section's visibility.
func (s *Service) Toggle(ctx context.Context, section string) (bool, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return false, err
	}
	visible, err := s.store.Toggle(ctx, section)
	if err != nil {
		return false, s.kit.NotFoundOr("update section", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionToggleVisibility, Entity: entity.EntityName, EntityID: section,
		Before: map[string]bool{"visible": !visible},
		After:  map[string]bool{"visible": visible},
	}, invalidates...)
	return visible, nil
}

// Update applies the non-nil fields of in.
func (s *Service) Update(ctx context.Context, section string, in entity.Input) (*entity.Section, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	before, err := s.store.Get(ctx, section)
	if err != nil {
		return nil, s.kit.NotFoundOr("update section", err)
	}
	after := *before
	if in.Label != nil {
		after.Label = *in.Label
	}
	if in.Visible != nil {
		after.Visible = *in.Visible
	}
	if in.Order != nil {
		after.Order = *in.Order
	}
	if err := s.store.Update(ctx, &after); err != nil {
		return nil, s.kit.NotFoundOr("update section", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionUpdate, Entity: entity.EntityName, EntityID: section, Before: before, After: after,
	}, invalidates...)
	return &after, nil
}

// Reorder sets the display order to the order of in.Sections.
func (s *Service) Reorder(ctx context.Context, in entity.ReorderInput) error {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return err
	}
	if err := s.kit.Check(in); err != nil {
		return err
	}
	seen := make(map[string]bool, len(in.Sections))
	for _, key := range in.Sections {
		if seen[key] {
			return mutation.Invalid("sections", "must not repeat a section")
		}
		seen[key] = true
	}
	if err := s.store.Reorder(ctx, in.Sections); err != nil {
		return s.kit.NotFoundOr("reorder sections", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionReorder, Entity: entity.EntityName, After: in.Sections,
	}, invalidates...)
	return nil
}

// Seed inserts the defaults that are missing. It runs from the CLI without a
// session and is not audited.
func (s *Service) Seed(ctx context.Context, defaults []entity.Section) (int, error) {
	added, err := s.store.InsertMissing(ctx, defaults)
	if err != nil {
		return added, s.kit.Fail("seed sections", err)
	}
	if added > 0 {
		s.cache.Invalidate(ctx, invalidates...)
	}
	s.kit.Logger().Infow("sections seeded", "added", added, "total", len(defaults))
	return added, nil
}
