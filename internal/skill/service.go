package skill

import (
	"context"
	"strings"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/skill/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/utilities"
)

type Store interface {
	List(ctx context.Context, includeHidden bool) ([]entity.Skill, error)
	GetByID(ctx context.Context, id string) (*entity.Skill, error)
	Create(ctx context.Context, s *entity.Skill) error
	Update(ctx context.Context, s *entity.Skill) error
	Delete(ctx context.Context, id string) error
	ToggleVisible(ctx context.Context, id string) (bool, error)
	Reorder(ctx context.Context, items []database.Position) error
}

var invalidates = []string{cache.TagSkills, cache.TagSite}

type Service struct {
	store Store
	kit   *mutation.Kit
	cache *cache.Store
}

func NewService(store Store, kit *mutation.Kit, c *cache.Store) *Service {
	return &Service{store: store, kit: kit, cache: c}
}

func (s *Service) List(ctx context.Context, includeHidden bool) ([]entity.Skill, error) {
	out, err := s.store.List(ctx, includeHidden)
	if err != nil {
		return nil, s.kit.Fail("list skills", err)
	}
	return out, nil
}

// ListPublic returns visible skills grouped by category.
func (s *Service) ListPublic(ctx context.Context) ([]entity.Group, error) {
	return cache.Remember(s.cache, cache.TagSkills, "public", func() ([]entity.Group, error) {
		rows, err := s.store.List(ctx, false)
		if err != nil {
			return nil, s.kit.Fail("list skills", err)
		}
		return Group(rows), nil
	})
}

// Group folds rows into category groups, keeping first-seen category order.
func Group(rows []entity.Skill) []entity.Group {
	out := []entity.Group{}
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, entity.Group{Category: r.Category})
		}
		out[i].Skills = append(out[i].Skills, r)
	}
	return out
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Skill, error) {
	sk, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.kit.NotFoundOr("get skill", err)
	}
	return sk, nil
}

func (s *Service) Create(ctx context.Context, in entity.Input) (*entity.Skill, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	sk := fromInput(utilities.NewID(), in)
	if err := s.store.Create(ctx, sk); err != nil {
		return nil, s.kit.Fail("create skill", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionCreate, Entity: entity.EntityName, EntityID: sk.ID, After: sk,
	}, invalidates...)
	return sk, nil
}

func (s *Service) Update(ctx context.Context, id string, in entity.Input) (*entity.Skill, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.kit.Check(in); err != nil {
		return nil, err
	}
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.kit.NotFoundOr("update skill", err)
	}
	sk := fromInput(id, in)
	if in.Visible == nil {
		sk.Visible = before.Visible
	}
	if err := s.store.Update(ctx, sk); err != nil {
		return nil, s.kit.NotFoundOr("update skill", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionUpdate, Entity: entity.EntityName, EntityID: id, Before: before, After: sk,
	}, invalidates...)
	return sk, nil
}

// Delete removes a skill permanently; skills have no restore.
func (s *Service) Delete(ctx context.Context, id string) error {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return err
	}
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return s.kit.NotFoundOr("delete skill", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.kit.NotFoundOr("delete skill", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionDelete, Entity: entity.EntityName, EntityID: id, Before: before,
	}, invalidates...)
	return nil
}

func (s *Service) ToggleVisible(ctx context.Context, id string) (bool, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return false, err
	}
	visible, err := s.store.ToggleVisible(ctx, id)
	if err != nil {
		return false, s.kit.NotFoundOr("update skill", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionToggleVisibility, Entity: entity.EntityName, EntityID: id,
		Before: map[string]bool{"visible": !visible},
		After:  map[string]bool{"visible": visible},
	}, invalidates...)
	return visible, nil
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
		return s.kit.NotFoundOr("reorder skills", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action: auditentity.ActionReorder, Entity: entity.EntityName, After: in.Items,
	}, invalidates...)
	return nil
}

func fromInput(id string, in entity.Input) *entity.Skill {
	visible := true
	if in.Visible != nil {
		visible = *in.Visible
	}
	return &entity.Skill{
		ID:       id,
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		Order:    in.Order,
		Visible:  visible,
	}
}
