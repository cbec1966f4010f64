package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/skill/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

const columns = `id, name, category, sort_order, visible, created_at, updated_at`

type SkillRepo struct {
	db *sqlx.DB
}

func NewSkillRepo(db *sqlx.DB) *SkillRepo { return &SkillRepo{db: db} }

// List returns skills grouped-ready: by category, then sort_order.
func (r *SkillRepo) List(ctx context.Context, includeHidden bool) ([]entity.Skill, error) {
	q := `SELECT ` + columns + ` FROM skills`
	if !includeHidden {
		q += ` WHERE visible`
	}
	q += ` ORDER BY category ASC, sort_order ASC, name ASC`

	out := []entity.Skill{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SkillRepo) GetByID(ctx context.Context, id string) (*entity.Skill, error) {
	var s entity.Skill
	if err := r.db.GetContext(ctx, &s, `SELECT `+columns+` FROM skills WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkillRepo) Create(ctx context.Context, s *entity.Skill) error {
	const q = `INSERT INTO skills (id, name, category, sort_order, visible)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, s.ID, s.Name, s.Category, s.Order, s.Visible).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SkillRepo) Update(ctx context.Context, s *entity.Skill) error {
	const q = `UPDATE skills SET name = $2, category = $3, sort_order = $4, visible = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, s.ID, s.Name, s.Category, s.Order, s.Visible).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

// Delete removes the row permanently.
func (r *SkillRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ToggleVisible flips visibility and returns the new value.
func (r *SkillRepo) ToggleVisible(ctx context.Context, id string) (bool, error) {
	var visible bool
	err := r.db.GetContext(ctx, &visible,
		`UPDATE skills SET visible = NOT visible, updated_at = NOW() WHERE id = $1 RETURNING visible`, id)
	return visible, err
}

func (r *SkillRepo) Reorder(ctx context.Context, items []database.Position) error {
	return database.Reorder(ctx, r.db, database.TableSkills, items)
}
