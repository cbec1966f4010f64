package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

const columns = `id, title, company, location, description, start_date, end_date, current, icon,
	sort_order, created_at, updated_at, deleted_at`

type ExperienceRepo struct {
	db *sqlx.DB
}

func NewExperienceRepo(db *sqlx.DB) *ExperienceRepo { return &ExperienceRepo{db: db} }

// List orders by sort_order, then the most recent start first.
func (r *ExperienceRepo) List(ctx context.Context, includeDeleted bool) ([]entity.Experience, error) {
	q := `SELECT ` + columns + ` FROM experiences`
	if !includeDeleted {
		q += ` WHERE deleted_at IS NULL`
	}
	q += ` ORDER BY sort_order ASC, start_date DESC`

	out := []entity.Experience{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ExperienceRepo) GetByID(ctx context.Context, id string) (*entity.Experience, error) {
	var e entity.Experience
	if err := r.db.GetContext(ctx, &e, `SELECT `+columns+` FROM experiences WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExperienceRepo) Create(ctx context.Context, e *entity.Experience) error {
	const q = `INSERT INTO experiences (id, title, company, location, description, start_date, end_date, current, icon, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		e.ID, e.Title, e.Company, e.Location, e.Description, e.StartDate, e.EndDate, e.Current, e.Icon, e.Order,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// Update overwrites a live row or returns sql.ErrNoRows.
func (r *ExperienceRepo) Update(ctx context.Context, e *entity.Experience) error {
	const q = `UPDATE experiences SET title = $2, company = $3, location = $4, description = $5,
		start_date = $6, end_date = $7, current = $8, icon = $9, sort_order = $10, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		e.ID, e.Title, e.Company, e.Location, e.Description, e.StartDate, e.EndDate, e.Current, e.Icon, e.Order,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *ExperienceRepo) SoftDelete(ctx context.Context, id string) error {
	return database.SoftDelete(ctx, r.db, database.TableExperiences, id)
}

func (r *ExperienceRepo) Restore(ctx context.Context, id string) error {
	return database.Restore(ctx, r.db, database.TableExperiences, id)
}

func (r *ExperienceRepo) Reorder(ctx context.Context, items []database.Position) error {
	return database.Reorder(ctx, r.db, database.TableExperiences, items)
}
