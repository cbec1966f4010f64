package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section/entity"
)

// Repo is the repository for section visibility backed by PostgreSQL.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a new Repo with an existing connection.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// List returns every section in display order.
func (r *Repo) List(ctx context.Context) ([]entity.Section, error) {
	const q = `SELECT section, label, visible, sort_order, updated_at
		FROM section_visibility ORDER BY sort_order ASC, section ASC`
	out := []entity.Section{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one section or sql.ErrNoRows.
func (r *Repo) Get(ctx context.Context, section string) (*entity.Section, error) {
	const q = `SELECT section, label, visible, sort_order, updated_at FROM section_visibility WHERE section = $1`
	var s entity.Section
	if err := r.db.GetContext(ctx, &s, q, section); err != nil {
		return nil, err
	}
	return &s, nil
}

// Update writes label, visibility and order of an existing section.
func (r *Repo) Update(ctx context.Context, s *entity.Section) error {
	const q = `UPDATE section_visibility SET label = $2, visible = $3, sort_order = $4, updated_at = NOW()
		WHERE section = $1 RETURNING updated_at`
	return r.db.GetContext(ctx, &s.UpdatedAt, q, s.Section, s.Label, s.Visible, s.Order)
}

// Toggle flips visibility and returns the new value.
func (r *Repo) Toggle(ctx context.Context, section string) (bool, error) {
	const q = `UPDATE section_visibility SET visible = NOT visible, updated_at = NOW()
		WHERE section = $1 RETURNING visible`
	var visible bool
	err := r.db.GetContext(ctx, &visible, q, section)
	return visible, err
}

// Reorder assigns sort_order by slice position in one transaction. An
// unknown key rolls everything back with sql.ErrNoRows.
func (r *Repo) Reorder(ctx context.Context, sections []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	for i, key := range sections {
		res, execErr := tx.ExecContext(ctx,
			`UPDATE section_visibility SET sort_order = $1, updated_at = NOW() WHERE section = $2`, i, key)
		if execErr != nil {
			return execErr
		}
		n, raErr := res.RowsAffected()
		if raErr != nil {
			return raErr
		}
		if n == 0 {
			return sql.ErrNoRows
		}
	}
	return nil
}

// InsertMissing inserts defaults whose key does not exist yet and reports how
// many rows were added. Existing rows are left untouched.
func (r *Repo) InsertMissing(ctx context.Context, defaults []entity.Section) (int, error) {
	const q = `INSERT INTO section_visibility (section, label, visible, sort_order)
		VALUES ($1, $2, $3, $4) ON CONFLICT (section) DO NOTHING`
	added := 0
	for _, s := range defaults {
		res, err := r.db.ExecContext(ctx, q, s.Section, s.Label, s.Visible, s.Order)
		if err != nil {
			return added, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}
