package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

const columns = `id, title, description, image_url, image_key, demo_url, github_url, tags,
	published, sort_order, created_at, updated_at, deleted_at`

// ListOptions narrows List.
type ListOptions struct {
	IncludeDeleted bool
	PublishedOnly  bool
}

// ProjectRepo provides data access for the projects table.
type ProjectRepo struct {
	db *sqlx.DB
}

func NewProjectRepo(db *sqlx.DB) *ProjectRepo { return &ProjectRepo{db: db} }

// List returns projects ordered for display.
func (r *ProjectRepo) List(ctx context.Context, opts ListOptions) ([]entity.Project, error) {
	var where []string
	if !opts.IncludeDeleted {
		where = append(where, "deleted_at IS NULL")
	}
	if opts.PublishedOnly {
		where = append(where, "published")
	}
	q := `SELECT ` + columns + ` FROM projects`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY sort_order ASC, created_at DESC`

	out := []entity.Project{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a project, deleted or not, or sql.ErrNoRows.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	var p entity.Project
	if err := r.db.GetContext(ctx, &p, `SELECT `+columns+` FROM projects WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts p and fills its timestamps.
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	const q = `INSERT INTO projects (id, title, description, image_url, image_key, demo_url, github_url, tags, published, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		p.ID, p.Title, p.Description, p.ImageURL, p.ImageKey, p.DemoURL, p.GithubURL,
		pq.Array([]string(p.Tags)), p.Published, p.Order,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update overwrites the editable fields of a live project. A missing or
// deleted row yields sql.ErrNoRows.
func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	const q = `UPDATE projects SET title = $2, description = $3, image_url = $4, image_key = $5,
		demo_url = $6, github_url = $7, tags = $8, published = $9, sort_order = $10, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		p.ID, p.Title, p.Description, p.ImageURL, p.ImageKey, p.DemoURL, p.GithubURL,
		pq.Array([]string(p.Tags)), p.Published, p.Order,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) SoftDelete(ctx context.Context, id string) error {
	return database.SoftDelete(ctx, r.db, database.TableProjects, id)
}

func (r *ProjectRepo) Restore(ctx context.Context, id string) error {
	return database.Restore(ctx, r.db, database.TableProjects, id)
}

// TogglePublished flips the flag and returns the new value.
func (r *ProjectRepo) TogglePublished(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE projects SET published = NOT published, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL RETURNING published`
	var published bool
	if err := r.db.GetContext(ctx, &published, q, id); err != nil {
		return false, err
	}
	return published, nil
}

// SetTags replaces the tag list of a live project.
func (r *ProjectRepo) SetTags(ctx context.Context, id string, tags []string) error {
	const q = `UPDATE projects SET tags = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL RETURNING id`
	var got string
	return r.db.GetContext(ctx, &got, q, id, pq.Array(tags))
}

func (r *ProjectRepo) Reorder(ctx context.Context, items []database.Position) error {
	return database.Reorder(ctx, r.db, database.TableProjects, items)
}
