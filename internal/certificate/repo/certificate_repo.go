package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

const columns = `id, title, issuer, description, image_url, image_key, credential_url, issue_date, tags,
	sort_order, created_at, updated_at, deleted_at`

type CertificateRepo struct {
	db *sqlx.DB
}

func NewCertificateRepo(db *sqlx.DB) *CertificateRepo { return &CertificateRepo{db: db} }

// List orders by sort_order, newest issue first.
func (r *CertificateRepo) List(ctx context.Context, includeDeleted bool) ([]entity.Certificate, error) {
	q := `SELECT ` + columns + ` FROM certificates`
	if !includeDeleted {
		q += ` WHERE deleted_at IS NULL`
	}
	q += ` ORDER BY sort_order ASC, issue_date DESC`

	out := []entity.Certificate{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CertificateRepo) GetByID(ctx context.Context, id string) (*entity.Certificate, error) {
	var c entity.Certificate
	if err := r.db.GetContext(ctx, &c, `SELECT `+columns+` FROM certificates WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepo) Create(ctx context.Context, c *entity.Certificate) error {
	const q = `INSERT INTO certificates (id, title, issuer, description, image_url, image_key, credential_url, issue_date, tags, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		c.ID, c.Title, c.Issuer, c.Description, c.ImageURL, c.ImageKey, c.CredentialURL, c.IssueDate,
		pq.Array([]string(c.Tags)), c.Order,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *CertificateRepo) Update(ctx context.Context, c *entity.Certificate) error {
	const q = `UPDATE certificates SET title = $2, issuer = $3, description = $4, image_url = $5, image_key = $6,
		credential_url = $7, issue_date = $8, tags = $9, sort_order = $10, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		c.ID, c.Title, c.Issuer, c.Description, c.ImageURL, c.ImageKey, c.CredentialURL, c.IssueDate,
		pq.Array([]string(c.Tags)), c.Order,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *CertificateRepo) SetTags(ctx context.Context, id string, tags []string) error {
	const q = `UPDATE certificates SET tags = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL RETURNING id`
	var got string
	return r.db.GetContext(ctx, &got, q, id, pq.Array(tags))
}

func (r *CertificateRepo) SoftDelete(ctx context.Context, id string) error {
	return database.SoftDelete(ctx, r.db, database.TableCertificates, id)
}

func (r *CertificateRepo) Restore(ctx context.Context, id string) error {
	return database.Restore(ctx, r.db, database.TableCertificates, id)
}

func (r *CertificateRepo) Reorder(ctx context.Context, items []database.Position) error {
	return database.Reorder(ctx, r.db, database.TableCertificates, items)
}
