package repo

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
)

type AuditRepo struct {
	db *sqlx.DB
}

func NewAuditRepo(db *sqlx.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends an entry. Rows are never updated.
func (r *AuditRepo) Insert(ctx context.Context, e *entity.Entry) error {
	changes := e.Changes
	if len(changes) == 0 {
		changes = json.RawMessage("{}")
	}
	const q = `INSERT INTO audit_logs (id, action, entity, entity_id, changes, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Action, e.Entity, e.EntityID, []byte(changes), e.UserID, e.CreatedAt)
	return err
}

// Recent returns the newest entries first.
func (r *AuditRepo) Recent(ctx context.Context, entityName string, limit int) ([]entity.Entry, error) {
	const q = `SELECT id, action, entity, entity_id, changes, user_id, created_at
		FROM audit_logs
		WHERE ($1 = '' OR entity = $1)
		ORDER BY created_at DESC
		LIMIT $2`
	out := []entity.Entry{}
	if err := r.db.SelectContext(ctx, &out, q, entityName, limit); err != nil {
		return nil, err
	}
	return out, nil
}
