package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Table names accepted by the shared row helpers. Only these constants are
// ever interpolated into SQL.
const (
	TableProjects     = "projects"
	TableExperiences  = "experiences"
	TableCertificates = "certificates"
	TableSkills       = "skills"
)

var softDeleteTables = map[string]bool{
	TableProjects:     true,
	TableExperiences:  true,
	TableCertificates: true,
}

var orderedTables = map[string]bool{
	TableProjects:     true,
	TableExperiences:  true,
	TableCertificates: true,
	TableSkills:       true,
}

// Position is a row id and its new sort order.
type Position struct {
	ID    string
	Order int
}

// SoftDelete stamps deleted_at on a live row. A missing or already deleted
// row yields sql.ErrNoRows.
func SoftDelete(ctx context.Context, db *sqlx.DB, table, id string) error {
	if !softDeleteTables[table] {
		return fmt.Errorf("soft delete: unsupported table %q", table)
	}
	q := fmt.Sprintf(`UPDATE %s SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL RETURNING id`, table)
	var got string
	return db.GetContext(ctx, &got, q, id)
}

// Restore clears deleted_at. A missing or live row yields sql.ErrNoRows.
func Restore(ctx context.Context, db *sqlx.DB, table, id string) error {
	if !softDeleteTables[table] {
		return fmt.Errorf("restore: unsupported table %q", table)
	}
	q := fmt.Sprintf(`UPDATE %s SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL RETURNING id`, table)
	var got string
	return db.GetContext(ctx, &got, q, id)
}

// Reorder writes every position in one transaction. If any id is unknown the
// whole reorder is rolled back with sql.ErrNoRows.
func Reorder(ctx context.Context, db *sqlx.DB, table string, items []Position) (err error) {
	if !orderedTables[table] {
		return fmt.Errorf("reorder: unsupported table %q", table)
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	q := fmt.Sprintf(`UPDATE %s SET sort_order = $1, updated_at = NOW() WHERE id = $2`, table)
	for _, it := range items {
		res, execErr := tx.ExecContext(ctx, q, it.Order, it.ID)
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
