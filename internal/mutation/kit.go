// Package mutation implements the protocol every admin write follows:
// authorize, validate, mutate, audit, invalidate.
package mutation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

// Auditor appends audit entries.
type Auditor interface {
	Record(ctx context.Context, e auditentity.Entry) error
}

// Invalidator evicts cached reads for tags.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string)
}

// Kit bundles the collaborators shared by the content services.
type Kit struct {
	audit    Auditor
	cache    Invalidator
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewKit(a Auditor, c Invalidator, logger *zap.SugaredLogger) *Kit {
	return &Kit{audit: a, cache: c, validate: newValidator(), logger: logger}
}

// Logger exposes the kit's logger to services.
func (k *Kit) Logger() *zap.SugaredLogger { return k.logger }

// Authorize returns the session claims or ErrUnauthorized.
func (k *Kit) Authorize(ctx context.Context) (*session.Claims, error) {
	c := session.FromContext(ctx)
	if c == nil {
		return nil, ErrUnauthorized
	}
	return c, nil
}

// Fail logs a database failure and converts it to an *OpError.
func (k *Kit) Fail(op string, err error) error {
	k.logger.Errorw("database operation failed", "op", op, "err", err)
	return &OpError{Op: op, Err: err}
}

// NotFoundOr maps sql.ErrNoRows to ErrNotFound and anything else to Fail.
func (k *Kit) NotFoundOr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return k.Fail(op, err)
}

// Change describes one successful mutation for the audit trail.
type Change struct {
	Action   string
	Entity   string
	EntityID string
	Before   any
	After    any
}

// SoftDeleted is the after side of a soft-delete diff.
func SoftDeleted(at time.Time) map[string]any {
	return map[string]any{"deleted_at": at.UTC()}
}

// Restored is the after side of a restore diff.
func Restored() map[string]any {
	return map[string]any{"deleted_at": nil}
}

// Commit records the audit entry and invalidates tags. Audit failures are
// logged and swallowed.
func (k *Kit) Commit(ctx context.Context, claims *session.Claims, ch Change, tags ...string) {
	changes, err := json.Marshal(map[string]any{"before": ch.Before, "after": ch.After})
	if err != nil {
		k.logger.Warnw("audit payload marshal failed", "entity", ch.Entity, "err", err)
		changes = []byte("{}")
	}
	userID := ""
	if claims != nil {
		userID = claims.UserID
	}
	if k.audit != nil {
		if err := k.audit.Record(ctx, auditentity.Entry{
			Action:   ch.Action,
			Entity:   ch.Entity,
			EntityID: ch.EntityID,
			Changes:  changes,
			UserID:   userID,
		}); err != nil {
			k.logger.Warnw("audit write failed", "action", ch.Action, "entity", ch.Entity, "id", ch.EntityID, "err", err)
		}
	}
	if k.cache != nil {
		k.cache.Invalidate(ctx, tags...)
	}
}

// OrderItem assigns a sort position to a row.
type OrderItem struct {
	ID    string `json:"id" validate:"notblank"`
	Order int    `json:"order" validate:"gte=0"`
}

// ReorderInput is the body of every reorder endpoint.
type ReorderInput struct {
	Items []OrderItem `json:"items" validate:"required,min=1,max=500,dive"`
}

// Positions converts the items for database.Reorder.
func (in ReorderInput) Positions() []database.Position {
	out := make([]database.Position, len(in.Items))
	for i, it := range in.Items {
		out[i] = database.Position{ID: it.ID, Order: it.Order}
	}
	return out
}

const (
	MaxTags      = 20
	MaxTagLength = 40
)

// NormalizeTags trims, drops empties and removes case-insensitive duplicates,
// keeping the first spelling.
func NormalizeTags(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		if len([]rune(t)) > MaxTagLength {
			return nil, Invalid("tags", "each tag must be at most 40 characters")
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	if len(out) > MaxTags {
		return nil, Invalid("tags", "must have at most 20 items")
	}
	return out, nil
}
