package audit

import (
	"context"
	"time"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/utilities"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Store is the append-only persistence for audit entries.
type Store interface {
	Insert(ctx context.Context, e *entity.Entry) error
	Recent(ctx context.Context, entityName string, limit int) ([]entity.Entry, error)
}

// Service writes and lists audit entries.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Record stamps e with an id and time and appends it.
func (s *Service) Record(ctx context.Context, e entity.Entry) error {
	if e.ID == "" {
		e.ID = utilities.NewKSUID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	return s.store.Insert(ctx, &e)
}

// Recent lists the newest entries, optionally for one entity type.
func (s *Service) Recent(ctx context.Context, entityName string, limit int) ([]entity.Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.store.Recent(ctx, entityName, limit)
}
