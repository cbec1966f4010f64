package entity

import (
	"encoding/json"
	"time"
)

// Actions recorded in the audit trail.
const (
	ActionCreate           = "CREATE"
	ActionUpdate           = "UPDATE"
	ActionDelete           = "DELETE"
	ActionRestore          = "RESTORE"
	ActionTogglePublish    = "TOGGLE_PUBLISH"
	ActionToggleVisibility = "TOGGLE_VISIBILITY"
	ActionReorder          = "REORDER"
	ActionUpdateTags       = "UPDATE_TAGS"
	ActionUpload           = "UPLOAD"
)

// Entry is one append-only audit row. Changes is an opaque JSON document,
// normally {"before": ..., "after": ...}.
type Entry struct {
	ID        string          `json:"id" db:"id"`
	Action    string          `json:"action" db:"action"`
	Entity    string          `json:"entity" db:"entity"`
	EntityID  string          `json:"entity_id" db:"entity_id"`
	Changes   json.RawMessage `json:"changes" db:"changes"`
	UserID    string          `json:"user_id" db:"user_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
