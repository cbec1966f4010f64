package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

const EntityName = "Experience"

// Experience is one position on the work timeline. EndDate is nil while the
// position is current.
type Experience struct {
	ID          string         `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Company     string         `json:"company" db:"company"`
	Location    string         `json:"location" db:"location"`
	Description string         `json:"description" db:"description"`
	StartDate   database.Date  `json:"start_date" db:"start_date"`
	EndDate     *database.Date `json:"end_date" db:"end_date"`
	Current     bool           `json:"current" db:"current"`
	Icon        string         `json:"icon" db:"icon"`
	Order       int            `json:"order" db:"sort_order"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Input is the create/update payload. Dates are "YYYY-MM-DD".
type Input struct {
	Title       string `json:"title" validate:"notblank,max=120"`
	Company     string `json:"company" validate:"notblank,max=120"`
	Location    string `json:"location" validate:"max=120"`
	Description string `json:"description" validate:"max=4000"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Current     bool   `json:"current"`
	Icon        string `json:"icon" validate:"max=64"`
	Order       int    `json:"order" validate:"gte=0"`
}
