package entity

import "time"

const EntityName = "SectionVisibility"

// Section keys rendered by the public site.
const (
	About        = "about"
	Projects     = "projects"
	Experience   = "experience"
	Certificates = "certificates"
	Skills       = "skills"
	Contact      = "contact"
)

// Section controls whether and where a block of the public page is shown.
type Section struct {
	Section   string    `json:"section" db:"section" yaml:"section"`
	Label     string    `json:"label" db:"label" yaml:"label"`
	Visible   bool      `json:"visible" db:"visible" yaml:"visible"`
	Order     int       `json:"order" db:"sort_order" yaml:"order"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" yaml:"-"`
}

// Input is the admin edit payload. Nil fields keep their stored value.
type Input struct {
	Label   *string `json:"label" validate:"omitempty,max=60"`
	Visible *bool   `json:"visible"`
	Order   *int    `json:"order" validate:"omitempty,gte=0"`
}

// ReorderInput lists section keys in their new display order.
type ReorderInput struct {
	Sections []string `json:"sections" validate:"required,min=1,max=32,dive,required,max=32"`
}
