package entity

import "time"

const EntityName = "Skill"

type Skill struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Order     int       `json:"order" db:"sort_order"`
	Visible   bool      `json:"visible" db:"visible"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Group is the public rendering unit: every visible skill of one category.
type Group struct {
	Category string  `json:"category"`
	Skills   []Skill `json:"skills"`
}

type Input struct {
	Name     string `json:"name" validate:"notblank,max=80"`
	Category string `json:"category" validate:"max=80"`
	Order    int    `json:"order" validate:"gte=0"`
	Visible  *bool  `json:"visible"`
}
