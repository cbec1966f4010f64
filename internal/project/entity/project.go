package entity

import (
	"time"

	"github.com/lib/pq"
)

// EntityName is the audit entity label for projects.
const EntityName = "Project"

// Project is a portfolio project row.
type Project struct {
	ID          string         `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	ImageURL    string         `json:"image_url" db:"image_url"`
	ImageKey    string         `json:"image_key" db:"image_key"`
	DemoURL     string         `json:"demo_url" db:"demo_url"`
	GithubURL   string         `json:"github_url" db:"github_url"`
	Tags        pq.StringArray `json:"tags" db:"tags"`
	Published   bool           `json:"published" db:"published"`
	Order       int            `json:"order" db:"sort_order"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Input is the create/update payload.
type Input struct {
	Title       string   `json:"title" validate:"notblank,max=120"`
	Description string   `json:"description" validate:"notblank,max=2000"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url,max=1024"`
	ImageKey    string   `json:"image_key" validate:"max=512"`
	DemoURL     string   `json:"demo_url" validate:"omitempty,url,max=1024"`
	GithubURL   string   `json:"github_url" validate:"omitempty,url,max=1024"`
	Tags        []string `json:"tags" validate:"max=40"`
	Published   bool     `json:"published"`
	Order       int      `json:"order" validate:"gte=0"`
}

// TagsInput is the payload of the tag editor.
type TagsInput struct {
	Tags []string `json:"tags" validate:"max=40"`
}
