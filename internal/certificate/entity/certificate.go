package entity

import (
	"time"

	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

const EntityName = "Certificate"

type Certificate struct {
	ID            string         `json:"id" db:"id"`
	Title         string         `json:"title" db:"title"`
	Issuer        string         `json:"issuer" db:"issuer"`
	Description   string         `json:"description" db:"description"`
	ImageURL      string         `json:"image_url" db:"image_url"`
	ImageKey      string         `json:"image_key" db:"image_key"`
	CredentialURL string         `json:"credential_url" db:"credential_url"`
	IssueDate     database.Date  `json:"issue_date" db:"issue_date"`
	Tags          pq.StringArray `json:"tags" db:"tags"`
	Order         int            `json:"order" db:"sort_order"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

type Input struct {
	Title         string   `json:"title" validate:"notblank,max=160"`
	Issuer        string   `json:"issuer" validate:"notblank,max=120"`
	Description   string   `json:"description" validate:"max=2000"`
	ImageURL      string   `json:"image_url" validate:"omitempty,url,max=1024"`
	ImageKey      string   `json:"image_key" validate:"max=512"`
	CredentialURL string   `json:"credential_url" validate:"omitempty,url,max=1024"`
	IssueDate     string   `json:"issue_date" validate:"required,datetime=2006-01-02"`
	Tags          []string `json:"tags" validate:"max=40"`
	Order         int      `json:"order" validate:"gte=0"`
}

type TagsInput struct {
	Tags []string `json:"tags" validate:"max=40"`
}
