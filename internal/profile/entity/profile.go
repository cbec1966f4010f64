package entity

import "time"

const (
	EntityName = "Profile"
	// SingletonID is the id of the only profile row.
	SingletonID = "main"
)

type Profile struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Title       string    `json:"title" db:"title"`
	Bio         string    `json:"bio" db:"bio"`
	About       string    `json:"about" db:"about"`
	Email       string    `json:"email" db:"email"`
	Location    string    `json:"location" db:"location"`
	GithubURL   string    `json:"github_url" db:"github_url"`
	LinkedinURL string    `json:"linkedin_url" db:"linkedin_url"`
	TwitterURL  string    `json:"twitter_url" db:"twitter_url"`
	WebsiteURL  string    `json:"website_url" db:"website_url"`
	ResumeURL   string    `json:"resume_url" db:"resume_url"`
	PhotoURL    string    `json:"photo_url" db:"photo_url"`
	PhotoKey    string    `json:"photo_key" db:"photo_key"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Input struct {
	Name        string `json:"name" validate:"notblank,max=120"`
	Title       string `json:"title" validate:"max=160"`
	Bio         string `json:"bio" validate:"max=500"`
	About       string `json:"about" validate:"max=8000"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	Location    string `json:"location" validate:"max=120"`
	GithubURL   string `json:"github_url" validate:"omitempty,url,max=1024"`
	LinkedinURL string `json:"linkedin_url" validate:"omitempty,url,max=1024"`
	TwitterURL  string `json:"twitter_url" validate:"omitempty,url,max=1024"`
	WebsiteURL  string `json:"website_url" validate:"omitempty,url,max=1024"`
	ResumeURL   string `json:"resume_url" validate:"omitempty,url,max=1024"`
	PhotoURL    string `json:"photo_url" validate:"omitempty,url,max=1024"`
	PhotoKey    string `json:"photo_key" validate:"max=512"`
}
