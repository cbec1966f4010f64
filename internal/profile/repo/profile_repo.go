package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/profile/entity"
)

type ProfileRepo struct {
	db *sqlx.DB
}

func NewProfileRepo(db *sqlx.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// Get returns the singleton row or sql.ErrNoRows.
func (r *ProfileRepo) Get(ctx context.Context) (*entity.Profile, error) {
	const q = `SELECT id, name, title, bio, about, email, location, github_url, linkedin_url, twitter_url,
		website_url, resume_url, photo_url, photo_key, updated_at
		FROM profiles WHERE id = $1`
	var p entity.Profile
	if err := r.db.GetContext(ctx, &p, q, entity.SingletonID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or overwrites the singleton row.
func (r *ProfileRepo) Upsert(ctx context.Context, p *entity.Profile) error {
	const q = `INSERT INTO profiles (id, name, title, bio, about, email, location, github_url, linkedin_url,
			twitter_url, website_url, resume_url, photo_url, photo_key, updated_at)
		VALUES (:id, :name, :title, :bio, :about, :email, :location, :github_url, :linkedin_url,
			:twitter_url, :website_url, :resume_url, :photo_url, :photo_key, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, title = EXCLUDED.title, bio = EXCLUDED.bio, about = EXCLUDED.about,
			email = EXCLUDED.email, location = EXCLUDED.location, github_url = EXCLUDED.github_url,
			linkedin_url = EXCLUDED.linkedin_url, twitter_url = EXCLUDED.twitter_url,
			website_url = EXCLUDED.website_url, resume_url = EXCLUDED.resume_url,
			photo_url = EXCLUDED.photo_url, photo_key = EXCLUDED.photo_key, updated_at = NOW()
		RETURNING updated_at`
	p.ID = entity.SingletonID
	rows, err := r.db.NamedQueryContext(ctx, q, p)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&p.UpdatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}
