// Package site assembles and renders the public home page.
package site

import (
	"context"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	certentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate/entity"
	expentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience/entity"
	profileentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/profile/entity"
	projectentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project/entity"
	sectionentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section/entity"
	skillentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/skill/entity"
)

type ProfileSource interface {
	Get(ctx context.Context) (*profileentity.Profile, error)
}

type SectionSource interface {
	Visible(ctx context.Context) ([]string, error)
}

type ProjectSource interface {
	ListPublic(ctx context.Context) ([]projectentity.Project, error)
}

type ExperienceSource interface {
	ListPublic(ctx context.Context) ([]expentity.Experience, error)
}

type CertificateSource interface {
	ListPublic(ctx context.Context) ([]certentity.Certificate, error)
}

type SkillSource interface {
	ListPublic(ctx context.Context) ([]skillentity.Group, error)
}

// Sources are the public reads the page is built from.
type Sources struct {
	Profile      ProfileSource
	Sections     SectionSource
	Projects     ProjectSource
	Experiences  ExperienceSource
	Certificates CertificateSource
	Skills       SkillSource
}

// Page is the view model of the home page. Lists of hidden sections are left
// empty.
type Page struct {
	Profile      *profileentity.Profile   `json:"profile"`
	Sections     []string                 `json:"sections"`
	Projects     []projectentity.Project  `json:"projects"`
	Experiences  []expentity.Experience   `json:"experiences"`
	Certificates []certentity.Certificate `json:"certificates"`
	Skills       []skillentity.Group      `json:"skills"`
	GeneratedAt  time.Time                `json:"generated_at"`
}

type Service struct {
	src   Sources
	cache *cache.Store
	now   func() time.Time
}

func NewService(src Sources, c *cache.Store) *Service {
	return &Service{src: src, cache: c, now: time.Now}
}

// Page returns the cached view model.
func (s *Service) Page(ctx context.Context) (*Page, error) {
	return cache.Remember(s.cache, cache.TagSite, "page", func() (*Page, error) {
		return s.build(ctx)
	})
}

func (s *Service) build(ctx context.Context) (*Page, error) {
	profile, err := s.src.Profile.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		profile = &profileentity.Profile{}
	}
	sections, err := s.src.Sections.Visible(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	p := &Page{
		Profile:      profile,
		Sections:     sections,
		Projects:     []projectentity.Project{},
		Experiences:  []expentity.Experience{},
		Certificates: []certentity.Certificate{},
		Skills:       []skillentity.Group{},
		GeneratedAt:  s.now().UTC(),
	}
	for _, key := range sections {
		switch key {
		case sectionentity.Projects:
			p.Projects, err = s.src.Projects.ListPublic(ctx)
		case sectionentity.Experience:
			p.Experiences, err = s.src.Experiences.ListPublic(ctx)
		case sectionentity.Certificates:
			p.Certificates, err = s.src.Certificates.ListPublic(ctx)
		case sectionentity.Skills:
			p.Skills, err = s.src.Skills.ListPublic(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
	}
	return p, nil
}
