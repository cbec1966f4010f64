package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	certentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate/entity"
	expentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience/entity"
	profileentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/profile/entity"
	projectentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project/entity"
	skillentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/skill/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

type fakeSources struct {
	sections []string
	calls    map[string]int
}

func (f *fakeSources) Get(context.Context) (*profileentity.Profile, error) {
	f.calls["profile"]++
	return &profileentity.Profile{Name: "Ada Lovelace", Title: "Engineer", About: "First.\n\nSecond.", Email: "ada@example.com"}, nil
}

func (f *fakeSources) Visible(context.Context) ([]string, error) {
	f.calls["sections"]++
	return f.sections, nil
}

type projects struct{ f *fakeSources }

func (p projects) ListPublic(context.Context) ([]projectentity.Project, error) {
	p.f.calls["projects"]++
	return []projectentity.Project{{ID: "1", Title: "Analytical Engine", Description: "Gears", Tags: []string{"go"}}}, nil
}

type experiences struct{ f *fakeSources }

func (e experiences) ListPublic(context.Context) ([]expentity.Experience, error) {
	e.f.calls["experiences"]++
	start, _ := database.ParseDate("2020-01-15")
	return []expentity.Experience{{ID: "1", Title: "Engineer", Company: "Babbage & Co", StartDate: start, Current: true}}, nil
}

type certificates struct{ f *fakeSources }

func (c certificates) ListPublic(context.Context) ([]certentity.Certificate, error) {
	c.f.calls["certificates"]++
	issued, _ := database.ParseDate("2021-06-01")
	return []certentity.Certificate{{ID: "1", Title: "CKA", Issuer: "CNCF", IssueDate: issued}}, nil
}

type skills struct{ f *fakeSources }

func (s skills) ListPublic(context.Context) ([]skillentity.Group, error) {
	s.f.calls["skills"]++
	return []skillentity.Group{{Category: "Languages", Skills: []skillentity.Skill{{Name: "Go"}}}}, nil
}

func newService(t *testing.T, sections ...string) (*Service, *fakeSources, *cache.Store) {
	t.Helper()
	f := &fakeSources{sections: sections, calls: map[string]int{}}
	c := cache.New(cache.Config{TTL: time.Minute}, zap.NewNop().Sugar())
	svc := NewService(Sources{
		Profile:      f,
		Sections:     f,
		Projects:     projects{f},
		Experiences:  experiences{f},
		Certificates: certificates{f},
		Skills:       skills{f},
	}, c)
	return svc, f, c
}

func TestPage_OnlyLoadsVisibleSections(t *testing.T) {
	svc, f, _ := newService(t, "about", "skills", "projects")
	p, err := svc.Page(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"about", "skills", "projects"}, p.Sections)
	assert.Len(t, p.Projects, 1)
	assert.Len(t, p.Skills, 1)
	assert.Empty(t, p.Experiences)
	assert.NotNil(t, p.Certificates)
	assert.Zero(t, f.calls["experiences"])
	assert.Zero(t, f.calls["certificates"])
}

func TestPage_CachedUntilSiteTagInvalidated(t *testing.T) {
	svc, f, c := newService(t, "projects")
	ctx := context.Background()
	_, err := svc.Page(ctx)
	require.NoError(t, err)
	_, err = svc.Page(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls["profile"])

	c.Invalidate(ctx, cache.TagSite)
	_, err = svc.Page(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls["profile"])
}

func TestHandler_HomeRendersSectionsInOrder(t *testing.T) {
	svc, _, _ := newService(t, "contact", "experience", "about", "certificates")
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	contact := strings.Index(body, `id="contact"`)
	experience := strings.Index(body, `id="experience"`)
	about := strings.Index(body, `id="about"`)
	require.True(t, contact > 0 && experience > 0 && about > 0)
	assert.Less(t, contact, experience)
	assert.Less(t, experience, about)
	assert.NotContains(t, body, `id="projects"`)
	assert.Contains(t, body, "Babbage &amp; Co")
	assert.Contains(t, body, "Jan 2020")
	assert.Contains(t, body, "Present")
	assert.Contains(t, body, "<p>Second.</p>")
	assert.Contains(t, body, "mailto:ada@example.com")
}

func TestHandler_HomeRevalidatesWithETag(t *testing.T) {
	svc, _, _ := newService(t, "about")
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.Home(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	rec = httptest.NewRecorder()
	h.Home(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="about"`)
}

func TestHandler_JSON(t *testing.T) {
	svc, _, _ := newService(t, "projects")
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.JSON(rec, httptest.NewRequest(http.MethodGet, "/api/site", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data struct {
			Profile  profileentity.Profile   `json:"profile"`
			Sections []string                `json:"sections"`
			Projects []projectentity.Project `json:"projects"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Ada Lovelace", out.Data.Profile.Name)
	assert.Equal(t, []string{"projects"}, out.Data.Sections)
	assert.Equal(t, "Analytical Engine", out.Data.Projects[0].Title)
}
