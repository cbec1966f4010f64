package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit"
	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/profile"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/site"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/skill"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/upload"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type auditStore struct{}

func (auditStore) Insert(context.Context, *auditentity.Entry) error { return nil }

func (auditStore) Recent(context.Context, string, int) ([]auditentity.Entry, error) {
	return []auditentity.Entry{{ID: "a1", Action: auditentity.ActionCreate}}, nil
}

// fakeAuth treats any request with X-Test-User as signed in.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Test-User"); id != "" {
			r = r.WithContext(session.WithClaims(r.Context(), &session.Claims{UserID: id}))
		}
		next.ServeHTTP(w, r)
	})
}

func newRouter(t *testing.T, cfg Config, db Pinger) http.Handler {
	t.Helper()
	lg := zap.NewNop().Sugar()
	return RegisterRoutes(lg, cfg, Handlers{
		Auth:         user.NewHandler(nil, nil, lg),
		Projects:     project.NewHandler(nil, lg),
		Experiences:  experience.NewHandler(nil, lg),
		Certificates: certificate.NewHandler(nil, lg),
		Skills:       skill.NewHandler(nil, lg),
		Profile:      profile.NewHandler(nil, lg),
		Sections:     section.NewHandler(nil, lg),
		Audit:        audit.NewHandler(audit.NewService(auditStore{}), lg),
		Upload:       upload.NewHandler(nil, lg),
		Site:         site.NewHandler(nil, lg),
		Authenticate: fakeAuth,
		Require:      session.Require,
		DB:           db,
	})
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, Config{}, pinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = httptest.NewRecorder()
	newRouter(t, Config{}, pinger{err: errors.New("down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	h := newRouter(t, Config{}, nil)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/admin/projects"},
		{http.MethodPost, "/api/admin/projects"},
		{http.MethodPut, "/api/admin/projects/1"},
		{http.MethodDelete, "/api/admin/projects/1"},
		{http.MethodPost, "/api/admin/projects/1/restore"},
		{http.MethodPost, "/api/admin/projects/1/publish"},
		{http.MethodPut, "/api/admin/projects/1/tags"},
		{http.MethodPost, "/api/admin/projects/reorder"},
		{http.MethodPost, "/api/admin/experiences"},
		{http.MethodPost, "/api/admin/experiences/1/restore"},
		{http.MethodPut, "/api/admin/certificates/1/tags"},
		{http.MethodDelete, "/api/admin/skills/1"},
		{http.MethodPost, "/api/admin/skills/1/visibility"},
		{http.MethodPut, "/api/admin/profile"},
		{http.MethodPut, "/api/admin/sections/about"},
		{http.MethodPost, "/api/admin/sections/about/toggle"},
		{http.MethodPost, "/api/admin/sections/reorder"},
		{http.MethodGet, "/api/admin/audit"},
		{http.MethodPost, "/api/admin/upload"},
		{http.MethodDelete, "/api/admin/upload?key=uploads/x.png"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestAuthenticatedAdminRoute(t *testing.T) {
	h := newRouter(t, Config{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/audit?limit=5", nil)
	req.Header.Set("X-Test-User", "u1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"a1"`)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newRouter(t, Config{}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newRouter(t, Config{AllowedOrigins: []string{"https://admin.example.com"}}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/admin/projects", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/admin/projects", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")
	cfg := ConfigFromEnv()
	assert.Equal(t, "0.0.0.0:8431", cfg.Addr)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}
