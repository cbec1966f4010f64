package router

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/profile"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/site"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/skill"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/upload"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers. Images are
// allowed from any https origin so bucket-hosted uploads render on the site.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:; object-src 'none'; base-uri 'self';")
			}
			// HSTS only over TLS, 30 days
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Config holds the HTTP server settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// ConfigFromEnv reads HTTP_ADDR and CORS_ALLOWED_ORIGINS (comma separated).
func ConfigFromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}
	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{Addr: addr, AllowedOrigins: origins}
}

// Pinger reports database health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *user.Handler
	Projects     *project.Handler
	Experiences  *experience.Handler
	Certificates *certificate.Handler
	Skills       *skill.Handler
	Profile      *profile.Handler
	Sections     *section.Handler
	Audit        *audit.Handler
	Upload       *upload.Handler
	Site         *site.Handler
	// Authenticate attaches session claims to requests that carry a valid token.
	Authenticate func(http.Handler) http.Handler
	// Require rejects requests without session claims.
	Require func(http.Handler) http.Handler
	DB      Pinger
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, cfg Config, h Handlers) http.Handler {
	mux := http.NewServeMux()
	admin := func(f http.HandlerFunc) http.Handler { return h.Require(f) }

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if h.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := h.DB.PingContext(ctx); err != nil {
				logger.Warnw("health check db ping failed", "err", err)
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public site
	mux.HandleFunc("GET /{$}", h.Site.Home)
	mux.HandleFunc("GET /api/site", h.Site.JSON)
	mux.HandleFunc("GET /api/profile", h.Profile.Get)
	mux.HandleFunc("GET /api/projects", h.Projects.ListPublic)
	mux.HandleFunc("GET /api/experiences", h.Experiences.ListPublic)
	mux.HandleFunc("GET /api/certificates", h.Certificates.ListPublic)
	mux.HandleFunc("GET /api/skills", h.Skills.ListPublic)

	// auth
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.Handle("GET /api/auth/me", admin(h.Auth.Me))

	// projects
	mux.Handle("GET /api/admin/projects", admin(h.Projects.List))
	mux.Handle("POST /api/admin/projects", admin(h.Projects.Create))
	mux.Handle("POST /api/admin/projects/reorder", admin(h.Projects.Reorder))
	mux.Handle("GET /api/admin/projects/{id}", admin(h.Projects.Get))
	mux.Handle("PUT /api/admin/projects/{id}", admin(h.Projects.Update))
	mux.Handle("DELETE /api/admin/projects/{id}", admin(h.Projects.Delete))
	mux.Handle("POST /api/admin/projects/{id}/restore", admin(h.Projects.Restore))
	mux.Handle("POST /api/admin/projects/{id}/publish", admin(h.Projects.TogglePublish))
	mux.Handle("PUT /api/admin/projects/{id}/tags", admin(h.Projects.SetTags))

	// experiences
	mux.Handle("GET /api/admin/experiences", admin(h.Experiences.List))
	mux.Handle("POST /api/admin/experiences", admin(h.Experiences.Create))
	mux.Handle("POST /api/admin/experiences/reorder", admin(h.Experiences.Reorder))
	mux.Handle("GET /api/admin/experiences/{id}", admin(h.Experiences.Get))
	mux.Handle("PUT /api/admin/experiences/{id}", admin(h.Experiences.Update))
	mux.Handle("DELETE /api/admin/experiences/{id}", admin(h.Experiences.Delete))
	mux.Handle("POST /api/admin/experiences/{id}/restore", admin(h.Experiences.Restore))

	// certificates
	mux.Handle("GET /api/admin/certificates", admin(h.Certificates.List))
	mux.Handle("POST /api/admin/certificates", admin(h.Certificates.Create))
	mux.Handle("POST /api/admin/certificates/reorder", admin(h.Certificates.Reorder))
	mux.Handle("GET /api/admin/certificates/{id}", admin(h.Certificates.Get))
	mux.Handle("PUT /api/admin/certificates/{id}", admin(h.Certificates.Update))
	mux.Handle("DELETE /api/admin/certificates/{id}", admin(h.Certificates.Delete))
	mux.Handle("POST /api/admin/certificates/{id}/restore", admin(h.Certificates.Restore))
	mux.Handle("PUT /api/admin/certificates/{id}/tags", admin(h.Certificates.SetTags))

	// skills
	mux.Handle("GET /api/admin/skills", admin(h.Skills.List))
	mux.Handle("POST /api/admin/skills", admin(h.Skills.Create))
	mux.Handle("POST /api/admin/skills/reorder", admin(h.Skills.Reorder))
	mux.Handle("GET /api/admin/skills/{id}", admin(h.Skills.Get))
	mux.Handle("PUT /api/admin/skills/{id}", admin(h.Skills.Update))
	mux.Handle("DELETE /api/admin/skills/{id}", admin(h.Skills.Delete))
	mux.Handle("POST /api/admin/skills/{id}/visibility", admin(h.Skills.ToggleVisible))

	// profile, sections, audit, uploads
	mux.Handle("GET /api/admin/profile", admin(h.Profile.Get))
	mux.Handle("PUT /api/admin/profile", admin(h.Profile.Put))
	mux.Handle("GET /api/admin/sections", admin(h.Sections.List))
	mux.Handle("POST /api/admin/sections/reorder", admin(h.Sections.Reorder))
	mux.Handle("PUT /api/admin/sections/{section}", admin(h.Sections.Update))
	mux.Handle("POST /api/admin/sections/{section}/toggle", admin(h.Sections.Toggle))
	mux.Handle("GET /api/admin/audit", admin(h.Audit.List))
	mux.Handle("POST /api/admin/upload", admin(h.Upload.Upload))
	mux.Handle("DELETE /api/admin/upload", admin(h.Upload.Delete))

	// session, then security headers, then logging outermost
	var handler http.Handler = h.Authenticate(mux)
	if len(cfg.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           600,
		}).Handler(handler)
	}
	return LoggingMiddleware(logger)(SecurityHeadersMiddleware()(handler))
}
