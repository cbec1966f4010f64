package site

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/httpx"
)

//go:embed templates/*.html
var templateFS embed.FS

type sectionView struct {
	Page *Page
	Key  string
}

var funcs = template.FuncMap{
	"section": func(p *Page, key string) sectionView { return sectionView{Page: p, Key: key} },
	// paragraphs splits text on blank lines.
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}

var homeTemplate = template.Must(template.New("home.html").Funcs(funcs).ParseFS(templateFS, "templates/home.html"))

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Home renders the public root page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Page(r.Context())
	if err != nil {
		h.logger.Errorw("build site page failed", "err", err)
		http.Error(w, "Failed to load page", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, page); err != nil {
		h.logger.Errorw("render site page failed", "err", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	// revalidate every time; the ETag turns unchanged pages into a 304
	sum := sha256.Sum256(buf.Bytes())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:16])+`"`)
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(buf.Bytes()))
}

// JSON returns the page view model.
func (h *Handler) JSON(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Page(r.Context())
	if err != nil {
		h.logger.Errorw("build site page failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to load site")
		return
	}
	httpx.WriteData(w, http.StatusOK, page)
}
