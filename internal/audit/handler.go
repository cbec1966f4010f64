package audit

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/httpx"
)

// Handler serves the admin activity feed.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Recent(r.Context(), r.URL.Query().Get("entity"), httpx.QueryInt(r, "limit", defaultLimit))
	if err != nil {
		h.logger.Errorw("list audit logs", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to load audit log")
		return
	}
	httpx.WriteData(w, http.StatusOK, entries)
}
