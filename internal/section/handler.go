package section

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section/entity"
)

// Handler contains dependencies for handling section endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, out)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in entity.Input
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debugw("invalid section payload", "err", err)
		httpx.WriteError(w, mutation.ErrBadRequest)
		return
	}
	s, err := h.svc.Update(r.Context(), r.PathValue("section"), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, s)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	visible, err := h.svc.Toggle(r.Context(), r.PathValue("section"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string]bool{"visible": visible})
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var in entity.ReorderInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, mutation.ErrBadRequest)
		return
	}
	if err := h.svc.Reorder(r.Context(), in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
