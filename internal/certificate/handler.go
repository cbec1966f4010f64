package certificate

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListPublic(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, out)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), httpx.QueryBool(r, "includeDeleted"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, e)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in entity.Input
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debugw("invalid certificate payload", "err", err)
		httpx.WriteError(w, mutation.ErrBadRequest)
		return
	}
	e, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in entity.Input
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debugw("invalid certificate payload", "err", err)
		httpx.WriteError(w, mutation.ErrBadRequest)
		return
	}
	e, err := h.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Restore(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var in mutation.ReorderInput
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

func (h *Handler) SetTags(w http.ResponseWriter, r *http.Request) {
	var in entity.TagsInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, mutation.ErrBadRequest)
		return
	}
	tags, err := h.svc.SetTags(r.Context(), r.PathValue("id"), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, map[string][]string{"tags": tags})
}
