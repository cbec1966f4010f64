package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user/entity"
)

// Sessions is the part of *session.Service the auth endpoints need.
type Sessions interface {
	Issue(ctx context.Context, sub session.Subject) (string, time.Time, error)
	Revoke(ctx context.Context, token string) error
	SetCookie(w http.ResponseWriter, token string, expires time.Time)
	ClearCookie(w http.ResponseWriter)
	Token(r *http.Request) string
}

// Handler exposes the login / logout / me endpoints.
type Handler struct {
	svc      *UserService
	sessions Sessions
	logger   *zap.SugaredLogger
}

func NewHandler(svc *UserService, sessions Sessions, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: logger}
}

// Subject converts a user to the identity carried by its session.
func Subject(u *entity.User) session.Subject {
	return session.Subject{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login. The token is also set as
// an HTTP-only cookie; clients that cannot use cookies send it as a Bearer.
type LoginResponse struct {
	User      *entity.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, err := h.svc.AuthenticatePassword(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		switch {
		case errors.Is(err, ErrBadCredentials):
			httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, ErrLocked):
			httpx.WriteMessage(w, http.StatusLocked, "Account locked")
		case errors.Is(err, ErrDisabled):
			httpx.WriteMessage(w, http.StatusForbidden, "Account disabled")
		default:
			h.logger.Errorw("login error", "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}
	token, exp, err := h.sessions.Issue(r.Context(), Subject(u))
	if err != nil {
		h.logger.Errorw("issue session failed", "err", err, "user_id", u.ID)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	h.sessions.SetCookie(w, token, exp)
	h.logger.Infow("admin logged in", "user_id", u.ID)
	httpx.WriteData(w, http.StatusOK, LoginResponse{User: u, Token: token, ExpiresAt: exp})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.sessions.Token(r); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			h.logger.Warnw("revoke session failed", "err", err)
		}
	}
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := session.FromContext(r.Context())
	if claims == nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	u, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httpx.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h.logger.Errorw("load user failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	httpx.WriteData(w, http.StatusOK, u)
}
