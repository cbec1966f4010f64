package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/utilities"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrNoSecret       = errors.New("session secret is not configured")
)

const defaultCookieName = "portfolio_session"

// Config holds the signing and cookie settings.
type Config struct {
	Secret       []byte
	TTL          time.Duration
	Issuer       string
	CookieName   string
	CookieSecure bool
}

// ConfigFromEnv reads SESSION_* variables. A missing secret is left empty so
// the caller can decide whether that is fatal.
func ConfigFromEnv() Config {
	ttl := 24 * time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	secure := true
	if v := os.Getenv("SESSION_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			secure = b
		}
	}
	issuer := os.Getenv("SESSION_ISSUER")
	if issuer == "" {
		issuer = "portfolio"
	}
	return Config{
		Secret:       []byte(os.Getenv("SESSION_SECRET")),
		TTL:          ttl,
		Issuer:       issuer,
		CookieName:   defaultCookieName,
		CookieSecure: secure,
	}
}

// Store is the persistence used for server-side revocation.
type Store interface {
	Save(ctx context.Context, id, userID string, expiresAt time.Time) error
	Get(ctx context.Context, id string) (string, time.Time, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 session tokens.
type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

func NewService(store Store, cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrNoSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	return &Service{store: store, cfg: cfg, now: time.Now}, nil
}

// Issue signs a token for sub and records its id.
func (s *Service) Issue(ctx context.Context, sub Subject) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.TTL)
	jti := utilities.NewKSUID()
	claims := tokenClaims{
		Email: sub.Email,
		Name:  sub.Name,
		Role:  sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.cfg.Issuer,
			Subject:   sub.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	if err := s.store.Save(ctx, jti, sub.ID, exp); err != nil {
		return "", time.Time{}, fmt.Errorf("save session: %w", err)
	}
	return signed, exp, nil
}

func (s *Service) parse(token string) (*tokenClaims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if tc.ID == "" || tc.Subject == "" {
		return nil, ErrInvalidSession
	}
	return &tc, nil
}

// Validate verifies the signature and that the session was not revoked.
func (s *Service) Validate(ctx context.Context, token string) (*Claims, error) {
	tc, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	userID, expiresAt, err := s.store.Get(ctx, tc.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if userID != tc.Subject || !expiresAt.After(s.now()) {
		return nil, ErrInvalidSession
	}
	return &Claims{
		SessionID: tc.ID,
		UserID:    tc.Subject,
		Email:     tc.Email,
		Name:      tc.Name,
		Role:      tc.Role,
		ExpiresAt: expiresAt,
	}, nil
}

// Revoke removes the session behind token. Unparseable tokens are ignored.
func (s *Service) Revoke(ctx context.Context, token string) error {
	tc, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, tc.ID)
}

// RevokeUser drops every session for a user.
func (s *Service) RevokeUser(ctx context.Context, userID string) error {
	return s.store.DeleteForUser(ctx, userID)
}

// Prune removes expired sessions.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx)
}

// CookieName is the name of the session cookie.
func (s *Service) CookieName() string { return s.cfg.CookieName }
