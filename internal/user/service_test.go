package user

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user/entity"
)

type memStore struct {
	byEmail map[string]*entity.User
	now     func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{byEmail: map[string]*entity.User{}, now: now}
}

func (m *memStore) find(id string) *entity.User {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *memStore) Create(_ context.Context, u *entity.User) error {
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*entity.User, error) {
	u := m.find(id)
	if u == nil {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) IncrementFailedLogin(_ context.Context, id string) (int, error) {
	u := m.find(id)
	u.LoginFailedAttempts++
	return u.LoginFailedAttempts, nil
}

func (m *memStore) LockIfThreshold(_ context.Context, id string, threshold, lockMinutes int) (bool, error) {
	u := m.find(id)
	if u.LoginFailedAttempts < threshold {
		return false, nil
	}
	until := m.now().Add(time.Duration(lockMinutes) * time.Minute)
	u.LockedUntil = &until
	u.LoginFailedAttempts = 0
	return true, nil
}

func (m *memStore) ResetLoginSuccess(_ context.Context, id string) error {
	u := m.find(id)
	u.LoginFailedAttempts = 0
	u.LockedUntil = nil
	now := m.now()
	u.LastLoginAt = &now
	return nil
}

func (m *memStore) UpdatePassword(_ context.Context, id, hash, algo string) error {
	u := m.find(id)
	if u == nil {
		return sql.ErrNoRows
	}
	u.PasswordHash, u.PasswordAlgo = hash, algo
	u.LockedUntil = nil
	return nil
}

func (m *memStore) SetActive(_ context.Context, id string, active bool) error {
	u := m.find(id)
	if u == nil {
		return sql.ErrNoRows
	}
	u.Active = active
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T) (*UserService, *memStore, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	st := newMemStore(c.now)
	svc := NewUserService(st, BcryptHasher{Cost: bcrypt.MinCost}, zap.NewNop().Sugar())
	svc.now = c.now
	_, err := svc.CreateUser(context.Background(), "Admin@Example.com", "correct horse", "Admin")
	require.NoError(t, err)
	return svc, st, c
}

func TestCreateUser(t *testing.T) {
	svc, st, _ := newService(t)
	u := st.byEmail["admin@example.com"]
	require.NotNil(t, u)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.True(t, u.Active)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.Equal(t, "bcrypt:4", u.PasswordAlgo)

	_, err := svc.CreateUser(context.Background(), "admin@example.com", "another password", "x")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = svc.CreateUser(context.Background(), "second@example.com", "short", "x")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = svc.CreateUser(context.Background(), "not-an-email", "long enough pw", "x")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestAuthenticatePassword(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	u, err := svc.AuthenticatePassword(ctx, " ADMIN@example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.NotNil(t, st.byEmail["admin@example.com"].LastLoginAt)

	_, err = svc.AuthenticatePassword(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.AuthenticatePassword(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.AuthenticatePassword(ctx, "", "")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticatePassword_Disabled(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.SetActive(ctx, "admin@example.com", false)
	require.NoError(t, err)

	_, err = svc.AuthenticatePassword(ctx, "admin@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = svc.AuthenticatePassword(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.SetActive(ctx, "admin@example.com", true)
	require.NoError(t, err)
	_, err = svc.AuthenticatePassword(ctx, "admin@example.com", "correct horse")
	assert.NoError(t, err)
}

func TestAuthenticatePassword_LocksAfterRepeatedFailures(t *testing.T) {
	svc, _, c := newService(t)
	ctx := context.Background()
	for i := 0; i < svc.MaxFailed; i++ {
		_, err := svc.AuthenticatePassword(ctx, "admin@example.com", "wrong")
		require.ErrorIs(t, err, ErrBadCredentials)
	}
	_, err := svc.AuthenticatePassword(ctx, "admin@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrLocked)

	c.t = c.t.Add(time.Duration(svc.LockMinutes)*time.Minute + time.Second)
	_, err = svc.AuthenticatePassword(ctx, "admin@example.com", "correct horse")
	assert.NoError(t, err)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin@example.com", "a different password", "Other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Admin", st.byEmail["admin@example.com"].Name)

	created, err = svc.EnsureAdmin(ctx, "", "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin(ctx, "owner@example.com", "owner password", "Owner")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.ChangePassword(ctx, "admin@example.com", "battery staple")
	require.NoError(t, err)

	_, err = svc.AuthenticatePassword(ctx, "admin@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.AuthenticatePassword(ctx, "admin@example.com", "battery staple")
	assert.NoError(t, err)

	_, err = svc.ChangePassword(ctx, "ghost@example.com", "battery staple")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

type revoked struct {
	users []string
	err   error
}

func (r *revoked) RevokeUser(_ context.Context, userID string) error {
	r.users = append(r.users, userID)
	return r.err
}

func TestSetActiveAndChangePassword_RevokeSessions(t *testing.T) {
	svc, st, _ := newService(t)
	r := &revoked{}
	svc.Sessions = r
	ctx := context.Background()
	id := st.byEmail["admin@example.com"].ID

	_, err := svc.SetActive(ctx, "admin@example.com", true)
	require.NoError(t, err)
	assert.Empty(t, r.users)

	_, err = svc.SetActive(ctx, "admin@example.com", false)
	require.NoError(t, err)
	_, err = svc.ChangePassword(ctx, "admin@example.com", "battery staple")
	require.NoError(t, err)
	assert.Equal(t, []string{id, id}, r.users)

	r.err = errors.New("db down")
	_, err = svc.ChangePassword(ctx, "admin@example.com", "another staple")
	assert.ErrorContains(t, err, "revoke sessions")
}

func TestBcryptHasher_NeedsRehash(t *testing.T) {
	low := BcryptHasher{Cost: bcrypt.MinCost}
	hash, _, err := low.Hash("pw")
	require.NoError(t, err)
	assert.False(t, low.NeedsRehash(hash))
	assert.True(t, BcryptHasher{Cost: bcrypt.MinCost + 1}.NeedsRehash(hash))
	assert.False(t, low.NeedsRehash("not a hash"))
}

type fakeSessions struct {
	issued  []session.Subject
	revoked []string
}

func (f *fakeSessions) Issue(_ context.Context, sub session.Subject) (string, time.Time, error) {
	f.issued = append(f.issued, sub)
	return "tok-" + sub.ID, time.Now().Add(time.Hour), nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeSessions) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{Name: "portfolio_session", Value: token, Expires: expires})
}

func (f *fakeSessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "portfolio_session", MaxAge: -1})
}

func (f *fakeSessions) Token(r *http.Request) string {
	if c, err := r.Cookie("portfolio_session"); err == nil {
		return c.Value
	}
	return ""
}

func TestHandler_Login(t *testing.T) {
	svc, st, _ := newService(t)
	fs := &fakeSessions{}
	h := NewHandler(svc, fs, zap.NewNop().Sugar())

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"email":"admin@example.com","password":"correct horse"}`, http.StatusOK},
		{"wrong password", `{"email":"admin@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"bad body", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
	require.Len(t, fs.issued, 1)
	assert.Equal(t, st.byEmail["admin@example.com"].ID, fs.issued[0].ID)

	_, err := svc.SetActive(context.Background(), "admin@example.com", false)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"correct horse"}`)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_LogoutAndMe(t *testing.T) {
	svc, st, _ := newService(t)
	fs := &fakeSessions{}
	h := NewHandler(svc, fs, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "portfolio_session", Value: "tok-1"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"tok-1"}, fs.revoked)

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	id := st.byEmail["admin@example.com"].ID
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(session.WithClaims(req.Context(), &session.Claims{UserID: id}))
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"admin@example.com"`)
	assert.NotContains(t, rec.Body.String(), "password")
}
