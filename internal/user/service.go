package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (hash string, algo string, err error)
	Verify(hash, pw string) bool
	NeedsRehash(hash string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b BcryptHasher) Hash(pw string) (string, string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), b.cost())
	if err != nil {
		return "", "", err
	}
	return string(h), fmt.Sprintf("bcrypt:%d", b.cost()), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NeedsRehash reports whether hash was made with a different cost.
func (b BcryptHasher) NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return c != b.cost()
}

// Store is implemented by *repo.UserRepo.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	IncrementFailedLogin(ctx context.Context, id string) (int, error)
	LockIfThreshold(ctx context.Context, id string, threshold int, lockMinutes int) (bool, error)
	ResetLoginSuccess(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, hash, algo string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// Revoker drops every session of a user.
type Revoker interface {
	RevokeUser(ctx context.Context, userID string) error
}

// UserService orchestrates authentication and admin account lifecycle.
type UserService struct {
	repo   Store
	hasher PasswordHasher
	logger *zap.SugaredLogger
	now    func() time.Time
	// Sessions, when set, is used to sign a user out after disable or a
	// password change.
	Sessions Revoker
	// configuration knobs
	MaxFailed      int
	LockMinutes    int
	MinPasswordLen int
}

func NewUserService(r Store, hasher PasswordHasher, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &UserService{
		repo: r, hasher: hasher, logger: logger, now: time.Now,
		MaxFailed: 6, LockMinutes: 15, MinPasswordLen: 10,
	}
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrLocked         = errors.New("user locked")
	ErrDisabled       = errors.New("user disabled")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrWeakPassword   = errors.New("password too short")
	ErrInvalidEmail   = errors.New("invalid email")
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthenticatePassword checks email and password. Unknown email and wrong
// password both yield ErrBadCredentials. A disabled account is reported only
// once the password matched.
func (s *UserService) AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		} // avoid user enumeration
		return nil, err
	}

	if u.Locked(s.now()) {
		return nil, ErrLocked
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		if _, incErr := s.repo.IncrementFailedLogin(ctx, u.ID); incErr == nil {
			if locked, _ := s.repo.LockIfThreshold(ctx, u.ID, s.MaxFailed, s.LockMinutes); locked {
				s.logger.Warnw("account locked after failed logins", "user_id", u.ID)
			}
		}
		return nil, ErrBadCredentials
	}

	if !u.Active {
		return nil, ErrDisabled
	}

	if err := s.repo.ResetLoginSuccess(ctx, u.ID); err != nil {
		return nil, err
	}

	if s.hasher.NeedsRehash(u.PasswordHash) {
		if newHash, algo, hErr := s.hasher.Hash(password); hErr == nil {
			_ = s.repo.UpdatePassword(ctx, u.ID, newHash, algo)
		}
	}
	return u, nil
}

// CreateUser adds an active admin account.
func (s *UserService) CreateUser(ctx context.Context, email, password, name string) (*entity.User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < s.MinPasswordLen {
		return nil, ErrWeakPassword
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, algo, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		ID:           utilities.NewID(),
		Email:        email,
		PasswordHash: hash,
		PasswordAlgo: algo,
		Name:         strings.TrimSpace(name),
		Role:         entity.RoleAdmin,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin when it does not exist yet. An
// existing account is never modified. Empty email or password is a no-op.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	_, err := s.CreateUser(ctx, email, password, name)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Infow("bootstrap admin created", "email", normalizeEmail(email))
	return true, nil
}

func (s *UserService) byEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// SetActive enables or disables the account with email.
func (s *UserService) SetActive(ctx context.Context, email string, active bool) (*entity.User, error) {
	u, err := s.byEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, u.ID, active); err != nil {
		return nil, err
	}
	u.Active = active
	if !active {
		if err := s.revoke(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// ChangePassword replaces the password of the account with email.
func (s *UserService) ChangePassword(ctx context.Context, email, password string) (*entity.User, error) {
	if len(password) < s.MinPasswordLen {
		return nil, ErrWeakPassword
	}
	u, err := s.byEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	hash, algo, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash, algo); err != nil {
		return nil, err
	}
	if err := s.revoke(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) revoke(ctx context.Context, userID string) error {
	if s.Sessions == nil {
		return nil
	}
	if err := s.Sessions.RevokeUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// Get returns the user by id.
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}
