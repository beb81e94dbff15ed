// Package auth implements account management and opaque session tokens
// for the dashboard API.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Role scopes what an account may do.
type Role string

const (
	// RoleTeacher can read dashboards and manage their own students.
	RoleTeacher Role = "teacher"

	// RoleAdmin can additionally manage the roster and trigger bulk jobs.
	RoleAdmin Role = "admin"
)

// IsValid checks that the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// Account is a dashboard login. TeacherID links the account to a roster
// teacher; empty for pure admin accounts.
type Account struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	TeacherID    string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is the server-side state behind an opaque token.
type Session struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	TeacherID string    `json:"teacher_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// Create persists a new account. Returns ErrAccountExists when the
	// email is taken.
	Create(ctx context.Context, a *Account) error

	// GetByEmail returns an account by email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByID returns an account by ID.
	GetByID(ctx context.Context, id string) (*Account, error)
}

// SessionStore holds sessions keyed by token, with expiry.
type SessionStore interface {
	Put(ctx context.Context, token string, s Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAccountExists is returned when the email is already registered.
	ErrAccountExists = shared.NewDomainError("auth", "Register", shared.ErrAlreadyExists, "email already registered")

	// ErrAccountNotFound is returned when no account matches.
	ErrAccountNotFound = shared.NewDomainError("auth", "Find", shared.ErrNotFound, "account not found")

	// ErrInvalidCredentials is returned on a bad email/password pair.
	// Deliberately the same for unknown email and wrong password.
	ErrInvalidCredentials = shared.NewDomainError("auth", "Login", shared.ErrUnauthorized, "invalid credentials")

	// ErrSessionExpired is returned for unknown or expired tokens.
	ErrSessionExpired = shared.NewDomainError("auth", "Authenticate", shared.ErrUnauthorized, "session expired")

	// ErrWeakPassword is returned when the password fails the minimum
	// length check.
	ErrWeakPassword = shared.NewDomainError("auth", "Register", shared.ErrInvalidInput, "password too short")
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 8

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// Service implements registration, login and token validation.
type Service struct {
	accounts   AccountRepository
	sessions   SessionStore
	sessionTTL time.Duration
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

// Config contains Service configuration.
type Config struct {
	// SessionTTL is how long a token stays valid. Zero means 24h.
	SessionTTL time.Duration

	// BcryptCost overrides the hash cost. Zero means bcrypt.DefaultCost;
	// tests use bcrypt.MinCost.
	BcryptCost int
}

// NewService creates a new auth Service.
func NewService(accounts AccountRepository, sessions SessionStore, cfg Config, newID func() string) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: cfg.SessionTTL,
		bcryptCost: cfg.BcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      newID,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, fullName, password string, role Role, teacherID string) (*Account, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("auth: %w: email", shared.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("auth: %w: role %q", shared.ErrInvalidInput, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	account := &Account{
		ID:           s.newID(),
		Email:        email,
		FullName:     fullName,
		Role:         role,
		TeacherID:    teacherID,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login verifies credentials and mints a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Session, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", nil, fmt.Errorf("auth: generate token: %w", err)
	}

	session := Session{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		TeacherID: account.TeacherID,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Put(ctx, token, session, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("auth: store session: %w", err)
	}
	return token, &session, nil
}

// Authenticate resolves a token to its session.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Logout invalidates a token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newToken returns 32 random bytes hex-encoded.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
