package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeAccountRepo struct {
	byEmail map[string]*Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byEmail: make(map[string]*Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *Account) error {
	if _, taken := r.byEmail[a.Email]; taken {
		return ErrAccountExists
	}
	r.byEmail[a.Email] = a
	return nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	a, ok := r.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*Account, error) {
	for _, a := range r.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, ErrAccountNotFound
}

type fakeSessionStore struct {
	sessions map[string]Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]Session)}
}

func (s *fakeSessionStore) Put(_ context.Context, token string, session Session, _ time.Duration) error {
	s.sessions[token] = session
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, token string) (Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func newTestService() (*Service, *fakeAccountRepo, *fakeSessionStore) {
	accounts := newFakeAccountRepo()
	sessions := newFakeSessionStore()
	n := 0
	svc := NewService(accounts, sessions, Config{BcryptCost: bcrypt.MinCost}, func() string {
		n++
		return "account-" + string(rune('0'+n))
	})
	return svc, accounts, sessions
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestRegister(t *testing.T) {
	svc, accounts, _ := newTestService()

	account, err := svc.Register(context.Background(), "Ayan@School.edu", "Ayan Serik", "correct-horse", RoleTeacher, "teacher-1")
	require.NoError(t, err)

	assert.Equal(t, "ayan@school.edu", account.Email)
	assert.Equal(t, RoleTeacher, account.Role)
	assert.Equal(t, "teacher-1", account.TeacherID)
	assert.NotEqual(t, "correct-horse", account.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("correct-horse")))
	assert.Contains(t, accounts.byEmail, "ayan@school.edu")
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "X", "correct-horse", RoleTeacher, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Register(ctx, "a@b.c", "X", "short", RoleTeacher, "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, "a@b.c", "X", "correct-horse", Role("superuser"), "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "X", "correct-horse", RoleAdmin, "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.C", "Y", "correct-horse", RoleAdmin, "")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	account, err := svc.Register(ctx, "a@b.c", "X", "correct-horse", RoleAdmin, "")
	require.NoError(t, err)

	token, session, err := svc.Login(ctx, "a@b.c", "correct-horse")
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, account.ID, session.AccountID)
	assert.Equal(t, RoleAdmin, session.Role)

	resolved, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, resolved.AccountID)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "X", "correct-horse", RoleTeacher, "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@b.c", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@b.c", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownToken(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Authenticate(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestLogout(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "X", "correct-horse", RoleTeacher, "")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "a@b.c", "correct-horse")
	require.NoError(t, err)
	require.Len(t, sessions.sessions, 1)

	require.NoError(t, svc.Logout(ctx, token))
	assert.Empty(t, sessions.sessions)

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestTokensAreUnique(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "X", "correct-horse", RoleTeacher, "")
	require.NoError(t, err)

	t1, _, err := svc.Login(ctx, "a@b.c", "correct-horse")
	require.NoError(t, err)
	t2, _, err := svc.Login(ctx, "a@b.c", "correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}
