package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/auth"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUBS
// ══════════════════════════════════════════════════════════════════════════════

type stubStudentRepo struct {
	students map[string]*student.Student
}

func newStubStudentRepo(students ...*student.Student) *stubStudentRepo {
	r := &stubStudentRepo{students: make(map[string]*student.Student)}
	for _, s := range students {
		r.students[s.ID] = s
	}
	return r
}

func (r *stubStudentRepo) Create(_ context.Context, s *student.Student) error {
	r.students[s.ID] = s
	return nil
}

func (r *stubStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s, nil
}

func (r *stubStudentRepo) GetByCode(_ context.Context, code student.Code) (*student.Student, error) {
	for _, s := range r.students {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (r *stubStudentRepo) Update(_ context.Context, s *student.Student) error {
	r.students[s.ID] = s
	return nil
}

func (r *stubStudentRepo) List(_ context.Context, _ student.ListOptions) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}

func (r *stubStudentRepo) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.students))
	for id := range r.students {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *stubStudentRepo) Count(_ context.Context) (int, error) {
	return len(r.students), nil
}

func (r *stubStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.students[id]; !ok {
		return shared.ErrStudentNotFound
	}
	delete(r.students, id)
	return nil
}

type memAccountRepo struct {
	byEmail map[string]*auth.Account
}

func (r *memAccountRepo) Create(_ context.Context, a *auth.Account) error {
	if _, taken := r.byEmail[a.Email]; taken {
		return auth.ErrAccountExists
	}
	r.byEmail[a.Email] = a
	return nil
}

func (r *memAccountRepo) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	a, ok := r.byEmail[email]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	return a, nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id string) (*auth.Account, error) {
	for _, a := range r.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

type memSessionStore struct {
	sessions map[string]auth.Session
}

func (s *memSessionStore) Put(_ context.Context, token string, session auth.Session, _ time.Duration) error {
	s.sessions[token] = session
	return nil
}

func (s *memSessionStore) Get(_ context.Context, token string) (auth.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return auth.Session{}, auth.ErrSessionExpired
	}
	return session, nil
}

func (s *memSessionStore) Delete(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func newTestAuthService() *auth.Service {
	n := 0
	return auth.NewService(
		&memAccountRepo{byEmail: make(map[string]*auth.Account)},
		&memSessionStore{sessions: make(map[string]auth.Session)},
		auth.Config{BcryptCost: bcrypt.MinCost},
		func() string {
			n++
			return "account-" + string(rune('0'+n))
		},
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	return cfg
}

func testStudent(id string) *student.Student {
	return &student.Student{
		ID:       id,
		Code:     student.Code("STU-" + id),
		FullName: "Student " + id,
		Grade:    "10",
		Metrics:  student.DefaultMetrics(),
	}
}

func doRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func loginAs(t *testing.T, srv *Server, svc *auth.Service, email, password string) string {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data loginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(testConfig(), Dependencies{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestLivenessAndReadiness(t *testing.T) {
	srv := NewServer(testConfig(), Dependencies{})

	assert.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodGet, "/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodGet, "/ready", "", nil).Code)
}

func TestRootEndpoint(t *testing.T) {
	srv := NewServer(testConfig(), Dependencies{})

	rec := doRequest(t, srv, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Student Risk Hub API")
}

func TestRequestIDHeader(t *testing.T) {
	srv := NewServer(testConfig(), Dependencies{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	srv := NewServer(testConfig(), Dependencies{
		AuthService: newTestAuthService(),
		StudentRepo: newStubStudentRepo(),
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/students", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAndListStudents(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.Register(context.Background(), "teacher@school.edu", "T", "correct-horse", auth.RoleTeacher, "teacher-1")
	require.NoError(t, err)

	srv := NewServer(testConfig(), Dependencies{
		AuthService: svc,
		StudentRepo: newStubStudentRepo(testStudent("s1"), testStudent("s2")),
	})

	token := loginAs(t, srv, svc, "teacher@school.edu", "correct-horse")

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/students", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.TotalCount)
}

func TestLogin_BadPassword(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.Register(context.Background(), "teacher@school.edu", "T", "correct-horse", auth.RoleTeacher, "")
	require.NoError(t, err)

	srv := NewServer(testConfig(), Dependencies{AuthService: svc})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", loginRequest{
		Email:    "teacher@school.edu",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGate(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.Register(context.Background(), "teacher@school.edu", "T", "correct-horse", auth.RoleTeacher, "teacher-1")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "admin@school.edu", "A", "correct-horse", auth.RoleAdmin, "")
	require.NoError(t, err)

	srv := NewServer(testConfig(), Dependencies{
		AuthService: svc,
		StudentRepo: newStubStudentRepo(testStudent("s1")),
	})

	teacherToken := loginAs(t, srv, svc, "teacher@school.edu", "correct-horse")
	adminToken := loginAs(t, srv, svc, "admin@school.edu", "correct-horse")

	// Teachers cannot delete students.
	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/students/s1", teacherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins can.
	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/students/s1", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDeleteStudent_NotFoundMapping(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.Register(context.Background(), "admin@school.edu", "A", "correct-horse", auth.RoleAdmin, "")
	require.NoError(t, err)

	srv := NewServer(testConfig(), Dependencies{
		AuthService: svc,
		StudentRepo: newStubStudentRepo(),
	})

	adminToken := loginAs(t, srv, svc, "admin@school.edu", "correct-horse")

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/students/ghost", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestRegisterAccount_AdminOnly(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.Register(context.Background(), "teacher@school.edu", "T", "correct-horse", auth.RoleTeacher, "")
	require.NoError(t, err)

	srv := NewServer(testConfig(), Dependencies{AuthService: svc})
	teacherToken := loginAs(t, srv, svc, "teacher@school.edu", "correct-horse")

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/register", teacherToken, registerAccountRequest{
		Email:    "new@school.edu",
		FullName: "N",
		Password: "correct-horse",
		Role:     "teacher",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.Register(context.Background(), "teacher@school.edu", "T", "correct-horse", auth.RoleTeacher, "")
	require.NoError(t, err)

	srv := NewServer(testConfig(), Dependencies{
		AuthService: svc,
		StudentRepo: newStubStudentRepo(),
	})
	token := loginAs(t, srv, svc, "teacher@school.edu", "correct-horse")

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/students", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthDisabledPassThrough(t *testing.T) {
	srv := NewServer(testConfig(), Dependencies{
		StudentRepo: newStubStudentRepo(testStudent("s1")),
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/students", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiting(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerMinute = 2
	srv := NewServer(cfg, Dependencies{})

	assert.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, srv, http.MethodGet, "/health", "", nil).Code)
}

func TestSecurityHeaders(t *testing.T) {
	srv := NewServer(testConfig(), Dependencies{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestUnconfiguredHandlerReturns501(t *testing.T) {
	srv := NewServer(testConfig(), Dependencies{})

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/statistics", "", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
	assert.False(t, rl.Allow("1.2.3.4"))

	// Other keys are unaffected.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestStatusForError(t *testing.T) {
	status, code := statusForError(shared.ErrStudentNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", code)

	status, _ = statusForError(shared.ErrStudentAlreadyExists)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = statusForError(auth.ErrInvalidCredentials)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, code = statusForError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", code)
}
