package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/access"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/shared"
	_ "github.com/taskdeck/taskdeck/testing"
)

type stubRepo struct {
	creds    *auth.Credentials
	findErr  error
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.creds == nil || s.creds.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.creds, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAuthServer mounts the auth handler behind a minimal session
// middleware, the way the full middleware stack does in production.
func newAuthServer(t *testing.T, repo auth.Repository) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(testLogger(), auth.NewService(repo), sessionManager, csrfManager)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			ctx := shared.ContextWithSession(req.Context(), sess)
			cw := &commitWriter{ResponseWriter: w, ctx: ctx, req: req, sess: sess, manager: sessionManager}
			next.ServeHTTP(cw, req.WithContext(ctx))
			cw.commit()
		})
	})
	r.Route("/auth", handler.MountRoutes)
	return r, sessionManager
}

// commitWriter flushes the session right before the first byte of the
// response, matching the production middleware ordering.
type commitWriter struct {
	http.ResponseWriter
	ctx       context.Context
	req       *http.Request
	sess      *shared.Session
	manager   *shared.SessionManager
	committed bool
}

func (w *commitWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true
	_ = w.manager.Commit(w.ctx, w.ResponseWriter, w.req, w.sess)
}

func (w *commitWriter) WriteHeader(statusCode int) {
	w.commit()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(data []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(data)
}

func activeCreds(t *testing.T, password string) *auth.Credentials {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.Credentials{
		ID:           7,
		Email:        "user@test.local",
		PasswordHash: string(hashed),
		Role:         access.RoleUser,
		IsActive:     true,
	}
}

func TestLogin(t *testing.T) {
	repo := &stubRepo{creds: activeCreds(t, "correctpass")}
	server, sessionManager := newAuthServer(t, repo)

	body := `{"email":"user@test.local","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	server.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != 7 || payload.Role != "user" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	var sessionCookie *http.Cookie
	for _, c := range res.Result().Cookies() {
		if c.Name == sessionManager.CookieName() {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatalf("expected session cookie to be set")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected session registered in repo, got %d", len(repo.sessions))
	}

	// The committed session must carry the user id the middleware
	// resolves actors from.
	followUp := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	followUp.AddCookie(sessionCookie)
	sess, err := sessionManager.Load(context.Background(), followUp)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.User() != "7" {
		t.Fatalf("expected session user 7, got %q", sess.User())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	server, _ := newAuthServer(t, &stubRepo{creds: activeCreds(t, "correctpass")})

	body := `{"email":"user@test.local","password":"wrongpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	server.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	creds := activeCreds(t, "correctpass")
	creds.IsActive = false
	server, _ := newAuthServer(t, &stubRepo{creds: creds})

	body := `{"email":"user@test.local","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	server.ServeHTTP(res, req)

	// Inactive must be indistinguishable from a wrong password.
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}

func TestLoginRepositoryFailure(t *testing.T) {
	server, _ := newAuthServer(t, &stubRepo{findErr: errors.New("connection refused")})

	body := `{"email":"user@test.local","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	server.ServeHTTP(res, req)

	// A lookup failure is not a credential failure.
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", res.Code)
	}
}

func TestCSRFToken(t *testing.T) {
	server, _ := newAuthServer(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	res := httptest.NewRecorder()
	server.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["csrf_token"] == "" {
		t.Fatalf("expected csrf token in response")
	}
}

func TestLogout(t *testing.T) {
	repo := &stubRepo{creds: activeCreds(t, "correctpass")}
	server, sessionManager := newAuthServer(t, repo)

	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"user@test.local","password":"correctpass"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRes := httptest.NewRecorder()
	server.ServeHTTP(loginRes, loginReq)
	if loginRes.Code != http.StatusOK {
		t.Fatalf("login failed: %d", loginRes.Code)
	}

	var sessionCookie *http.Cookie
	for _, c := range loginRes.Result().Cookies() {
		if c.Name == sessionManager.CookieName() {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatalf("expected session cookie after login")
	}

	logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logoutReq.AddCookie(sessionCookie)
	logoutRes := httptest.NewRecorder()
	server.ServeHTTP(logoutRes, logoutReq)

	if logoutRes.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", logoutRes.Code)
	}
	if len(repo.sessions) != 0 {
		t.Fatalf("expected session removed from repo")
	}
}
