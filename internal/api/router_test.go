package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tokobaju/storefront/internal/api/cookie"
	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
	"github.com/tokobaju/storefront/internal/core/service"
	"github.com/tokobaju/storefront/internal/infrastructure/db/memory"
	"github.com/tokobaju/storefront/internal/infrastructure/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (r *memUsers) Insert(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return nil, domain.ErrDuplicateKey
		}
	}
	clone := *u
	clone.ID = fmt.Sprintf("u%d", len(r.users)+1)
	r.users = append(r.users, &clone)
	out := clone
	return &out, nil
}

func (r *memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

type memProducts struct{ ports.ProductRepository }

func (memProducts) Count(context.Context) (int64, error) { return 3, nil }

type testServer struct {
	e    *echo.Echo
	auth *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	hasher := security.NewBcryptHasher(bcrypt.MinCost, nil)
	sessions := memory.NewSessionStore(log)
	directory := service.NewUserDirectory(&memUsers{}, hasher, log)
	auth := service.NewAuthService(directory, sessions, hasher, nil, time.Hour, log)

	e := NewRouter(Dependencies{
		Auth:     auth,
		Access:   service.NewAccessControl(sessions, log),
		Products: service.NewProductService(memProducts{}, log),
		Cookies:  cookie.NewCodec("sid", testSecret, false),
		Registry: prometheus.NewRegistry(),
		Logger:   log,
	})
	return &testServer{e: e, auth: auth}
}

func (s *testServer) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" {
			return ck
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestRouter_UserJourney(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/auth/register", `{"username":"alice","email":"a@x.io","password":"pw1","role":"admin"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/auth/register", `{"username":"alice2","email":"a@x.io","password":"pw2"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/auth/login", `{"email":"a@x.io","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}
	badBody := rec.Body.String()
	rec = s.do(http.MethodPost, "/auth/login", `{"email":"nobody@x.io","password":"pw1"}`)
	if rec.Body.String() != badBody {
		t.Fatalf("login failures differ: %q vs %q", badBody, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/auth/login", `{"email":"a@x.io","password":"pw1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	var login struct {
		User     domain.User `json:"user"`
		Redirect string      `json:"redirect"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &login)
	if login.User.Role != domain.RoleUser || login.Redirect != "/dashboard" {
		t.Fatalf("expected user role and /dashboard, got %s %s", login.User.Role, login.Redirect)
	}
	ck := sessionCookie(t, rec)

	if rec = s.do(http.MethodGet, "/auth/me", "", ck); rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	if rec = s.do(http.MethodGet, "/dashboard", "", ck); rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	if rec = s.do(http.MethodGet, "/admin/dashboard", "", ck); rec.Code != http.StatusForbidden {
		t.Fatalf("admin dashboard as user: expected 403, got %d", rec.Code)
	}

	if rec = s.do(http.MethodPost, "/auth/logout", "", ck); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec = s.do(http.MethodGet, "/auth/me", "", ck); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", rec.Code)
	}
}

func TestRouter_AdminJourney(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.auth.BootstrapAdmin(context.Background(), ports.ProvisionInput{Username: "root", Email: "root@x.io", Password: "pw"}); err != nil {
		t.Fatalf("BootstrapAdmin returned error: %v", err)
	}

	rec := s.do(http.MethodPost, "/auth/login", `{"email":"root@x.io","password":"pw"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"redirect":"/admin/dashboard"`) {
		t.Fatalf("admin login: got %d %s", rec.Code, rec.Body.String())
	}
	ck := sessionCookie(t, rec)

	rec = s.do(http.MethodGet, "/admin/dashboard", "", ck)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"product_count":3`) {
		t.Fatalf("admin dashboard: got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/admin/users", `{"username":"ops","email":"ops@x.io","password":"pw","role":"admin"}`, ck)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"role":"admin"`) {
		t.Fatalf("provision: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AnonymousAccess(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(http.MethodGet, "/admin/dashboard", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/products", `{"name":"x"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on product create, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on /health, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on /metrics, got %d", rec.Code)
	}
}
