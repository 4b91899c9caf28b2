package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/memoapp/internal/middleware"
	"github.com/hitoshi/memoapp/internal/model"
)

type mockSessionFinder struct {
	sessions map[string]*model.Session
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.sessions[id], nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

func testRouter(t *testing.T, finder *mockSessionFinder, auth AuthServiceInterface, notes NoteServiceInterface) http.Handler {
	t.Helper()

	if finder == nil {
		finder = &mockSessionFinder{sessions: map[string]*model.Session{}}
	}
	if auth == nil {
		auth = &mockAuthService{}
	}
	if notes == nil {
		notes = &mockNoteService{}
	}

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    1000,
		SignupRate:      rate.Limit(1000),
		SignupBurst:     1000,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	registry := prometheus.NewRegistry()

	return NewRouter(&RouterDeps{
		SessionFinder: finder,
		RateLimiter:   rl,
		CSRFConfig:    middleware.CSRFConfig{},
		Logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
		AuthService:   auth,
		AuthConfig:    AuthHandlerConfig{SessionMaxAge: 86400},

		AccountService: &mockAccountService{},
		CurrentUsers:   &mockCurrentUserFinder{},

		NoteService: notes,
		DB:            &mockPinger{},
		Gatherer:      registry,
	})
}

func TestRouter_UnauthenticatedNotes_RedirectsToLogin(t *testing.T) {
	router := testRouter(t, nil, nil, nil)

	paths := []string{"/notes", "/notes/new", "/notes/n-1", "/notes/n-1/edit"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", path, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s: Location = %q, want /login", path, loc)
		}
	}
}

func TestRouter_SignupPage_IssuesCSRFToken(t *testing.T) {
	router := testRouter(t, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrf_token" {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("expected csrf cookie")
	}
	if !strings.Contains(rec.Body.String(), token) {
		t.Error("expected csrf token embedded in form")
	}
}

func TestRouter_PostWithoutCSRF_Forbidden(t *testing.T) {
	router := testRouter(t, nil, nil, nil)

	form := url.Values{"email": {"a@x.com"}}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

// CSRFトークンが揃っていればサインアップフローが通る
func TestRouter_SignupFlow_WithCSRF(t *testing.T) {
	router := testRouter(t, nil, nil, nil)

	form := url.Values{"email": {"a@x.com"}, middleware.CSRFFormField: {"tok-1"}}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/verify-otp" {
		t.Errorf("got %d -> %q, want 303 -> /verify-otp", rec.Code, rec.Header().Get("Location"))
	}
}

// POST+_methodフィールドで認証済みユーザーのメモ削除が通る
func TestRouter_DeleteViaMethodOverride(t *testing.T) {
	finder := &mockSessionFinder{sessions: map[string]*model.Session{
		"sess-1": {ID: "sess-1", UserID: "u-1"},
	}}
	deleted := false
	notes := &mockNoteService{
		deleteFn: func(ctx context.Context, id, userID string) error {
			if id != "n-1" || userID != "u-1" {
				t.Errorf("delete (%q, %q), want (n-1, u-1)", id, userID)
			}
			deleted = true
			return nil
		},
	}
	router := testRouter(t, finder, nil, notes)

	form := url.Values{"_method": {"DELETE"}, middleware.CSRFFormField: {"tok-1"}}
	req := httptest.NewRequest(http.MethodPost, "/notes/n-1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-1"})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if !deleted {
		t.Error("expected note to be deleted")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/notes" {
		t.Errorf("got %d -> %q, want 303 -> /notes", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_Root_RedirectsByAuthState(t *testing.T) {
	finder := &mockSessionFinder{sessions: map[string]*model.Session{
		"sess-1": {ID: "sess-1", UserID: "u-1"},
	}}
	router := testRouter(t, finder, nil, nil)

	// 未認証
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("unauthenticated: Location = %q, want /login", loc)
	}

	// 認証済み
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-1"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if loc := rec.Header().Get("Location"); loc != "/notes" {
		t.Errorf("authenticated: Location = %q, want /notes", loc)
	}
}

func TestRouter_Health(t *testing.T) {
	router := testRouter(t, nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHealthHandler_DBDown_Returns503(t *testing.T) {
	h := NewHealthHandler(&mockPinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := testRouter(t, nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_UnknownPath_Renders404Page(t *testing.T) {
	router := testRouter(t, nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("見つかりません")) {
		t.Error("expected not-found page body")
	}
}
