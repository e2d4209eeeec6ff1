// Commune - Community Platform and Automation Service
// Copyright 2026 Commune contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/communehq/commune

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/communehq/commune/internal/actionlog"
	"github.com/communehq/commune/internal/auth"
	"github.com/communehq/commune/internal/automation"
	"github.com/communehq/commune/internal/config"
	"github.com/communehq/commune/internal/database"
	"github.com/communehq/commune/internal/featureflag"
	"github.com/communehq/commune/internal/models"
)

const (
	testSecret    = "cron-secret"
	testJWTSecret = "test-jwt-secret-at-least-32-chars!!"
)

// fakeWorld backs the automation engine for handler tests.
type fakeWorld struct {
	automations []*models.Automation
	lockHeld    bool
}

func (f *fakeWorld) GetBot(context.Context, string) (*models.Bot, error) {
	return nil, database.ErrNotFound
}

func (f *fakeWorld) GetChannel(context.Context, string) (*models.Channel, error) {
	return nil, database.ErrNotFound
}

func (f *fakeWorld) GetUser(context.Context, string) (*models.User, error) {
	return nil, database.ErrNotFound
}

func (f *fakeWorld) CreatePost(context.Context, *models.Post) error { return nil }

func (f *fakeWorld) AdvanceTriggerCursor(context.Context, string, time.Time) error { return nil }

func (f *fakeWorld) ListActiveScheduled(context.Context) ([]*models.Automation, error) {
	return f.automations, nil
}

func (f *fakeWorld) TryAcquireLock(context.Context, string, string, time.Duration) (bool, error) {
	return !f.lockHeld, nil
}

func (f *fakeWorld) ReleaseLock(context.Context, string, string) error { return nil }

type fakeFlagStore struct {
	flags map[string]bool
}

func (f *fakeFlagStore) GetFlag(_ context.Context, name string) (bool, error) {
	enabled, ok := f.flags[name]
	if !ok {
		return false, database.ErrNotFound
	}
	return enabled, nil
}

func (f *fakeFlagStore) SetFlag(_ context.Context, name string, enabled bool) error {
	f.flags[name] = enabled
	return nil
}

func (f *fakeFlagStore) ListFlags(context.Context) (map[string]bool, error) {
	return f.flags, nil
}

type nullSink struct{}

func (nullSink) Save(context.Context, *actionlog.Entry) error { return nil }
func (nullSink) Query(context.Context, actionlog.Filter) ([]actionlog.Entry, error) {
	return nil, nil
}
func (nullSink) Count(context.Context, actionlog.Filter) (int64, error) { return 0, nil }
func (nullSink) Delete(context.Context, time.Time) (int64, error)       { return 0, nil }

func testHandler(t *testing.T, world *fakeWorld, flagStore *fakeFlagStore) (*Handler, http.Handler) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Security.JWTSecret = testJWTSecret
	cfg.Security.SessionTimeout = time.Hour
	cfg.Security.AdminUsername = "admin"
	cfg.Security.AdminPassword = "hunter2"
	cfg.Security.RateLimitReqs = 1000
	cfg.Security.RateLimitWindow = time.Minute
	cfg.Security.CORSOrigins = []string{"*"}
	cfg.Security.LoginRatePerMinute = 600
	cfg.Security.LoginBurst = 100
	cfg.API.DefaultPageSize = 50
	cfg.API.MaxPageSize = 500
	cfg.Automations.RunnerSecret = testSecret
	cfg.Automations.CycleTimeout = time.Minute
	cfg.Automations.LockTTL = time.Minute
	cfg.Automations.DateFormat = "02.01.2006"
	cfg.Automations.EnabledDefault = true

	rec := actionlog.NewRecorder(nullSink{}, nil)
	t.Cleanup(func() { _ = rec.Close() })

	flags := featureflag.New(flagStore, 0)
	exec := automation.NewExecutor(world, rec, cfg.Automations.DateFormat)
	coord := automation.NewCoordinator(world, exec, world, flags, rec, automation.Config{
		CycleTimeout:   cfg.Automations.CycleTimeout,
		LockTTL:        cfg.Automations.LockTTL,
		EnabledDefault: cfg.Automations.EnabledDefault,
	})

	jwtMgr, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	authSvc := auth.NewService(jwtMgr, auth.NewMemoryRevocationStore())
	limiter := auth.NewLoginLimiter(cfg.Security.LoginRatePerMinute, cfg.Security.LoginBurst)

	h := NewHandler(cfg, nil, coord, flags, authSvc, limiter, rec)
	return h, h.NewRouter()
}

func decodeRun(t *testing.T, body string) runResponse {
	t.Helper()
	var resp runResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("failed to decode run response %q: %v", body, err)
	}
	return resp
}

func TestRunEndpointRequiresAuth(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	req := httptest.NewRequest("POST", "/api/v1/automations/run", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without secret or session, got %d", w.Code)
	}
}

func TestRunEndpointSecretHeader(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	req := httptest.NewRequest("POST", "/api/v1/automations/run", nil)
	req.Header.Set(RunnerSecretHeader, testSecret)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeRun(t, w.Body.String())
	if resp.Ran != 0 || resp.Skipped != 0 || resp.Disabled || resp.Locked {
		t.Errorf("expected empty cycle result, got %+v", resp)
	}
}

func TestRunEndpointSecretQueryParam(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	req := httptest.NewRequest("POST", "/api/v1/automations/run?secret="+testSecret, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with query secret, got %d", w.Code)
	}
}

func TestRunEndpointWrongSecret(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	req := httptest.NewRequest("POST", "/api/v1/automations/run", nil)
	req.Header.Set(RunnerSecretHeader, "wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong secret, got %d", w.Code)
	}
}

func TestRunEndpointDisabledBeforeAuth(t *testing.T) {
	flagStore := &fakeFlagStore{flags: map[string]bool{featureflag.Automations: false}}
	_, router := testHandler(t, &fakeWorld{}, flagStore)

	// No credentials at all: disabled engine still answers 200.
	req := httptest.NewRequest("POST", "/api/v1/automations/run", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 when disabled, got %d", w.Code)
	}
	resp := decodeRun(t, w.Body.String())
	if !resp.Disabled {
		t.Errorf("expected disabled flag in response, got %+v", resp)
	}
}

func TestRunEndpointLocked(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{lockHeld: true}, &fakeFlagStore{flags: map[string]bool{}})

	req := httptest.NewRequest("POST", "/api/v1/automations/run", nil)
	req.Header.Set(RunnerSecretHeader, testSecret)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 when locked, got %d", w.Code)
	}
	resp := decodeRun(t, w.Body.String())
	if !resp.Locked {
		t.Errorf("expected locked flag in response, got %+v", resp)
	}
}

func TestRunEndpointSessionAuth(t *testing.T) {
	h, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	token, err := h.authSvc.JWT().GenerateToken("admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/automations/run", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with session, got %d", w.Code)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	body := strings.NewReader(`{"username":"admin","password":"hunter2"}`)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"token"`) {
		t.Error("expected token in login response")
	}

	var sessionCookie bool
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.HttpOnly {
			sessionCookie = true
		}
	}
	if !sessionCookie {
		t.Error("expected HTTP-only session cookie")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	body := strings.NewReader(`{"username":"admin","password":"wrong"}`)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad credentials, got %d", w.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	req := httptest.NewRequest("GET", "/api/v1/automations/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", w.Code)
	}
}

func TestFlagsEndpoint(t *testing.T) {
	h, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	token, _ := h.authSvc.JWT().GenerateToken("admin", "admin")

	req := httptest.NewRequest("PUT", "/api/v1/flags/automations", strings.NewReader(`{"enabled":false}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 setting flag, got %d: %s", w.Code, w.Body.String())
	}

	// Engine is now disabled for anonymous runner calls.
	runReq := httptest.NewRequest("POST", "/api/v1/automations/run", nil)
	runW := httptest.NewRecorder()
	router.ServeHTTP(runW, runReq)
	resp := decodeRun(t, runW.Body.String())
	if !resp.Disabled {
		t.Errorf("expected disabled after flag set to false, got %+v", resp)
	}
}

func TestHealthEndpointsArePublic(t *testing.T) {
	_, router := testHandler(t, &fakeWorld{}, &fakeFlagStore{flags: map[string]bool{}})

	req := httptest.NewRequest("GET", "/api/v1/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from liveness probe, got %d", w.Code)
	}
}
