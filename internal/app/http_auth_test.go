package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"martdesk/api/internal/auth"
)

var errUnavailable = errors.New("connection refused")

func TestSessionLoginReturnsContract(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	req := httptest.NewRequest(http.MethodPost, "/api/session/login", bytes.NewBufferString(`{"email":"  ADMIN@martdesk.local ","password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if token, _ := payload["token"].(string); token == "" {
		t.Fatalf("expected token")
	}
	if refresh, _ := payload["refreshToken"].(string); refresh == "" {
		t.Fatalf("expected refreshToken")
	}
	if payload["role"] != "admin" {
		t.Fatalf("expected role admin, got %v", payload["role"])
	}
	if payload["email"] != "admin@martdesk.local" {
		t.Fatalf("expected lowercased email, got %v", payload["email"])
	}
}

func TestSessionLoginRejectsBadPassword(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	req := httptest.NewRequest(http.MethodPost, "/api/session/login", bytes.NewBufferString(`{"email":"admin@martdesk.local","password":"wrong"}`))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload["code"] != "INVALID_CREDENTIALS" {
		t.Fatalf("expected code INVALID_CREDENTIALS, got %v", payload["code"])
	}
}

func TestSessionLoginRejectsInvalidBody(t *testing.T) {
	fs := newFakeStore()
	server := NewHTTPServer(newTestService(t, fs), "*")
	req := httptest.NewRequest(http.MethodPost, "/api/session/login", bytes.NewBufferString(`{"email":`))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionRefreshRotatesToken(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	login := httptest.NewRequest(http.MethodPost, "/api/session/login", bytes.NewBufferString(`{"email":"admin@martdesk.local","password":"correct horse"}`))
	loginRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(loginRec, login)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", loginRec.Code, loginRec.Body.String())
	}
	var session map[string]any
	if err := json.Unmarshal(loginRec.Body.Bytes(), &session); err != nil {
		t.Fatalf("parse login: %v", err)
	}
	refreshToken := session["refreshToken"].(string)

	refreshBody, _ := json.Marshal(map[string]string{"refreshToken": refreshToken})
	refresh := httptest.NewRequest(http.MethodPost, "/api/session/refresh", bytes.NewBuffer(refreshBody))
	refreshRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(refreshRec, refresh)
	if refreshRec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", refreshRec.Code, refreshRec.Body.String())
	}
	var rotated map[string]any
	if err := json.Unmarshal(refreshRec.Body.Bytes(), &rotated); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if rotated["refreshToken"] == refreshToken {
		t.Fatalf("expected a rotated refresh token")
	}

	// The consumed token must not work twice.
	replay := httptest.NewRequest(http.MethodPost, "/api/session/refresh", bytes.NewBuffer(refreshBody))
	replayRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(replayRec, replay)
	if replayRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on refresh replay, got %d", replayRec.Code)
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	_, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	logout := httptest.NewRequest(http.MethodPost, "/api/session/logout", bytes.NewBufferString(`{}`))
	logout.Header.Set("Authorization", "Bearer "+token)
	logoutRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(logoutRec, logout)
	if logoutRec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", logoutRec.Code)
	}

	after := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	after.Header.Set("Authorization", "Bearer "+token)
	afterRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(afterRec, after)
	if afterRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", afterRec.Code)
	}
}

func TestProtectedRouteWithoutBearerReturnsUnauthorized(t *testing.T) {
	fs := newFakeStore()
	server := NewHTTPServer(newTestService(t, fs), "*")
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestProtectedRouteWithExpiredBearerReturnsUnauthorized(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	server := NewHTTPServer(svc, "*")

	token, err := auth.IssueToken([]byte(svc.cfg.TokenSecret), auth.Claims{
		Sub:  "adm-1",
		Name: "Expired",
		Role: "admin",
		JTI:  "jti-expired",
		Exp:  time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestDisabledAccountCannotUseExistingToken(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(t, fs)
	account, token := seedAdmin(t, svc, fs, "admin")
	server := NewHTTPServer(svc, "*")

	now := time.Now()
	account.DisabledAt = &now
	fs.admins[account.ID] = account

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled account, got %d", rr.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	fs := newFakeStore()
	server := NewHTTPServer(newTestService(t, fs), "*")

	health := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	healthRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(healthRec, health)
	if healthRec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", healthRec.Code)
	}

	ready := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	readyRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(readyRec, ready)
	if readyRec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", readyRec.Code)
	}

	fs.pingErr = errUnavailable
	notReady := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	notReadyRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(notReadyRec, notReady)
	if notReadyRec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready: expected 503 when the database is down, got %d", notReadyRec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(notReadyRec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse readiness: %v", err)
	}
	if payload["status"] != "not_ready" {
		t.Fatalf("expected status not_ready, got %v", payload["status"])
	}
}

func TestOptionsPreflightCarriesCORSHeaders(t *testing.T) {
	fs := newFakeStore()
	server := NewHTTPServer(newTestService(t, fs), "https://admin.martdesk.example")

	req := httptest.NewRequest(http.MethodOptions, "/api/admin/users", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.martdesk.example" {
		t.Fatalf("expected CORS origin header, got %q", got)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}
}
