package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/shared/server/middleware"
)

func newSessionRouter(t *testing.T, onLogout func(string)) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryStore(), 0)
	r := gin.New()
	NewHandler(svc, false, onLogout).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func sessionCookie(t *testing.T, resp *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range resp.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatalf("expected %s cookie in response", middleware.SessionCookieName)
	return nil
}

func TestHandlerLoginSetsCookie(t *testing.T) {
	r, svc := newSessionRouter(t, nil)

	body, _ := json.Marshal(map[string]string{"email": "ada@example.com", "password": "pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	cookie := sessionCookie(t, resp)
	if !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie")
	}
	if _, ok, _ := svc.Check(req.Context(), cookie.Value); !ok {
		t.Fatalf("expected marker for cookie value")
	}
}

func TestHandlerLoginRejectsEmptyFields(t *testing.T) {
	r, _ := newSessionRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewBufferString(`{"email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandlerCurrentWithoutCookie(t *testing.T) {
	r, _ := newSessionRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestHandlerLogoutClearsMarkerAndRunsHook(t *testing.T) {
	var dropped string
	r, svc := newSessionRouter(t, func(id string) { dropped = id })
	id, _, err := svc.Login(t.Context(), "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: id})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if dropped != id {
		t.Fatalf("expected logout hook for %q, got %q", id, dropped)
	}
	if cookie := sessionCookie(t, resp); cookie.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got MaxAge %d", cookie.MaxAge)
	}
	if _, ok, _ := svc.Check(t.Context(), id); ok {
		t.Fatalf("expected marker cleared")
	}

	reqMe := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	reqMe.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: id})
	respMe := httptest.NewRecorder()
	r.ServeHTTP(respMe, reqMe)
	if respMe.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", respMe.Code)
	}
}
