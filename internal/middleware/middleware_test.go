package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"urwallet/internal/auth"
	apperrors "urwallet/internal/errors"
	"urwallet/internal/logger"
	"urwallet/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

type mockVerifier struct {
	verifyFn func(ctx context.Context, token string) (*auth.Identity, error)
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	return m.verifyFn(ctx, token)
}

type mockProvisioner struct {
	getOrCreateFn func(id, email string) (*models.User, error)
}

func (m *mockProvisioner) GetOrCreateUser(id, email string) (*models.User, error) {
	return m.getOrCreateFn(id, email)
}

func acceptToken(valid string) *mockVerifier {
	return &mockVerifier{verifyFn: func(_ context.Context, token string) (*auth.Identity, error) {
		if token != valid {
			return nil, auth.ErrInvalidToken
		}
		return &auth.Identity{UserID: "uid-1", Email: "a@b.com"}, nil
	}}
}

func echoUser() *mockProvisioner {
	return &mockProvisioner{getOrCreateFn: func(id, email string) (*models.User, error) {
		return &models.User{ID: id, Email: email}, nil
	}}
}

func setupAuthRouter(v auth.Verifier, p UserProvisioner) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(v, p))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey), "email": c.GetString(EmailKey)})
	})
	return r
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error.Code
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		provision  *mockProvisioner
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", echoUser(), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", echoUser(), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"empty token", "Bearer ", echoUser(), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"rejected token", "Bearer nope", echoUser(), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"provisioning fails", "Bearer good", &mockProvisioner{getOrCreateFn: func(string, string) (*models.User, error) {
			return nil, errors.New("db down")
		}}, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"valid", "Bearer good", echoUser(), http.StatusOK, ""},
		{"lower-case scheme", "bearer good", echoUser(), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupAuthRouter(acceptToken("good"), tt.provision)
			req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, w); code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, code)
				}
			}
			if tt.wantStatus == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	r := setupAuthRouter(acceptToken("good"), echoUser())
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["user_id"] != "uid-1" || body["email"] != "a@b.com" {
		t.Errorf("unexpected identity %v", body)
	}
}

func TestUserRateLimiter(t *testing.T) {
	limiter := NewUserRateLimiter(2)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(UserIDKey, c.GetHeader("X-User"))
		c.Next()
	})
	r.Use(limiter.Middleware())
	r.GET("/ai", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ai", http.NoBody)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := call("alice"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := call("alice")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "RATE_LIMITED" {
		t.Errorf("expected RATE_LIMITED, got %s", code)
	}
	if w.Header().Get("Retry-After") != "30" {
		t.Errorf("expected Retry-After 30, got %q", w.Header().Get("Retry-After"))
	}

	if w := call("bob"); w.Code != http.StatusOK {
		t.Errorf("other users have their own bucket, got %d", w.Code)
	}

	now = now.Add(31 * time.Second)
	if w := call("alice"); w.Code != http.StatusOK {
		t.Errorf("expected a refilled token, got %d", w.Code)
	}
}

func TestUserRateLimiterDisabled(t *testing.T) {
	limiter := NewUserRateLimiter(0)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ai", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai", http.NoBody))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected preflight 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", http.NoBody)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin must not be allowed, got %q", got)
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperrors.ErrTransactionNotFound) })
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", http.NoBody))
	if w.Code != http.StatusNotFound || errorCode(t, w) != "TRANSACTION_NOT_FOUND" {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", http.NoBody))
	if w.Code != http.StatusInternalServerError || errorCode(t, w) != "INTERNAL_ERROR" {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestRequestLoggingSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", http.NoBody)
	req.Header.Set("X-Request-ID", "0190f3c4-8b2a-7cde-9f00-123456789abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "0190f3c4-8b2a-7cde-9f00-123456789abc" {
		t.Errorf("expected the caller's request id, got %q", got)
	}
}
