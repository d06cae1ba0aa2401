package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"
	"github.com/coursehub-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "router-test-secret-0123456789abcdef"

func setupAuthMiddlewareTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	r := gin.New()
	r.GET("/me", UserJWTAuthMiddleware(testJWTSecret, repository.NewUserRepository(db)), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r, db
}

func createRouterTestUser(t *testing.T, db *gorm.DB, status string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("user_%s@example.com", status),
		PasswordHash: "hash",
		Status:       status,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestUserJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r, db := setupAuthMiddlewareTest(t)
	user := createRouterTestUser(t, db, constants.UserStatusActive)

	token, err := service.IssueUserToken(testJWTSecret, user, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUserJWTAuthMiddlewareRejectsBadTokens(t *testing.T) {
	r, db := setupAuthMiddlewareTest(t)
	user := createRouterTestUser(t, db, constants.UserStatusActive)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, w.Code)
		}
	}

	// 错误密钥签发的令牌
	forged, err := service.IssueUserToken("another-secret-0123456789abcdefgh", user, time.Hour)
	if err != nil {
		t.Fatalf("issue forged token failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", w.Code)
	}

	// 过期令牌
	expired, err := service.IssueUserToken(testJWTSecret, user, -time.Hour)
	if err != nil {
		t.Fatalf("issue expired token failed: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestUserJWTAuthMiddlewareRejectsDisabledUser(t *testing.T) {
	r, db := setupAuthMiddlewareTest(t)
	user := createRouterTestUser(t, db, constants.UserStatusDisabled)

	token, err := service.IssueUserToken(testJWTSecret, user, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for disabled user, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	// 透传已有请求 ID
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "req-123" || w.Body.String() != "req-123" {
		t.Fatalf("expected request id to be propagated, got header=%q body=%q", w.Header().Get("X-Request-ID"), w.Body.String())
	}

	// 缺失时生成
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestResolveAllowedOrigin(t *testing.T) {
	if got := resolveAllowedOrigin("https://a.test", []string{"*"}, false); got != "*" {
		t.Fatalf("expected wildcard, got %q", got)
	}
	if got := resolveAllowedOrigin("https://a.test", []string{"*"}, true); got != "https://a.test" {
		t.Fatalf("expected echoed origin with credentials, got %q", got)
	}
	if got := resolveAllowedOrigin("https://a.test", []string{"https://b.test"}, false); got != "" {
		t.Fatalf("expected empty for unlisted origin, got %q", got)
	}
	if got := resolveAllowedOrigin("https://A.test", []string{"https://a.test"}, false); got != "https://A.test" {
		t.Fatalf("expected case-insensitive match, got %q", got)
	}
}
