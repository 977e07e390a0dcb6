package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/watchnext/backend/internal/config"
)

const secret = "router-test-secret-0123"

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Address:           ":0",
			RequestTimeout:    time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Backend: config.BackendConfig{Kind: config.BackendMemory, DataDir: t.TempDir(), AdminUserIDs: []string{"boss"}},
		Auth:    config.AuthConfig{Provider: config.AuthJWT, JWTSecret: secret},
		Log:     config.LogConfig{Level: "info", Format: "json"},
	}
}

func token(t *testing.T, sub string) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRouterWiring(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	authenticate, err := authMiddleware(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(newRouter(cfg, b, authenticate))
	defer srv.Close()

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		status int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"options", http.MethodGet, "/api/catalog/options", "", http.StatusOK},
		{"profile anonymous", http.MethodGet, "/api/profile", "", http.StatusUnauthorized},
		{"profile", http.MethodGet, "/api/profile", "someone", http.StatusOK},
		{"home before onboarding", http.MethodGet, "/api/home", "someone", http.StatusForbidden},
		{"admin as user", http.MethodGet, "/api/admin/staff-picks", "someone", http.StatusForbidden},
		{"admin bootstrap", http.MethodGet, "/api/admin/staff-picks", "boss", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(""))
			if tt.user != "" {
				req.Header.Set("Authorization", "Bearer "+token(t, tt.user))
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}
