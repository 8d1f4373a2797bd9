package routes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/config"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/security"
	httproutes "github.com/ThanhLong2006/personal-expense-tracker/internal/transport/http/routes"
)

type staticChecker struct {
	err error
}

func (s staticChecker) Ping(context.Context) error        { return s.err }
func (s staticChecker) HealthCheck(context.Context) error { return s.err }

func testDeps(t *testing.T) httproutes.Dependencies {
	t.Helper()
	return httproutes.Dependencies{
		Config: &config.AppConfig{App: config.AppSettings{Env: "test"}},
		Logger: zaptest.NewLogger(t),
	}
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDeps(t))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadinessReportsFailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deps := testDeps(t)
	deps.Database = staticChecker{}
	deps.Cache = staticChecker{err: errors.New("connection refused")}

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("expected redis failure in body, got %s", w.Body.String())
	}
}

func TestProtectedRouteRequiresAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens, err := security.NewTokenService([]byte(strings.Repeat("k", 32)), "expense-tracker")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	deps := testDeps(t)
	deps.Tokens = tokens

	r := httproutes.Register(deps)

	request := func(authorization string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := request(""); code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", code)
	}
	if code := request("Bearer not-a-token"); code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", code)
	}

	refresh, err := tokens.Issue("user@example.com", security.TokenTypeRefresh, nil, time.Hour)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if code := request("Bearer " + refresh); code != http.StatusUnauthorized {
		t.Fatalf("refresh token on access route: expected 401, got %d", code)
	}
}
