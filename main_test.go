package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/services"
	"fintrack/utils"

	"github.com/gin-gonic/gin"
)

func newTestEngine(limit int) (*gin.Engine, *utils.Metrics) {
	gin.SetMode(gin.TestMode)
	metrics := utils.NewMetrics()

	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(r.URL.Path))
	})
	return newEngine(api, metrics, utils.NewRateLimiter(limit, time.Minute)), metrics
}

func TestHealthHandler(t *testing.T) {
	engine, _ := newTestEngine(10)

	// Создаем тестовый HTTP-запрос
	req, err := http.NewRequest("GET", "/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	// Проверяем статус код
	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			status, http.StatusOK)
	}

	// Проверяем тело ответа
	expected := `{"status":"ok"}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v",
			rr.Body.String(), expected)
	}
}

func TestAPIIsMountedUnderPrefix(t *testing.T) {
	engine, _ := newTestEngine(10)

	req, _ := http.NewRequest("POST", "/api/v1/budgets", nil)
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want the mounted handler's %d", rr.Code, http.StatusTeapot)
	}
	if rr.Body.String() != "/api/v1/budgets" {
		t.Errorf("mounted handler saw path %q, want /api/v1/budgets", rr.Body.String())
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	engine, _ := newTestEngine(10)

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"total_requests":1`) {
		t.Errorf("metrics body = %s, want total_requests 1", rr.Body.String())
	}
}

func TestRateLimitApplied(t *testing.T) {
	engine, _ := newTestEngine(1)

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
}

func TestAPIRequestLoggedOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(utils.NewLogger(&buf, "info", "text"))
	defer slog.SetDefault(previous)

	cfg, err := config.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	metrics := utils.NewMetrics()
	api, _ := newAPI(cfg, database.NewMemoryStore(), services.LogMailer{}, metrics)
	engine := newEngine(api, metrics, utils.NewRateLimiter(10, time.Minute))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/users/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}

	if got := strings.Count(buf.String(), "/api/v1/users/me"); got != 1 {
		t.Errorf("request logged %d times, want 1:\n%s", got, buf.String())
	}
}
