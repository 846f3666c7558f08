package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubParser struct {
	userID uuid.UUID
}

func (p stubParser) ParseAccessToken(token string) (uuid.UUID, error) {
	if token != "good" {
		return uuid.Nil, errors.New("bad token")
	}
	return p.userID, nil
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	var seen uuid.UUID
	handler := AuthMiddleware(stubParser{userID: userID})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"good token", "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}

	if seen != userID {
		t.Errorf("user id in context = %s, want %s", seen, userID)
	}
}

func TestUserIDFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserIDFromContext(req.Context()); ok {
		t.Errorf("UserIDFromContext() ok = true for an anonymous request")
	}
}

func TestRateLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(RateLimit(utils.NewRateLimiter(1, time.Minute)))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.Code)
	}
}

func TestRecoveryAndLogger(t *testing.T) {
	metrics := utils.NewMetrics()
	engine := gin.New()
	engine.Use(Logger(metrics), Recovery(metrics))
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	snapshot := metrics.GetMetricsSnapshot()
	if snapshot["failed_requests"] != int64(1) {
		t.Errorf("failed_requests = %v, want 1", snapshot["failed_requests"])
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := gin.New()
	engine.Use(CORSMiddleware())
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/x", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
