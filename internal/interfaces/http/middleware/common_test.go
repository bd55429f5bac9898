package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/api/analytics/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSWithConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         CORSConfig
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantCredHdr string
	}{
		{
			name:       "default config rejects cross-origin",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodGet,
			origin:     "http://malicious.example",
			wantStatus: http.StatusOK,
		},
		{
			name:        "listed origin is echoed with credentials",
			cfg:         CORSConfig{AllowOrigins: []string{"http://localhost:3000"}, AllowCredentials: true},
			method:      http.MethodGet,
			origin:      "http://localhost:3000",
			wantStatus:  http.StatusOK,
			wantOrigin:  "http://localhost:3000",
			wantCredHdr: "true",
		},
		{
			name:       "wildcard never sends credentials",
			cfg:        CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true},
			method:     http.MethodGet,
			origin:     "http://anything.example",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		{
			name:       "preflight from unknown origin still 204",
			cfg:        CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
			method:     http.MethodOptions,
			origin:     "http://other.example",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "preflight from listed origin",
			cfg:        CORSConfig{AllowOrigins: []string{"http://localhost:3000"}, AllowMethods: []string{"GET", "POST"}},
			method:     http.MethodOptions,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusNoContent,
			wantOrigin: "http://localhost:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(CORSWithConfig(tt.cfg))
			w := serve(router, tt.method, "/api/analytics/dashboard", map[string]string{"Origin": tt.origin})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredHdr, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSWithConfig_PreflightHeaders(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:  []string{"http://localhost:3000"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        time.Hour,
	}
	w := serve(newTestRouter(CORSWithConfig(cfg)), http.MethodOptions, "/api/analytics/dashboard",
		map[string]string{"Origin": "http://localhost:3000"})

	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, X-Request-ID", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
}

func TestRequestID(t *testing.T) {
	var seen string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		seen = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	t.Run("generates uuid", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/", nil)
		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("propagates caller id", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/", map[string]string{RequestIDHeader: "caller-123"})
		assert.Equal(t, "caller-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "caller-123", seen)
	})

	t.Run("truncates oversized id", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/", map[string]string{RequestIDHeader: strings.Repeat("a", 500)})
		assert.Len(t, w.Header().Get(RequestIDHeader), MaxRequestIDLength)
	})
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		w := serve(newTestRouter(SecureWithConfig(DefaultSecurityConfig())), http.MethodGet, "/api/analytics/dashboard", nil)
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("hsts enabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		w := serve(newTestRouter(SecureWithConfig(cfg)), http.MethodGet, "/api/analytics/dashboard", nil)
		assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	})
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	handler := func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	}

	t.Run("sets deadline", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(5 * time.Second))
		router.GET("/", handler)

		before := time.Now()
		serve(router, http.MethodGet, "/", nil)
		require.True(t, hasDeadline)
		assert.WithinDuration(t, before.Add(5*time.Second), deadline, time.Second)
	})

	t.Run("zero disables", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(0))
		router.GET("/", handler)

		serve(router, http.MethodGet, "/", nil)
		assert.False(t, hasDeadline)
	})

	t.Run("expired deadline reaches handler", func(t *testing.T) {
		var ctxErr error
		router := gin.New()
		router.Use(Timeout(time.Millisecond))
		router.GET("/", func(c *gin.Context) {
			<-c.Request.Context().Done()
			ctxErr = c.Request.Context().Err()
			c.Status(http.StatusOK)
		})

		serve(router, http.MethodGet, "/", nil)
		assert.ErrorIs(t, ctxErr, context.DeadlineExceeded)
	})
}
