package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsapp "github.com/storefront/analytics/internal/application/analytics"
	"github.com/storefront/analytics/internal/infrastructure/persistence"
	"github.com/storefront/analytics/internal/interfaces/http/dto"
	"github.com/storefront/analytics/internal/interfaces/http/handler"
	"github.com/storefront/analytics/internal/interfaces/http/middleware"
	"github.com/storefront/analytics/tests/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithBasePath("/api/v2"))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	group.POST("/echo", func(c *gin.Context) { c.String(http.StatusCreated, "echo") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v2/test/echo", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, "test", group.Name())
	assert.Equal(t, "/test", group.Prefix())
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("guarded", "/guarded").
		Use(func(c *gin.Context) { c.Header("X-Group", "guarded") }).
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/guarded", nil))
	assert.Equal(t, "guarded", w.Header().Get("X-Group"))
}

func TestNoRoute(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	NewRouter(engine).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

// newAnalyticsEngine wires the full stack over the seeded SQLite store
func newAnalyticsEngine(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	testutil.SeedStorefront(t, db)
	repo := persistence.NewGormAnalyticsRepository(db, time.UTC)
	svc := analyticsapp.NewService(repo, analyticsapp.DefaultCalibration(), nil,
		analyticsapp.WithClock(func() time.Time { return testutil.FixtureNow }))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	NewRouter(engine).
		Register(AnalyticsRoutes(handler.NewAnalyticsHandler(svc, time.UTC))).
		Setup()
	RegisterHealth(engine, handler.NewHealthHandler(map[string]handler.Pinger{"store": svc}, time.Second))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestAnalyticsRoutes_EndToEnd(t *testing.T) {
	engine := newAnalyticsEngine(t)

	t.Run("dashboard", func(t *testing.T) {
		w, resp := doJSON(t, engine, http.MethodGet, "/api/analytics/dashboard", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, resp["success"])
		revenue := resp["data"].(map[string]any)["revenue"].(map[string]any)
		assert.Equal(t, 250.0, revenue["total"])
		assert.Equal(t, 150.0, revenue["thisMonth"])
		assert.Equal(t, 100.0, revenue["lastMonth"])
	})

	t.Run("sales top customer", func(t *testing.T) {
		w, resp := doJSON(t, engine, http.MethodGet, "/api/analytics/sales?range=30d", nil)
		require.Equal(t, http.StatusOK, w.Code)
		customers := resp["data"].(map[string]any)["topCustomers"].([]any)
		require.NotEmpty(t, customers)
		assert.Equal(t, "Ada Lovelace", customers[0].(map[string]any)["name"])
	})

	t.Run("financial unknown type", func(t *testing.T) {
		w, resp := doJSON(t, engine, http.MethodGet, "/api/analytics/financial?type=unknown", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid report type", resp["message"])
		assert.Equal(t, dto.ErrCodeInvalidReportType, resp["error"].(map[string]any)["code"])
	})

	t.Run("financial defaults to revenue", func(t *testing.T) {
		w, resp := doJSON(t, engine, http.MethodGet, "/api/analytics/financial", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := resp["data"].(map[string]any)
		assert.Equal(t, "revenue", data["type"])
		assert.Equal(t, "1m", data["range"])
		assert.Equal(t, false, data["isEstimate"])
	})

	t.Run("vendors ranked", func(t *testing.T) {
		w, resp := doJSON(t, engine, http.MethodGet, "/api/analytics/vendors?range=1m", nil)
		require.Equal(t, http.StatusOK, w.Code)
		vendors := resp["data"].(map[string]any)["vendors"].([]any)
		require.NotEmpty(t, vendors)
		first := vendors[0].(map[string]any)
		assert.Equal(t, "Acme", first["businessName"])
		assert.Equal(t, 1.0, first["rank"])
	})

	t.Run("export csv not implemented", func(t *testing.T) {
		w, _ := doJSON(t, engine, http.MethodPost, "/api/analytics/export", map[string]any{"type": "orders", "format": "csv"})
		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})

	t.Run("export orders", func(t *testing.T) {
		w, resp := doJSON(t, engine, http.MethodPost, "/api/analytics/export", map[string]any{"type": "orders"})
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].(map[string]any)
		assert.Equal(t, 5.0, data["count"])
		assert.Equal(t, "json", data["format"])
	})

	t.Run("health", func(t *testing.T) {
		w, resp := doJSON(t, engine, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", resp["status"])
	})
}
