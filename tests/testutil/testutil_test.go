package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/analytics/internal/infrastructure/persistence/models"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)
	mockDB.ExpectationsWereMet(t)
}

func TestSeedStorefront(t *testing.T) {
	db := NewSQLiteDB(t)
	SeedStorefront(t, db)

	var orders, items, vendorOrders int64
	require.NoError(t, db.Model(&models.OrderModel{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.VendorOrderModel{}).Count(&vendorOrders).Error)
	require.NoError(t, db.Model(&models.OrderItemModel{}).Count(&items).Error)
	assert.Equal(t, int64(5), orders)
	assert.Equal(t, int64(5), vendorOrders)
	assert.Equal(t, int64(6), items)

	var linked int64
	require.NoError(t, db.Model(&models.OrderItemModel{}).Where("order_id = ?", "o1").Count(&linked).Error)
	assert.Equal(t, int64(2), linked)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	assert.Equal(t, "req-123", tc.Context.GetString("request_id"))

	tc.SetHeader("X-Test", "1")
	assert.Equal(t, "1", tc.Context.Request.Header.Get("X-Test"))

	tc.Context.JSON(http.StatusTeapot, gin.H{"success": true})
	assert.Equal(t, http.StatusTeapot, tc.ResponseCode())
	AssertSuccessResponse(t, tc)
}

func TestAssertErrorResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Invalid report type",
		"error":   gin.H{"code": "INVALID_REPORT_TYPE", "message": "Invalid report type"},
	})

	AssertErrorResponse(t, tc, "INVALID_REPORT_TYPE")
	AssertErrorMessage(t, tc, "Invalid report type")
}

func TestAssertEventually(t *testing.T) {
	start := time.Now()
	AssertEventually(t, func() bool {
		return time.Since(start) > 10*time.Millisecond
	}, time.Second, 5*time.Millisecond)
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "hello"})
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{Name: "status", ExpectedStatus: http.StatusOK},
		{Name: "body", Path: "/x", ExpectedBody: map[string]any{"message": "hello"}},
	})
}

func TestJSONResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"key": "value"})

	assert.Equal(t, "value", JSONResponse(t, tc)["key"])
}
