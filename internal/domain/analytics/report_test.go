package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/analytics/internal/domain/shared"
)

func TestParseReportType(t *testing.T) {
	rt, err := ParseReportType("revenue")
	require.NoError(t, err)
	assert.Equal(t, ReportTypeRevenue, rt)

	rt, err = ParseReportType("profit")
	require.NoError(t, err)
	assert.Equal(t, ReportTypeProfit, rt)

	rt, err = ParseReportType("")
	require.NoError(t, err)
	assert.Equal(t, ReportTypeRevenue, rt)

	for _, bad := range []string{" ", "unknown", "Revenue"} {
		_, err := ParseReportType(bad)
		assert.ErrorIs(t, err, shared.ErrInvalidReportType, bad)
	}
	_, err = ParseReportType("unknown")
	assert.EqualError(t, err, "Invalid report type")
}

func TestParseExportType(t *testing.T) {
	for _, ok := range []ExportType{ExportOrders, ExportCustomers, ExportProducts} {
		got, err := ParseExportType(string(ok))
		require.NoError(t, err)
		assert.Equal(t, ok, got)
	}

	_, err := ParseExportType("")
	assert.ErrorIs(t, err, shared.ErrInvalidExportType)
	assert.Equal(t, "Export type is required", err.Error())

	_, err = ParseExportType("invoices")
	assert.ErrorIs(t, err, shared.ErrInvalidExportType)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatJSON, f)

	f, err = ParseExportFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatJSON, f)

	_, err = ParseExportFormat("csv")
	assert.ErrorIs(t, err, shared.ErrNotImplemented)

	_, err = ParseExportFormat("xlsx")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestOrderStatus_IsRecognized(t *testing.T) {
	recognized := map[OrderStatus]bool{
		OrderStatusDraft:      false,
		OrderStatusPending:    false,
		OrderStatusConfirmed:  true,
		OrderStatusProcessing: true,
		OrderStatusShipped:    true,
		OrderStatusDelivered:  true,
		OrderStatusCancelled:  false,
	}
	for status, want := range recognized {
		assert.Equal(t, want, status.IsRecognized(), string(status))
	}
	assert.NotContains(t, RecognizedStatusStrings(), "cancelled")
	assert.Len(t, RecognizedStatusStrings(), 4)
}

func TestInventoryAndNames(t *testing.T) {
	assert.True(t, Inventory{Quantity: 5, LowStockThreshold: 5}.IsLowStock())
	assert.False(t, Inventory{Quantity: 6, LowStockThreshold: 5}.IsLowStock())
	assert.True(t, Inventory{Quantity: 0}.IsOutOfStock())
	assert.True(t, Inventory{Quantity: -2}.IsOutOfStock())

	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "Ada", JoinName("Ada", ""))
	assert.Equal(t, "Lovelace", JoinName("", "Lovelace"))
}
