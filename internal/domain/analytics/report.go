package analytics

import (
	"strings"
	"time"

	"github.com/storefront/analytics/internal/domain/shared"
)

// ReportType selects the financial report variant
type ReportType string

const (
	ReportTypeRevenue ReportType = "revenue"
	ReportTypeProfit  ReportType = "profit"
)

// ParseReportType validates a financial report type. An absent type means
// revenue.
func ParseReportType(s string) (ReportType, error) {
	switch ReportType(s) {
	case "":
		return ReportTypeRevenue, nil
	case ReportTypeRevenue, ReportTypeProfit:
		return ReportType(s), nil
	default:
		return "", shared.ErrInvalidReportType
	}
}

// ExportType selects the record set for a bulk export
type ExportType string

const (
	ExportOrders    ExportType = "orders"
	ExportCustomers ExportType = "customers"
	ExportProducts  ExportType = "products"
)

// ParseExportType validates an export type. An empty type is invalid.
func ParseExportType(s string) (ExportType, error) {
	switch ExportType(s) {
	case ExportOrders, ExportCustomers, ExportProducts:
		return ExportType(s), nil
	case "":
		return "", shared.ErrInvalidExportType.WithMessage("Export type is required")
	default:
		return "", shared.ErrInvalidExportType
	}
}

// ExportFormat is the serialization of an export
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
)

// ParseExportFormat validates a format, defaulting to JSON. CSV is recognized but not
// yet produced.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(s)) {
	case "", ExportFormatJSON:
		return ExportFormatJSON, nil
	case ExportFormatCSV:
		return "", shared.ErrNotImplemented.WithMessage("CSV export is not implemented yet")
	default:
		return "", shared.ErrInvalidInput.WithMessage("Unsupported export format")
	}
}

// ExportFilter bounds an export by creation time. Nil bounds are open.
type ExportFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}
