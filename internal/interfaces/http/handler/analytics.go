package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	analyticsapp "github.com/storefront/analytics/internal/application/analytics"
	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/domain/shared"
	"github.com/storefront/analytics/internal/interfaces/http/dto"
	"github.com/storefront/analytics/internal/interfaces/http/middleware"
)

// AnalyticsService is the application surface the analytics endpoints call
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*analyticsapp.DashboardMetrics, error)
	Sales(ctx context.Context, rangeToken string) (*analyticsapp.SalesAnalytics, error)
	Financial(ctx context.Context, reportType, rangeToken string) (*analyticsapp.FinancialReport, error)
	Vendors(ctx context.Context, rangeToken string) (*analyticsapp.VendorPerformanceReport, error)
	Export(ctx context.Context, req analyticsapp.ExportRequest) (*analyticsapp.ExportResult, error)
}

// AnalyticsHandler serves the /api/analytics endpoints
type AnalyticsHandler struct {
	BaseHandler
	service  AnalyticsService
	location *time.Location
}

// NewAnalyticsHandler creates a new AnalyticsHandler. loc interprets date-only
// export bounds; nil means UTC.
func NewAnalyticsHandler(service AnalyticsService, loc *time.Location) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{service: service, location: loc}
}

// ===================== Request DTOs =====================

// RangeQuery is the optional range token of the report endpoints
type RangeQuery struct {
	Range string `form:"range" example:"30d"`
}

// FinancialQuery selects the financial report type and window
type FinancialQuery struct {
	Type  string `form:"type" example:"revenue"`
	Range string `form:"range" example:"1m"`
}

// DateRange bounds an export by creation time. Both ends accept RFC 3339 or YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start" example:"2026-01-01"`
	End   string `json:"end" example:"2026-02-01"`
}

// ExportRequest is the body of POST /api/analytics/export
// @Description Bulk export request
type ExportRequest struct {
	Type      string     `json:"type" binding:"required" example:"orders"`
	Format    string     `json:"format" example:"json"`
	DateRange *DateRange `json:"dateRange"`
}

// ===================== Handlers =====================

// GetDashboard godoc
// @ID           getAnalyticsDashboard
// @Summary      Get dashboard metrics
// @Description  Revenue, order, customer and product headline metrics with month-over-month growth
// @Tags         analytics
// @Produce      json
// @Success      200 {object} APIResponse[analyticsapp.DashboardMetrics]
// @Failure      500 {object} ErrorResponse
// @Router       /analytics/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	metrics, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err, "Failed to load dashboard metrics")
		return
	}
	h.Success(c, metrics)
}

// GetSales godoc
// @ID           getAnalyticsSales
// @Summary      Get sales analytics
// @Description  Daily trend, top products, top customers and category breakdown for a range
// @Tags         analytics
// @Produce      json
// @Param        range query string false "Range token" Enums(7d, 30d, 90d, 1y) default(30d)
// @Success      200 {object} APIResponse[analyticsapp.SalesAnalytics]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /analytics/sales [get]
func (h *AnalyticsHandler) GetSales(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	report, err := h.service.Sales(c.Request.Context(), q.Range)
	if err != nil {
		h.HandleError(c, err, "Failed to load sales analytics")
		return
	}
	h.Success(c, report)
}

// GetFinancial godoc
// @ID           getAnalyticsFinancial
// @Summary      Get financial report
// @Description  Time-bucketed revenue or estimated profit report
// @Tags         analytics
// @Produce      json
// @Param        type  query string false "Report type" Enums(revenue, profit) default(revenue)
// @Param        range query string false "Range token" Enums(1m, 3m, 1y) default(1m)
// @Success      200 {object} APIResponse[analyticsapp.FinancialReport]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /analytics/financial [get]
func (h *AnalyticsHandler) GetFinancial(c *gin.Context) {
	var q FinancialQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	report, err := h.service.Financial(c.Request.Context(), q.Type, q.Range)
	if err != nil {
		h.HandleError(c, err, "Failed to load financial report")
		return
	}
	h.Success(c, report)
}

// GetVendors godoc
// @ID           getAnalyticsVendors
// @Summary      Get vendor performance
// @Description  Vendors ranked by weighted performance score
// @Tags         analytics
// @Produce      json
// @Param        range query string false "Range token" Enums(1m, 3m, 6m) default(1m)
// @Success      200 {object} APIResponse[analyticsapp.VendorPerformanceReport]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /analytics/vendors [get]
func (h *AnalyticsHandler) GetVendors(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	report, err := h.service.Vendors(c.Request.Context(), q.Range)
	if err != nil {
		h.HandleError(c, err, "Failed to load vendor performance")
		return
	}
	h.Success(c, report)
}

// Export godoc
// @ID           postAnalyticsExport
// @Summary      Export records
// @Description  Dumps orders, customers or products as JSON. CSV is not implemented yet.
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        request body ExportRequest true "Export request"
// @Success      200 {object} APIResponse[analyticsapp.ExportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Failure      501 {object} ErrorResponse
// @Router       /analytics/export [post]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.ValidationError(c, middleware.ValidationDetails(verrs))
			return
		}
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	appReq, err := h.exportRequest(req)
	if err != nil {
		h.HandleError(c, err, "")
		return
	}

	result, err := h.service.Export(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err, "Failed to export records")
		return
	}
	h.Success(c, result)
}

// exportRequest converts the body into a service request. A malformed bound is
// reported only once type and format are known to be valid.
func (h *AnalyticsHandler) exportRequest(req ExportRequest) (analyticsapp.ExportRequest, error) {
	out := analyticsapp.ExportRequest{Type: req.Type, Format: req.Format}
	if req.DateRange == nil {
		return out, nil
	}

	from, boundErr := h.parseBound(req.DateRange.Start)
	to, err := h.parseBound(req.DateRange.End)
	if boundErr == nil {
		boundErr = err
	}
	if boundErr != nil {
		if _, err := analytics.ParseExportType(req.Type); err != nil {
			return out, err
		}
		if _, err := analytics.ParseExportFormat(req.Format); err != nil {
			return out, err
		}
		return out, boundErr
	}

	out.From, out.To = from, to
	return out, nil
}

// parseBound parses an export bound. Empty means open.
func (h *AnalyticsHandler) parseBound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation(analytics.PeriodLayout, s, h.location); err == nil {
		return &t, nil
	}
	return nil, shared.ErrInvalidInput.WithMessage("dateRange bounds must be RFC 3339 timestamps or YYYY-MM-DD dates")
}
