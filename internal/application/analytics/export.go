package analytics

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/domain/shared"
	"github.com/storefront/analytics/internal/infrastructure/telemetry"
)

// Export dumps orders, customers or products. The type is checked before the format,
// so an invalid type is reported even when CSV was requested.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "export",
		telemetry.WithAttribute(telemetry.AttrExportType, req.Type),
		telemetry.WithAttribute(telemetry.AttrExportFormat, req.Format),
	)
	defer span.End()

	exportType, err := analytics.ParseExportType(req.Type)
	if err != nil {
		return nil, err
	}
	format, err := analytics.ParseExportFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, shared.ErrInvalidInput.WithMessage("dateRange end must not precede start")
	}

	filter := analytics.ExportFilter{From: req.From, To: req.To}
	records, count, err := s.exportRecords(ctx, exportType, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Export failed", zap.String("type", string(exportType)), zap.Error(err))
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.AttrRecordCount, count)
	return &ExportResult{
		ExportID:    uuid.NewString(),
		Type:        string(exportType),
		Format:      string(format),
		GeneratedAt: s.now(),
		Count:       count,
		Records:     records,
	}, nil
}

func (s *Service) exportRecords(ctx context.Context, t analytics.ExportType, filter analytics.ExportFilter) (any, int, error) {
	switch t {
	case analytics.ExportOrders:
		orders, err := s.repo.ExportOrders(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		out := make([]OrderRecord, 0, len(orders))
		for _, o := range orders {
			var items int64
			for _, vo := range o.VendorOrders {
				for _, it := range vo.Items {
					items += it.Quantity
				}
			}
			out = append(out, OrderRecord{
				ID:         o.ID,
				UserID:     o.UserID,
				Status:     string(o.Status),
				Recognized: o.Status.IsRecognized(),
				Total:      money(o.Total),
				Tax:        money(o.Tax),
				Shipping:   money(o.Shipping),
				Discount:   money(o.Discount),
				Vendors:    len(o.VendorOrders),
				Items:      items,
				CreatedAt:  o.CreatedAt,
			})
		}
		return out, len(out), nil

	case analytics.ExportCustomers:
		users, err := s.repo.ExportCustomers(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		out := make([]CustomerRecord, 0, len(users))
		for _, u := range users {
			out = append(out, CustomerRecord{
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
				CreatedAt: u.CreatedAt,
			})
		}
		return out, len(out), nil

	default:
		products, err := s.repo.ExportProducts(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		out := make([]ProductRecord, 0, len(products))
		for _, p := range products {
			out = append(out, ProductRecord{
				ID:                p.ID,
				Name:              p.Name,
				Category:          p.Category,
				VendorID:          p.VendorID,
				Quantity:          p.Inventory.Quantity,
				LowStockThreshold: p.Inventory.LowStockThreshold,
				LowStock:          p.Inventory.IsLowStock(),
				OutOfStock:        p.Inventory.IsOutOfStock(),
				CreatedAt:         p.CreatedAt,
			})
		}
		return out, len(out), nil
	}
}

// Ping checks the aggregation store
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
