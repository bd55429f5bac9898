package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/storefront/analytics/internal/domain/analytics"
)

// MockRepository is a testify mock of analytics.Repository.
// Slice-returning methods accept a nil first return value.
type MockRepository struct {
	mock.Mock
}

var _ analytics.Repository = (*MockRepository)(nil)

func (m *MockRepository) RevenueSummary(ctx context.Context, bounds analytics.MonthBounds) (analytics.RevenueFacet, error) {
	args := m.Called(ctx, bounds)
	return args.Get(0).(analytics.RevenueFacet), args.Error(1)
}

func (m *MockRepository) OrderSummary(ctx context.Context, bounds analytics.MonthBounds) (analytics.OrderFacet, error) {
	args := m.Called(ctx, bounds)
	return args.Get(0).(analytics.OrderFacet), args.Error(1)
}

func (m *MockRepository) CustomerSummary(ctx context.Context, bounds analytics.MonthBounds) (analytics.CustomerFacet, error) {
	args := m.Called(ctx, bounds)
	return args.Get(0).(analytics.CustomerFacet), args.Error(1)
}

func (m *MockRepository) ActiveCustomerIDs(ctx context.Context, since time.Time) ([]string, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) TopSellingProducts(ctx context.Context, limit int) ([]analytics.ProductSales, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.ProductSales), args.Error(1)
}

func (m *MockRepository) InventorySummary(ctx context.Context) (analytics.InventoryFacet, error) {
	args := m.Called(ctx)
	return args.Get(0).(analytics.InventoryFacet), args.Error(1)
}

func (m *MockRepository) DailySalesTrend(ctx context.Context, window analytics.TimeWindow) ([]analytics.DailySales, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.DailySales), args.Error(1)
}

func (m *MockRepository) TopProductsByRevenue(ctx context.Context, window analytics.TimeWindow, limit int) ([]analytics.ProductRevenue, error) {
	args := m.Called(ctx, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.ProductRevenue), args.Error(1)
}

func (m *MockRepository) TopCustomers(ctx context.Context, window analytics.TimeWindow, limit int) ([]analytics.CustomerSpend, error) {
	args := m.Called(ctx, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.CustomerSpend), args.Error(1)
}

func (m *MockRepository) SalesByCategory(ctx context.Context, window analytics.TimeWindow) ([]analytics.CategorySales, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.CategorySales), args.Error(1)
}

func (m *MockRepository) VendorPerformance(ctx context.Context, window analytics.TimeWindow) ([]analytics.VendorSales, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.VendorSales), args.Error(1)
}

func (m *MockRepository) FinancialSeries(ctx context.Context, window analytics.TimeWindow) ([]analytics.FinancialBucket, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.FinancialBucket), args.Error(1)
}

func (m *MockRepository) ExportOrders(ctx context.Context, filter analytics.ExportFilter) ([]analytics.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Order), args.Error(1)
}

func (m *MockRepository) ExportCustomers(ctx context.Context, filter analytics.ExportFilter) ([]analytics.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.User), args.Error(1)
}

func (m *MockRepository) ExportProducts(ctx context.Context, filter analytics.ExportFilter) ([]analytics.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Product), args.Error(1)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ExpectEmptyDashboard stubs every dashboard facet with empty results
func (m *MockRepository) ExpectEmptyDashboard() {
	m.On("RevenueSummary", mock.Anything, mock.Anything).Return(analytics.RevenueFacet{}, nil)
	m.On("OrderSummary", mock.Anything, mock.Anything).Return(analytics.OrderFacet{}, nil)
	m.On("CustomerSummary", mock.Anything, mock.Anything).Return(analytics.CustomerFacet{}, nil)
	m.On("ActiveCustomerIDs", mock.Anything, mock.Anything).Return(nil, nil)
	m.On("TopSellingProducts", mock.Anything, mock.Anything).Return(nil, nil)
	m.On("InventorySummary", mock.Anything).Return(analytics.InventoryFacet{}, nil)
}

// ExpectEmptySales stubs every sales facet with empty results
func (m *MockRepository) ExpectEmptySales() {
	m.On("DailySalesTrend", mock.Anything, mock.Anything).Return(nil, nil)
	m.On("TopProductsByRevenue", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	m.On("TopCustomers", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	m.On("SalesByCategory", mock.Anything, mock.Anything).Return(nil, nil)
}
