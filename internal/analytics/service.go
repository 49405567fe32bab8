package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
	"github.com/springzlabs/springz-backend/pkg/logger"
)

// StatusCount is one slice of the fulfillment pipeline.
type StatusCount struct {
	Status enums.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
}

// LowStockVariant flags a SKU running out.
type LowStockVariant struct {
	VariantID   string `json:"variantId"`
	SKU         string `json:"sku"`
	ProductName string `json:"productName"`
	Stock       int    `json:"stock"`
}

// Dashboard is the admin overview. Amounts are whole rupees; the average
// is rounded to the nearest rupee, half up.
type Dashboard struct {
	TotalOrders       int64             `json:"totalOrders"`
	TotalCustomers    int64             `json:"totalCustomers"`
	PaidRevenueInINR  int64             `json:"paidRevenueInINR"`
	AverageOrderInINR int64             `json:"averageOrderInINR"`
	OrdersLast30Days  int64             `json:"ordersLast30Days"`
	OrdersByStatus    []StatusCount     `json:"ordersByStatus"`
	LowStockVariants  []LowStockVariant `json:"lowStockVariants"`
	LowStockThreshold int               `json:"lowStockThreshold"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

const lowStockThreshold = 10

// Service aggregates back-office metrics straight from Postgres.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	db   *gorm.DB
	logg *logger.Logger
	now  func() time.Time
}

func NewService(db *gorm.DB, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	return &service{db: db, logg: logg, now: time.Now}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{
		LowStockThreshold: lowStockThreshold,
		GeneratedAt:       s.now(),
	}

	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&dashboard.TotalOrders).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", enums.UserRoleCustomer).
		Count(&dashboard.TotalCustomers).Error; err != nil {
		return nil, err
	}

	var paid struct {
		Revenue int64
		Count   int64
	}
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_in_inr), 0) AS revenue, COUNT(*) AS count").
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Scan(&paid).Error
	if err != nil {
		return nil, err
	}
	dashboard.PaidRevenueInINR = paid.Revenue
	if paid.Count > 0 {
		average := decimal.NewFromInt(paid.Revenue).
			Div(decimal.NewFromInt(paid.Count)).
			Round(0)
		dashboard.AverageOrderInINR = average.IntPart()
	}

	since := s.now().AddDate(0, 0, -30)
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("created_at >= ?", since).
		Count(&dashboard.OrdersLast30Days).Error; err != nil {
		return nil, err
	}

	var statusRows []StatusCount
	err = s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}
	dashboard.OrdersByStatus = statusRows

	var lowStock []LowStockVariant
	err = s.db.WithContext(ctx).Model(&models.Variant{}).
		Select("variants.id AS variant_id, variants.sku, products.name AS product_name, variants.stock").
		Joins("JOIN products ON products.id = variants.product_id").
		Where("variants.is_active = TRUE AND variants.stock <= ?", lowStockThreshold).
		Order("variants.stock ASC").
		Limit(20).
		Scan(&lowStock).Error
	if err != nil {
		return nil, err
	}
	dashboard.LowStockVariants = lowStock

	return dashboard, nil
}
