package stores

import (
	"context"
	"fmt"
	"time"

	"order-metrics/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// orderRecord is the orders table row.
type orderRecord struct {
	ID                     string            `gorm:"primaryKey;size:64"`
	TenantID               string            `gorm:"size:64;not null;index:idx_orders_tenant_created,priority:1"`
	CustomerID             string            `gorm:"size:64"`
	Status                 string            `gorm:"size:32;not null;index"`
	TotalAmount            decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	PreparationTimeMinutes int               `gorm:"not null;default:0"`
	CreatedAt              time.Time         `gorm:"not null;index:idx_orders_tenant_created,priority:2"`
	UpdatedAt              time.Time
	Items                  []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   string          `gorm:"size:64;not null;index"`
	Name      string          `gorm:"size:255;not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// OrderStore is the system of record for orders. The analytics engine reads it when the
// time buckets cannot answer a query.
//
//go:generate mockgen -source=order_store.go -destination=./mocks/order_store_mock.go -package=mocks
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, tenantID, orderID string, status models.OrderStatus) error
	// ListOrders returns the tenant's orders created in [from, to), oldest first, with items.
	ListOrders(ctx context.Context, tenantID string, from, to time.Time) ([]*models.Order, error)
	// CountByStatus counts the tenant's orders created in [from, to) per status.
	CountByStatus(ctx context.Context, tenantID string, from, to time.Time) (map[models.OrderStatus]int64, error)
}

type orderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) OrderStore {
	return &orderStore{db: db}
}

func (s *orderStore) Create(ctx context.Context, order *models.Order) error {
	record := toOrderRecord(order)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *orderStore) UpdateStatus(ctx context.Context, tenantID, orderID string, status models.OrderStatus) error {
	res := s.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update order status: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *orderStore) ListOrders(ctx context.Context, tenantID string, from, to time.Time) ([]*models.Order, error) {
	var records []orderRecord
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, from.UTC(), to.UTC()).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*models.Order, 0, len(records))
	for i := range records {
		orders = append(orders, toOrderModel(&records[i]))
	}
	return orders, nil
}

func (s *orderStore) CountByStatus(ctx context.Context, tenantID string, from, to time.Time) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.WithContext(ctx).
		Model(&orderRecord{}).
		Select("status, COUNT(*) AS count").
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, from.UTC(), to.UTC()).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, r := range rows {
		counts[models.OrderStatus(r.Status)] = r.Count
	}
	return counts, nil
}

func toOrderRecord(order *models.Order) *orderRecord {
	record := &orderRecord{
		ID:                     order.ID,
		TenantID:               order.TenantID,
		CustomerID:             order.CustomerID,
		Status:                 string(order.Status),
		TotalAmount:            order.TotalAmount,
		PreparationTimeMinutes: order.PreparationTimeMinutes,
		CreatedAt:              order.CreatedAt.UTC(),
		Items:                  make([]orderItemRecord, 0, len(order.Items)),
	}
	if record.Status == "" {
		record.Status = string(models.OrderStatusPending)
	}
	for _, item := range order.Items {
		record.Items = append(record.Items, orderItemRecord{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return record
}

func toOrderModel(record *orderRecord) *models.Order {
	order := &models.Order{
		ID:                     record.ID,
		TenantID:               record.TenantID,
		CustomerID:             record.CustomerID,
		Status:                 models.OrderStatus(record.Status),
		TotalAmount:            record.TotalAmount,
		PreparationTimeMinutes: record.PreparationTimeMinutes,
		CreatedAt:              record.CreatedAt.UTC(),
		Items:                  make([]models.OrderItem, 0, len(record.Items)),
	}
	for _, item := range record.Items {
		order.Items = append(order.Items, models.OrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return order
}
