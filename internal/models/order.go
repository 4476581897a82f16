package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Order is the persisted order record owned by the Order Store.
type Order struct {
	ID                     string          `json:"id"`
	TenantID               string          `json:"tenantId"`
	CustomerID             string          `json:"customerId,omitempty"`
	Status                 OrderStatus     `json:"status"`
	Items                  []OrderItem     `json:"items"`
	TotalAmount            decimal.Decimal `json:"totalAmount"`
	PreparationTimeMinutes int             `json:"preparationTime"`
	CreatedAt              time.Time       `json:"createdAt"`
}

type OrderItem struct {
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
