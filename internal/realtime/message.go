package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-metrics/internal/models"

	"github.com/shopspring/decimal"
)

type MessageType string

const (
	MessageMetricsUpdate MessageType = "metrics_update"
	MessageOrderUpdate   MessageType = "order_update"
)

// Message is the envelope delivered to every subscriber of a tenant room.
//
// Example JSON:
//
//	{
//	  "type": "metrics_update",
//	  "tenantId": "T1",
//	  "timestamp": "2025-12-28T18:03:16Z",
//	  "data": {"ordersPerMinute": "0.05", "avgPreparationTime": 20, "totalOrders": 3, ...}
//	}
type Message struct {
	Type      MessageType     `json:"type"`
	TenantID  string          `json:"tenantId"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// OrderUpdate is the payload of an order_update message.
type OrderUpdate struct {
	OrderID     string             `json:"orderId"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	ItemCount   int64              `json:"itemCount"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func NewMetricsUpdate(tenantID string, snapshot *models.RollingSnapshot, now time.Time) (*Message, error) {
	return newMessage(MessageMetricsUpdate, tenantID, snapshot, now)
}

func NewOrderUpdate(tenantID string, update *OrderUpdate, now time.Time) (*Message, error) {
	return newMessage(MessageOrderUpdate, tenantID, update, now)
}

func newMessage(t MessageType, tenantID string, payload any, now time.Time) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	return &Message{Type: t, TenantID: tenantID, Timestamp: now.UTC(), Data: data}, nil
}

// Broadcaster delivers messages to the subscribers of the message's tenant.
// Delivery is best effort: Publish never blocks on slow subscribers and never fails the caller.
//
//go:generate mockgen -source=message.go -destination=./mocks/broadcaster_mock.go -package=mocks
type Broadcaster interface {
	Publish(ctx context.Context, msg *Message)
}
