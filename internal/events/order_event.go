package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-metrics/internal/models"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypeOrderCreated EventType = "order_created"
)

// ErrMalformedEvent marks payloads that can never be aggregated, no matter how often they are retried.
var ErrMalformedEvent = errors.New("malformed order event")

// OrderEvent is published once per created order and keyed by tenant on the event log,
// so every event of a tenant is consumed in order by the same worker.
//
// Example JSON:
//
//	{
//	  "tenantId": "rest-42",
//	  "orderId": "01JC2Z7X9ZJ6N3M8W5Y0T4B1QH",
//	  "eventType": "order_created",
//	  "timestamp": "2025-12-28T18:03:15Z",
//	  "customerId": "cus-7",
//	  "totalAmount": "27.50",
//	  "items": [
//	    {"name": "Margherita", "quantity": 2},
//	    {"name": "Tiramisu"}
//	  ],
//	  "metadata": {"preparationTime": 18}
//	}
//
// In this example:
//   - the event lands in the 18:03 minute bucket, the 18:00 hour bucket and the 2025-12-28 day bucket
//   - "Tiramisu" has no quantity and counts as 1
//   - a missing metadata.preparationTime falls back to the configured default
type OrderEvent struct {
	TenantID    string             `json:"tenantId"`
	OrderID     string             `json:"orderId"`
	EventType   EventType          `json:"eventType"`
	Timestamp   time.Time          `json:"timestamp"`
	CustomerID  string             `json:"customerId,omitempty"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Items       []OrderEventItem   `json:"items"`
	Metadata    OrderEventMetadata `json:"metadata"`
}

type OrderEventItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type OrderEventMetadata struct {
	PreparationTime int64 `json:"preparationTime"`
}

func (e *OrderEvent) IsOrderCreated() bool {
	return e.EventType == EventTypeOrderCreated
}

// NewOrderCreatedEvent describes a persisted order as an order_created event.
// An order without a recorded preparation time carries defaultPrepTimeMinutes.
func NewOrderCreatedEvent(order *models.Order, defaultPrepTimeMinutes int64) *OrderEvent {
	event := &OrderEvent{
		TenantID:    order.TenantID,
		OrderID:     order.ID,
		EventType:   EventTypeOrderCreated,
		Timestamp:   order.CreatedAt.UTC(),
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		Items:       make([]OrderEventItem, 0, len(order.Items)),
		Metadata:    OrderEventMetadata{PreparationTime: int64(order.PreparationTimeMinutes)},
	}
	if event.Metadata.PreparationTime <= 0 {
		event.Metadata.PreparationTime = defaultPrepTimeMinutes
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, OrderEventItem{Name: item.Name, Quantity: item.Quantity})
	}
	return event
}

// wireOrderEvent tolerates the loose shapes older producers emit.
type wireOrderEvent struct {
	TenantID     string           `json:"tenantId"`
	RestaurantID string           `json:"restaurantId"`
	OrderID      string           `json:"orderId"`
	EventType    EventType        `json:"eventType"`
	Timestamp    *time.Time       `json:"timestamp"`
	CustomerID   string           `json:"customerId"`
	TotalAmount  *decimal.Decimal `json:"totalAmount"`
	Total        *decimal.Decimal `json:"total"`
	Items        []struct {
		Name     string `json:"name"`
		ItemName string `json:"itemName"`
		Quantity *int64 `json:"quantity"`
	} `json:"items"`
	PreparationTime *int64 `json:"preparationTime"`
	Metadata        struct {
		PreparationTime *int64 `json:"preparationTime"`
	} `json:"metadata"`
}

// DecodeOrderEvent parses and normalises a raw event payload.
// Missing timestamp falls back to receivedAt, a missing or non-positive item quantity
// counts as 1 and a missing or zero preparation time falls back to defaultPrepTimeMinutes.
// Legacy aliases are accepted: restaurantId for tenantId, total for totalAmount,
// itemName for items[].name and a top-level preparationTime for metadata.preparationTime.
// Every returned error wraps ErrMalformedEvent.
func DecodeOrderEvent(payload []byte, receivedAt time.Time, defaultPrepTimeMinutes int64) (*OrderEvent, error) {
	var w wireOrderEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	tenantID := strings.TrimSpace(w.TenantID)
	if tenantID == "" {
		tenantID = strings.TrimSpace(w.RestaurantID)
	}
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantId is required", ErrMalformedEvent)
	}

	event := &OrderEvent{
		TenantID:    tenantID,
		OrderID:     w.OrderID,
		EventType:   w.EventType,
		Timestamp:   receivedAt.UTC(),
		CustomerID:  strings.TrimSpace(w.CustomerID),
		TotalAmount: decimal.Zero,
		Items:       make([]OrderEventItem, 0, len(w.Items)),
		Metadata:    OrderEventMetadata{PreparationTime: defaultPrepTimeMinutes},
	}
	if event.EventType == "" {
		event.EventType = EventTypeOrderCreated
	}
	if w.Timestamp != nil && !w.Timestamp.IsZero() {
		event.Timestamp = w.Timestamp.UTC()
	}

	amount := w.TotalAmount
	if amount == nil {
		amount = w.Total
	}
	if amount != nil {
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: totalAmount must not be negative", ErrMalformedEvent)
		}
		event.TotalAmount = *amount
	}

	prep := w.Metadata.PreparationTime
	if prep == nil {
		prep = w.PreparationTime
	}
	if p := prep; p != nil {
		if *p < 0 {
			return nil, fmt.Errorf("%w: metadata.preparationTime must not be negative", ErrMalformedEvent)
		}
		if *p > 0 {
			event.Metadata.PreparationTime = *p
		}
	}

	for i, item := range w.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = strings.TrimSpace(item.ItemName)
		}
		if name == "" {
			return nil, fmt.Errorf("%w: items[%d].name is required", ErrMalformedEvent, i)
		}
		quantity := int64(1)
		if item.Quantity != nil && *item.Quantity > 0 {
			quantity = *item.Quantity
		}
		event.Items = append(event.Items, OrderEventItem{Name: name, Quantity: quantity})
	}

	return event, nil
}
