package events

import (
	"encoding/json"
	"testing"
	"time"

	"order-metrics/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receivedAt = time.Date(2025, 12, 28, 18, 3, 59, 0, time.UTC)

func TestDecodeOrderEvent_Valid(t *testing.T) {
	t.Parallel()

	payload := `{
		"tenantId": "T1",
		"orderId": "o-1",
		"eventType": "order_created",
		"timestamp": "2025-12-28T19:03:15+01:00",
		"customerId": "c-1",
		"totalAmount": 27.5,
		"items": [{"name": "Margherita", "quantity": 2}, {"name": "Tiramisu"}],
		"metadata": {"preparationTime": 18}
	}`

	event, err := DecodeOrderEvent([]byte(payload), receivedAt, 20)
	require.NoError(t, err)

	assert.Equal(t, "T1", event.TenantID)
	assert.Equal(t, "o-1", event.OrderID)
	assert.True(t, event.IsOrderCreated())
	assert.Equal(t, time.Date(2025, 12, 28, 18, 3, 15, 0, time.UTC), event.Timestamp)
	assert.Equal(t, "c-1", event.CustomerID)
	assert.True(t, decimal.RequireFromString("27.5").Equal(event.TotalAmount))
	assert.Equal(t, []OrderEventItem{{Name: "Margherita", Quantity: 2}, {Name: "Tiramisu", Quantity: 1}}, event.Items)
	assert.Equal(t, int64(18), event.Metadata.PreparationTime)
}

func TestDecodeOrderEvent_Defaults(t *testing.T) {
	t.Parallel()

	event, err := DecodeOrderEvent([]byte(`{"restaurantId":"R9","totalAmount":"12.00"}`), receivedAt, 20)
	require.NoError(t, err)

	assert.Equal(t, "R9", event.TenantID, "restaurantId is accepted as tenant alias")
	assert.Equal(t, EventTypeOrderCreated, event.EventType)
	assert.Equal(t, receivedAt, event.Timestamp)
	assert.Equal(t, int64(20), event.Metadata.PreparationTime)
	assert.Empty(t, event.Items)
	assert.Empty(t, event.CustomerID)
}

func TestDecodeOrderEvent_LegacyAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		payload      string
		wantAmount   string
		wantItems    []OrderEventItem
		wantPrepTime int64
	}{
		{
			name:         "total as amount",
			payload:      `{"tenantId":"T1","total":42.5}`,
			wantAmount:   "42.5",
			wantItems:    []OrderEventItem{},
			wantPrepTime: 20,
		},
		{
			name:         "totalAmount wins over total",
			payload:      `{"tenantId":"T1","totalAmount":10,"total":99}`,
			wantAmount:   "10",
			wantItems:    []OrderEventItem{},
			wantPrepTime: 20,
		},
		{
			name:         "itemName as item name",
			payload:      `{"tenantId":"T1","items":[{"itemName":"Pho","quantity":2}]}`,
			wantAmount:   "0",
			wantItems:    []OrderEventItem{{Name: "Pho", Quantity: 2}},
			wantPrepTime: 20,
		},
		{
			name:         "zero and negative quantity count as one",
			payload:      `{"tenantId":"T1","items":[{"name":"x","quantity":0},{"name":"y","quantity":-2}]}`,
			wantAmount:   "0",
			wantItems:    []OrderEventItem{{Name: "x", Quantity: 1}, {Name: "y", Quantity: 1}},
			wantPrepTime: 20,
		},
		{
			name:         "top-level preparationTime",
			payload:      `{"tenantId":"T1","preparationTime":35}`,
			wantAmount:   "0",
			wantItems:    []OrderEventItem{},
			wantPrepTime: 35,
		},
		{
			name:         "metadata preparationTime wins",
			payload:      `{"tenantId":"T1","preparationTime":35,"metadata":{"preparationTime":12}}`,
			wantAmount:   "0",
			wantItems:    []OrderEventItem{},
			wantPrepTime: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			event, err := DecodeOrderEvent([]byte(tt.payload), receivedAt, 20)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(event.TotalAmount), "amount %s", event.TotalAmount)
			assert.Equal(t, tt.wantItems, event.Items)
			assert.Equal(t, tt.wantPrepTime, event.Metadata.PreparationTime)
		})
	}
}

func TestDecodeOrderEvent_UnknownTypeIsDecoded(t *testing.T) {
	t.Parallel()

	event, err := DecodeOrderEvent([]byte(`{"tenantId":"T1","eventType":"order_refunded"}`), receivedAt, 20)
	require.NoError(t, err)
	assert.False(t, event.IsOrderCreated())
}

func TestDecodeOrderEvent_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"tenantId":`},
		{"missing tenant", `{"orderId":"o-1","totalAmount":10}`},
		{"blank tenant", `{"tenantId":"   "}`},
		{"negative amount", `{"tenantId":"T1","totalAmount":-1}`},
		{"bad amount", `{"tenantId":"T1","totalAmount":"abc"}`},
		{"bad timestamp", `{"tenantId":"T1","timestamp":"yesterday"}`},
		{"negative prep time", `{"tenantId":"T1","metadata":{"preparationTime":-5}}`},
		{"item without name", `{"tenantId":"T1","items":[{"quantity":1}]}`},
		{"negative total alias", `{"tenantId":"T1","total":-3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			event, err := DecodeOrderEvent([]byte(tt.payload), receivedAt, 20)
			assert.Nil(t, event)
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}

func TestOrderEvent_EncodesCanonicalShape(t *testing.T) {
	t.Parallel()

	event := &OrderEvent{
		TenantID:    "T1",
		OrderID:     "o-1",
		EventType:   EventTypeOrderCreated,
		Timestamp:   receivedAt,
		TotalAmount: decimal.RequireFromString("5"),
		Items:       []OrderEventItem{{Name: "Soup", Quantity: 1}},
		Metadata:    OrderEventMetadata{PreparationTime: 12},
	}
	raw, err := json.Marshal(event)
	require.NoError(t, err)

	decoded, err := DecodeOrderEvent(raw, time.Time{}, 20)
	require.NoError(t, err)
	assert.Equal(t, event.TenantID, decoded.TenantID)
	assert.Equal(t, event.Timestamp, decoded.Timestamp)
	assert.Equal(t, event.Items, decoded.Items)
	assert.Equal(t, int64(12), decoded.Metadata.PreparationTime)
}

func TestNewOrderCreatedEvent_RoundTrips(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 12, 28, 18, 3, 15, 0, time.FixedZone("ICT", 7*3600))
	order := &models.Order{
		ID:          "o-1",
		TenantID:    "T1",
		CustomerID:  "c1",
		Status:      models.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("27.50"),
		CreatedAt:   createdAt,
		Items: []models.OrderItem{
			{Name: "Margherita", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{Name: "Tiramisu", Quantity: 1, UnitPrice: decimal.RequireFromString("7.50")},
		},
	}

	event := NewOrderCreatedEvent(order, 20)
	assert.Equal(t, EventTypeOrderCreated, event.EventType)
	assert.Equal(t, createdAt.UTC(), event.Timestamp)
	assert.Equal(t, int64(20), event.Metadata.PreparationTime)

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	decoded, err := DecodeOrderEvent(payload, time.Now(), 99)
	require.NoError(t, err)

	assert.Equal(t, "T1", decoded.TenantID)
	assert.Equal(t, "o-1", decoded.OrderID)
	assert.True(t, decimal.RequireFromString("27.50").Equal(decoded.TotalAmount))
	assert.Equal(t, []OrderEventItem{{Name: "Margherita", Quantity: 2}, {Name: "Tiramisu", Quantity: 1}}, decoded.Items)
	assert.Equal(t, int64(20), decoded.Metadata.PreparationTime)
}
