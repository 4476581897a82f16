package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"order-metrics/internal/shared/loggers"
)

// Subscriber is one connected dashboard. Its Send buffer is drained by the transport.
type Subscriber struct {
	ID           string
	ClientFamily string
	Send         chan []byte
}

func NewSubscriber(id, clientFamily string, bufferSize int) *Subscriber {
	return &Subscriber{ID: id, ClientFamily: clientFamily, Send: make(chan []byte, bufferSize)}
}

// Hub keeps tenant rooms and fans messages out to their members.
//
// Publish only enqueues onto a bounded queue; a single dispatcher goroutine (Run) encodes each
// message once and offers it to every member without blocking. A full queue or a full
// subscriber buffer drops the message for that recipient, which is counted and otherwise ignored.
type Hub struct {
	mu          sync.RWMutex
	rooms       map[string]map[*Subscriber]struct{}
	memberships map[*Subscriber]map[string]struct{}
	queue       chan *Message
	logger      loggers.Logger
}

func NewHub(queueSize int, logger loggers.Logger) *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Subscriber]struct{}),
		memberships: make(map[*Subscriber]map[string]struct{}),
		queue:       make(chan *Message, queueSize),
		logger:      loggers.Component(logger, "realtime_hub"),
	}
}

// Publish implements Broadcaster.
func (h *Hub) Publish(_ context.Context, msg *Message) {
	select {
	case h.queue <- msg:
		metricMessagesPublishedTotal.WithLabelValues(string(msg.Type), "local").Inc()
	default:
		metricMessagesDroppedTotal.WithLabelValues(dropQueueFull).Inc()
		h.logger.Debug().Str(loggers.FieldTenantID, msg.TenantID).Msg("dispatch queue full, dropping message")
	}
}

// Run dispatches queued messages until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info().Msg("realtime hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Msg("realtime hub stopped")
			return
		case msg := <-h.queue:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[msg.TenantID]
	if len(members) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		metricMessagesDroppedTotal.WithLabelValues(dropEncodeFailure).Inc()
		h.logger.Warn().Err(err).Str(loggers.FieldTenantID, msg.TenantID).Msg("failed to encode message")
		return
	}

	for sub := range members {
		select {
		case sub.Send <- data:
			metricDeliveriesTotal.WithLabelValues(string(msg.Type)).Inc()
		default:
			metricMessagesDroppedTotal.WithLabelValues(dropSlowConsumer).Inc()
		}
	}
}

// Join adds sub to the tenant's room. Joining twice is a no-op.
func (h *Hub) Join(tenantID string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[tenantID]; !ok {
		h.rooms[tenantID] = make(map[*Subscriber]struct{})
	}
	h.rooms[tenantID][sub] = struct{}{}

	if _, ok := h.memberships[sub]; !ok {
		h.memberships[sub] = make(map[string]struct{})
	}
	h.memberships[sub][tenantID] = struct{}{}
}

// Leave removes sub from the tenant's room.
func (h *Hub) Leave(tenantID string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(tenantID, sub)
}

// LeaveAll removes sub from every room. After it returns the hub no longer writes to sub.Send.
func (h *Hub) LeaveAll(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tenantID := range h.memberships[sub] {
		h.leaveLocked(tenantID, sub)
	}
	delete(h.memberships, sub)
}

func (h *Hub) leaveLocked(tenantID string, sub *Subscriber) {
	if members, ok := h.rooms[tenantID]; ok {
		delete(members, sub)
		if len(members) == 0 {
			delete(h.rooms, tenantID)
		}
	}
	if rooms, ok := h.memberships[sub]; ok {
		delete(rooms, tenantID)
		if len(rooms) == 0 {
			delete(h.memberships, sub)
		}
	}
}

// SubscriberCount returns the number of members in the tenant's room.
func (h *Hub) SubscriberCount(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tenantID])
}

// Attach accounts for a newly connected subscriber.
func (h *Hub) Attach(sub *Subscriber) {
	metricSubscribersConnected.WithLabelValues(sub.ClientFamily).Inc()
	h.logger.Debug().Str(loggers.FieldSubscriberID, sub.ID).Msg("subscriber connected")
}

// Detach removes a disconnecting subscriber from every room.
func (h *Hub) Detach(sub *Subscriber) {
	h.LeaveAll(sub)
	metricSubscribersConnected.WithLabelValues(sub.ClientFamily).Dec()
	h.logger.Debug().Str(loggers.FieldSubscriberID, sub.ID).Msg("subscriber disconnected")
}
