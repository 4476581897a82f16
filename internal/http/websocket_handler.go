package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"order-metrics/internal/realtime"
	"order-metrics/internal/shared/configs"
	"order-metrics/internal/shared/loggers"
	"order-metrics/internal/shared/ulid"

	"github.com/gorilla/websocket"
	"github.com/mileusna/useragent"
)

const (
	frameJoinTenant  = "join-tenant"
	frameLeaveTenant = "leave-tenant"

	maxFrameBytes = 4096
)

// controlFrame is what dashboards send to pick the tenants they watch.
type controlFrame struct {
	Type     string `json:"type"`
	TenantID string `json:"tenantId"`
}

// RoomRegistry is the part of the realtime hub the socket transport needs.
type RoomRegistry interface {
	Join(tenantID string, sub *realtime.Subscriber)
	Leave(tenantID string, sub *realtime.Subscriber)
	Attach(sub *realtime.Subscriber)
	Detach(sub *realtime.Subscriber)
}

type websocketHandler struct {
	rooms    RoomRegistry
	cfg      configs.RealtimeConfig
	upgrader websocket.Upgrader
}

func NewWebsocketHandler(rooms RoomRegistry, cfg configs.RealtimeConfig) http.Handler {
	h := &websocketHandler{rooms: rooms, cfg: cfg}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}

func (h *websocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := loggers.Ctx(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		logger.Debug().Err(err).Msg("websocket upgrade rejected")
		return
	}

	sub := realtime.NewSubscriber(ulid.NewULID(), clientFamily(r.UserAgent()), h.cfg.SubscriberBufferSize)
	h.rooms.Attach(sub)

	done := make(chan struct{})
	go h.writePump(conn, sub, done)
	h.readPump(conn, sub, logger)

	close(done)
	h.rooms.Detach(sub)
}

func (h *websocketHandler) readPump(conn *websocket.Conn, sub *realtime.Subscriber, logger *loggers.Logger) {
	defer conn.Close()

	pongWait := h.pongWait()
	conn.SetReadLimit(maxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug().Err(err).Str(loggers.FieldSubscriberID, sub.ID).Msg("websocket closed unexpectedly")
			}
			return
		}

		var frame controlFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			metricWebsocketFramesTotal.WithLabelValues("malformed").Inc()
			continue
		}
		tenantID := strings.TrimSpace(frame.TenantID)
		if tenantID == "" {
			metricWebsocketFramesTotal.WithLabelValues("malformed").Inc()
			continue
		}

		switch frame.Type {
		case frameJoinTenant:
			h.rooms.Join(tenantID, sub)
		case frameLeaveTenant:
			h.rooms.Leave(tenantID, sub)
		default:
			metricWebsocketFramesTotal.WithLabelValues("unknown").Inc()
			continue
		}
		metricWebsocketFramesTotal.WithLabelValues(frame.Type).Inc()
	}
}

func (h *websocketHandler) writePump(conn *websocket.Conn, sub *realtime.Subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.PingInterval())
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	writeTimeout := h.cfg.WriteTimeout()
	for {
		select {
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case data := <-sub.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// pongWait leaves room for one missed ping.
func (h *websocketHandler) pongWait() time.Duration {
	return 2*h.cfg.PingInterval() + h.cfg.WriteTimeout()
}

func clientFamily(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "unknown"
	}
	ua := useragent.Parse(userAgent)
	switch {
	case ua.Bot:
		return "bot"
	case ua.Name == "":
		return "other"
	default:
		return strings.ToLower(ua.Name)
	}
}
