package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"order-metrics/internal/shared/loggers"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const relayChannelPrefix = "realtime:tenant:"

// RedisRelay fans messages out across service instances.
//
// Publish hands the message to a bounded outbox; Run publishes the outbox to the tenant's
// Redis channel (realtime:tenant:{id}) and, at the same time, pattern-subscribes to every
// tenant channel and feeds what arrives into the local Hub. Every instance, including the
// sender, therefore delivers each message exactly once to its own subscribers.
type RedisRelay struct {
	client redis.UniversalClient
	hub    *Hub
	outbox chan *Message
	logger loggers.Logger
}

func NewRedisRelay(client redis.UniversalClient, hub *Hub, outboxSize int, logger loggers.Logger) *RedisRelay {
	return &RedisRelay{
		client: client,
		hub:    hub,
		outbox: make(chan *Message, outboxSize),
		logger: loggers.Component(logger, "realtime_relay"),
	}
}

// Publish implements Broadcaster.
func (r *RedisRelay) Publish(_ context.Context, msg *Message) {
	select {
	case r.outbox <- msg:
		metricMessagesPublishedTotal.WithLabelValues(string(msg.Type), "relay").Inc()
	default:
		metricMessagesDroppedTotal.WithLabelValues(dropQueueFull).Inc()
	}
}

// Supervise keeps the relay running until ctx is done. A failed Run, such as a pattern
// subscription Redis refused, is retried after restartDelay.
func (r *RedisRelay) Supervise(ctx context.Context, restartDelay time.Duration) {
	for {
		err := r.Run(ctx)
		if ctx.Err() != nil {
			return
		}

		metricRelayErrorsTotal.WithLabelValues("subscribe").Inc()
		r.logger.Error().Err(err).
			Dur(loggers.FieldDuration, restartDelay).
			Msg("realtime relay failed, restarting")

		timer := time.NewTimer(restartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Run relays until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, relayChannelPrefix+"*")
	// Wait for the subscription to be confirmed so nothing published after Run starts is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return pubsub.Close()
	})
	g.Go(func() error {
		r.publishLoop(gctx)
		return nil
	})
	g.Go(func() error {
		r.receiveLoop(gctx, pubsub.Channel())
		return nil
	})

	r.logger.Info().Msg("realtime relay started")
	err := g.Wait()
	r.logger.Info().Msg("realtime relay stopped")
	return err
}

func (r *RedisRelay) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-r.outbox:
			data, err := json.Marshal(msg)
			if err != nil {
				metricRelayErrorsTotal.WithLabelValues("encode").Inc()
				continue
			}
			if err := r.client.Publish(ctx, relayChannelPrefix+msg.TenantID, data).Err(); err != nil {
				metricRelayErrorsTotal.WithLabelValues("publish").Inc()
				r.logger.Warn().Err(err).Str(loggers.FieldTenantID, msg.TenantID).Msg("failed to relay message")
			}
		}
	}
}

func (r *RedisRelay) receiveLoop(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				metricRelayErrorsTotal.WithLabelValues("decode").Inc()
				continue
			}
			if msg.TenantID == "" {
				msg.TenantID = strings.TrimPrefix(m.Channel, relayChannelPrefix)
			}
			r.hub.Publish(ctx, &msg)
		}
	}
}
