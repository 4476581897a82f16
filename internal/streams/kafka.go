package streams

import (
	"context"
	"time"

	"order-metrics/internal/shared/configs"

	"github.com/segmentio/kafka-go"
)

// EventWriter is the producer side of the event log.
//
//go:generate mockgen -source=kafka.go -destination=./mocks/kafka_mock.go -package=mocks
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventReader is the consumer-group side of the event log. Offsets are committed
// explicitly, one message at a time, after the message has been handled.
type EventReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns a writer that hashes the message key, so every event of a
// tenant lands on the same partition.
func NewKafkaWriter(cfg configs.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           time.Duration(cfg.BatchTimeMs) * time.Millisecond,
		WriteTimeout:           time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
}

// NewKafkaReaderFactory returns a constructor for group readers. The consumer opens a
// fresh reader for every subscription attempt.
func NewKafkaReaderFactory(cfg configs.KafkaConfig) func() EventReader {
	return func() EventReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Brokers,
			Topic:          cfg.Topic,
			GroupID:        cfg.GroupID,
			MinBytes:       cfg.MinBytes,
			MaxBytes:       cfg.MaxBytes,
			MaxWait:        time.Duration(cfg.MaxWaitMs) * time.Millisecond,
			StartOffset:    kafka.FirstOffset,
			CommitInterval: 0,
		})
	}
}
