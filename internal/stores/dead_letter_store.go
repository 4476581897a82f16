package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-metrics/internal/shared/filestorages"
)

// DeadLetter is a payload the aggregator gave up on, with where it came from.
type DeadLetter struct {
	Topic      string    `json:"topic"`
	Partition  int       `json:"partition"`
	Offset     int64     `json:"offset"`
	Key        string    `json:"key"`
	Payload    string    `json:"payload"`
	Reason     string    `json:"reason"`
	ErrorCode  string    `json:"errorCode"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// DeadLetterStore parks malformed events for inspection.
//
// Letters are written create-once under dead-letters/{topic}/{partition}/{offset}.json,
// so a redelivered message that fails again does not overwrite or duplicate the first copy.
//
//go:generate mockgen -source=dead_letter_store.go -destination=./mocks/dead_letter_store_mock.go -package=mocks
type DeadLetterStore interface {
	Put(ctx context.Context, letter *DeadLetter) error
}

type deadLetterStore struct {
	fileStorage filestorages.FileStorage
	dir         string
}

func NewDeadLetterStore(fileStorage filestorages.FileStorage) DeadLetterStore {
	return &deadLetterStore{fileStorage: fileStorage, dir: "dead-letters"}
}

func (s *deadLetterStore) Put(ctx context.Context, letter *DeadLetter) error {
	data, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter: %w", err)
	}

	err = s.fileStorage.Create(ctx, s.key(letter), bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, filestorages.ErrFileAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to put dead letter: %w", err)
	}
	return nil
}

func (s *deadLetterStore) key(letter *DeadLetter) string {
	return fmt.Sprintf("%s/%s/%d/%d.json", s.dir, letter.Topic, letter.Partition, letter.Offset)
}
