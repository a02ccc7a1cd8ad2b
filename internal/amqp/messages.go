package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"paisa/internal/core"
)

type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionDeleted EventType = "transaction.deleted"
)

var ErrInvalidEvent = errors.New("invalid transaction event")

// TransactionEvent announces a committed change to the transaction list.
// Created events carry the full transaction so consumers never need to
// read the store.
type TransactionEvent struct {
	MessageID     string            `json:"message_id"`
	Type          EventType         `json:"type"`
	TransactionID int64             `json:"transaction_id"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func NewCreatedEvent(tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		MessageID:     uuid.NewString(),
		Type:          EventTransactionCreated,
		TransactionID: tx.ID,
		Transaction:   &tx,
		Timestamp:     time.Now().UTC(),
	}
}

func NewDeletedEvent(id int64) *TransactionEvent {
	return &TransactionEvent{
		MessageID:     uuid.NewString(),
		Type:          EventTransactionDeleted,
		TransactionID: id,
		Timestamp:     time.Now().UTC(),
	}
}

// Validate checks the event is one the worker knows how to apply.
func (e *TransactionEvent) Validate() error {
	if e.TransactionID <= 0 {
		return fmt.Errorf("%w: missing transaction id", ErrInvalidEvent)
	}
	switch e.Type {
	case EventTransactionCreated:
		if e.Transaction == nil || e.Transaction.ID != e.TransactionID {
			return fmt.Errorf("%w: created event without matching transaction", ErrInvalidEvent)
		}
	case EventTransactionDeleted:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
