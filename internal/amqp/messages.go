package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const (
	EventTransactionCreated  EventKind = "transaction.created"
	EventTransactionsDeleted EventKind = "transactions.deleted"
)

type EventKind string

// TransactionEvent announces a change to the transaction store. Created
// events carry the full transaction; delete events carry only ids.
type TransactionEvent struct {
	MessageID      string            `json:"messageId"`
	Kind           EventKind         `json:"kind"`
	Transaction    *core.Transaction `json:"transaction,omitempty"`
	TransactionIDs []string          `json:"transactionIds,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

func NewCreatedEvent(tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		MessageID:   uuid.NewString(),
		Kind:        EventTransactionCreated,
		Transaction: &tx,
		Timestamp:   time.Now(),
	}
}

func NewDeletedEvent(ids []string) *TransactionEvent {
	return &TransactionEvent{
		MessageID:      uuid.NewString(),
		Kind:           EventTransactionsDeleted,
		TransactionIDs: append([]string(nil), ids...),
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate rejects events a consumer cannot act on.
func (m *TransactionEvent) Validate() error {
	switch m.Kind {
	case EventTransactionCreated:
		if m.Transaction == nil || m.Transaction.ID == "" {
			return errors.New("created event without transaction")
		}
	case EventTransactionsDeleted:
		if len(m.TransactionIDs) == 0 {
			return errors.New("deleted event without ids")
		}
	default:
		return fmt.Errorf("unknown event kind %q", m.Kind)
	}
	return nil
}

// TransactionEventFromJSON decodes and validates an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
