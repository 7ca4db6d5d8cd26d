package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by ledger event messages.
const (
	ActionCreated  = "created"
	ActionDeleted  = "deleted"
	ActionImported = "imported"
)

// TransactionEventMessage announces a ledger mutation. It carries only
// ids; consumers fetch the full transaction from the store.
type TransactionEventMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(id, userID, action string) *TransactionEventMessage {
	return &TransactionEventMessage{
		ID:        id,
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
