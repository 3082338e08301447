package market

import (
	"encoding/json"
	"time"
)

const (
	EventNoteListed    = "NoteListed"
	EventNotePurchased = "NotePurchased"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // note id
	Payload       json.RawMessage `json:"payload"`
}

type NoteListedPayload struct {
	NoteID int64  `json:"note_id"`
	Seller string `json:"seller"`
	Price  int    `json:"price"`
}

type NotePurchasedPayload struct {
	NoteID   int64  `json:"note_id"`
	Buyer    string `json:"buyer"`
	Seller   string `json:"seller"`
	SellerID int64  `json:"seller_id"`
	Amount   int    `json:"amount"`
}
