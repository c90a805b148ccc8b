package events

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTransactionCreated       EventType = "transaction_created"
	EventTransactionStatusChanged EventType = "transaction_status_changed"
	EventShippingUpdated          EventType = "shipping_updated"
)

// Event represents a domain event emitted by the ledger. ActorID is nil for
// webhook-driven changes.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	TransactionID string      `json:"transaction_id"`
	ActorID       *string     `json:"actor_id,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// TransactionCreatedPayload payload.
type TransactionCreatedPayload struct {
	Status        domain.TransactionStatus `json:"status"`
	Amount        float64                  `json:"amount"`
	CustomerEmail string                   `json:"customer_email,omitempty"`
	ItemCount     int                      `json:"item_count"`
}

// TransactionStatusChangedPayload payload.
type TransactionStatusChangedPayload struct {
	OldStatus domain.TransactionStatus `json:"old_status"`
	NewStatus domain.TransactionStatus `json:"new_status"`
	Note      string                   `json:"note,omitempty"`
}

// ShippingUpdatedPayload payload.
type ShippingUpdatedPayload struct {
	ShippingStatus *domain.ShippingStatus `json:"shipping_status,omitempty"`
	TrackingNumber *string                `json:"tracking_number,omitempty"`
	Note           string                 `json:"note,omitempty"`
}
