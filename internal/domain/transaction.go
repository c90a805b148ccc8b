package domain

import "time"

// TransactionStatus enumerates payment lifecycle states as reported by the
// payment provider. Any state may follow any state; the provider's vocabulary
// imposes no transition table and neither do we.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusInProcess TransactionStatus = "in_process"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusRejected  TransactionStatus = "rejected"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// ValidTransactionStatus reports membership in the six-value enum.
func ValidTransactionStatus(s TransactionStatus) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusInProcess, TransactionStatusApproved,
		TransactionStatusRejected, TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	}
	return false
}

// ShippingStatus tracks fulfillment, orthogonal to the payment status.
type ShippingStatus string

const (
	ShippingStatusPending    ShippingStatus = "pending"
	ShippingStatusPreparing  ShippingStatus = "preparing"
	ShippingStatusDispatched ShippingStatus = "dispatched"
	ShippingStatusInTransit  ShippingStatus = "in_transit"
	ShippingStatusDelivered  ShippingStatus = "delivered"
)

// ValidShippingStatus reports membership in the five-value shipping enum.
func ValidShippingStatus(s ShippingStatus) bool {
	switch s {
	case ShippingStatusPending, ShippingStatusPreparing, ShippingStatusDispatched,
		ShippingStatusInTransit, ShippingStatusDelivered:
		return true
	}
	return false
}

// CustomerInfo is a contact snapshot taken at purchase time. It is matched
// against the caller's email for guest checkouts later claimed by login.
type CustomerInfo struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// TransactionItem is a purchased line item. Subtotal is computed once at
// creation (unit_price * quantity) and never re-derived.
type TransactionItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// Transaction is the ledger's core entity: one purchase attempt with its
// full payment status history and shipping sub-state.
//
// Invariants:
//   - Status always equals the status of the last StatusHistory entry.
//   - StatusHistory only ever grows.
//   - Amount is the sum of item subtotals at creation time.
//   - TransactionID is globally unique and immutable.
type Transaction struct {
	ID            string
	TransactionID string
	PaymentID     *string
	UserID        *string
	CustomerInfo  CustomerInfo
	Items         []TransactionItem
	Amount        float64

	Status        TransactionStatus
	StatusHistory StatusHistory[TransactionStatus]

	ShippingStatus  *ShippingStatus
	TrackingNumber  *string
	ShippingHistory StatusHistory[ShippingStatus]

	PaymentMethod *string
	PaymentType   *string
	Notes         *string
	WebhookData   map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SumSubtotals computes the amount snapshot for a new transaction.
func SumSubtotals(items []TransactionItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal
	}
	return total
}
