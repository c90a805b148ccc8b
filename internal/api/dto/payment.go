package dto

// CheckoutItem is one line of the checkout payload. Field names follow the
// provider's wire contract.
type CheckoutItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// CheckoutRequest starts a payment session.
type CheckoutRequest struct {
	Items    []CheckoutItem  `json:"items"`
	Customer CustomerPayload `json:"customer"`
}

// CustomerPayload is the contact snapshot sent with a checkout or webhook.
type CustomerPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CheckoutResponse returns where to redirect the buyer.
type CheckoutResponse struct {
	PaymentURL string `json:"payment_url"`
	PaymentID  string `json:"payment_id,omitempty"`
}

// WebhookItem is one purchased line as reported by the provider.
type WebhookItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// WebhookRequest is the provider notification body. transaction_id falls back
// to payment_id when absent.
type WebhookRequest struct {
	TransactionID string          `json:"transaction_id"`
	PaymentID     *string         `json:"payment_id"`
	UserID        *string         `json:"user_id"`
	Status        string          `json:"status"`
	Customer      CustomerPayload `json:"customer"`
	Items         []WebhookItem   `json:"items"`
	PaymentMethod *string         `json:"payment_method"`
	PaymentType   *string         `json:"payment_type"`
}

// CreateTestOrderRequest optionally overrides the synthetic order items.
type CreateTestOrderRequest struct {
	Items []CheckoutItem `json:"items"`
}

// PaymentStatusResponse is the local ledger state for a provider id.
type PaymentStatusResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}
