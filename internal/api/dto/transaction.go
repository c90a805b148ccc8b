package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
)

// UpdateStatusRequest is the staff status transition payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateShippingRequest updates shipping status and/or tracking number.
type UpdateShippingRequest struct {
	ShippingStatus *string `json:"shippingStatus"`
	TrackingNumber *string `json:"trackingNumber"`
	Note           string  `json:"note"`
}

// UpdateNotesRequest replaces the staff notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// TransactionResponse is the staff view of a ledger entry, raw webhook
// payload included.
type TransactionResponse struct {
	ID              string                                          `json:"id"`
	TransactionID   string                                          `json:"transactionId"`
	PaymentID       *string                                         `json:"paymentId,omitempty"`
	UserID          *string                                         `json:"userId,omitempty"`
	CustomerInfo    domain.CustomerInfo                             `json:"customerInfo"`
	Items           []domain.TransactionItem                        `json:"items"`
	Amount          float64                                         `json:"amount"`
	Status          domain.TransactionStatus                        `json:"status"`
	StatusHistory   domain.StatusHistory[domain.TransactionStatus]  `json:"statusHistory"`
	ShippingStatus  *domain.ShippingStatus                          `json:"shippingStatus,omitempty"`
	TrackingNumber  *string                                         `json:"trackingNumber,omitempty"`
	ShippingHistory domain.StatusHistory[domain.ShippingStatus]     `json:"shippingHistory"`
	PaymentMethod   *string                                         `json:"paymentMethod,omitempty"`
	PaymentType     *string                                         `json:"paymentType,omitempty"`
	Notes           *string                                         `json:"notes,omitempty"`
	WebhookData     map[string]any                                  `json:"webhookData,omitempty"`
	CreatedAt       time.Time                                       `json:"createdAt"`
	UpdatedAt       time.Time                                       `json:"updatedAt"`
}

// OrderStatusEntry is one buyer-visible history step. The acting staff id is
// never exposed to buyers.
type OrderStatusEntry[S ~string] struct {
	Status    S         `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	Note      string    `json:"note,omitempty"`
}

// OrderResponse is the buyer view: same entry without the raw webhook payload,
// staff notes or history actor ids.
type OrderResponse struct {
	ID              string                                       `json:"id"`
	TransactionID   string                                       `json:"transactionId"`
	Items           []domain.TransactionItem                     `json:"items"`
	Amount          float64                                      `json:"amount"`
	Status          domain.TransactionStatus                     `json:"status"`
	StatusHistory   []OrderStatusEntry[domain.TransactionStatus] `json:"statusHistory"`
	ShippingStatus  *domain.ShippingStatus                       `json:"shippingStatus,omitempty"`
	TrackingNumber  *string                                      `json:"trackingNumber,omitempty"`
	ShippingHistory []OrderStatusEntry[domain.ShippingStatus]    `json:"shippingHistory"`
	CreatedAt       time.Time                                    `json:"createdAt"`
}

// TransactionListResponse is one admin ledger page.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Skip         int                   `json:"skip"`
	HasMore      bool                  `json:"hasMore"`
}

// StatusTallyResponse is a per-status aggregate row.
type StatusTallyResponse struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// StatsResponse is the admin dashboard aggregate.
type StatsResponse struct {
	Total          int64                                            `json:"total"`
	TotalAmount    float64                                          `json:"totalAmount"`
	ApprovedCount  int64                                            `json:"approvedCount"`
	ApprovedAmount float64                                          `json:"approvedAmount"`
	ByStatus       map[domain.TransactionStatus]StatusTallyResponse `json:"byStatus"`
	Recent         []TransactionResponse                            `json:"recent"`
}

// MyOrdersResponse is the buyer order history.
type MyOrdersResponse struct {
	Orders   []OrderResponse                  `json:"orders"`
	Total    int64                            `json:"total"`
	ByStatus map[domain.TransactionStatus]int `json:"byStatus"`
}

// NewTransactionResponse maps a ledger entry for staff consumers.
func NewTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              txn.ID,
		TransactionID:   txn.TransactionID,
		PaymentID:       txn.PaymentID,
		UserID:          txn.UserID,
		CustomerInfo:    txn.CustomerInfo,
		Items:           txn.Items,
		Amount:          txn.Amount,
		Status:          txn.Status,
		StatusHistory:   txn.StatusHistory,
		ShippingStatus:  txn.ShippingStatus,
		TrackingNumber:  txn.TrackingNumber,
		ShippingHistory: txn.ShippingHistory,
		PaymentMethod:   txn.PaymentMethod,
		PaymentType:     txn.PaymentType,
		Notes:           txn.Notes,
		WebhookData:     txn.WebhookData,
		CreatedAt:       txn.CreatedAt,
		UpdatedAt:       txn.UpdatedAt,
	}
}

// NewTransactionResponses maps a slice for staff consumers.
func NewTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(txns))
	for i := range txns {
		result[i] = NewTransactionResponse(&txns[i])
	}
	return result
}

func newOrderHistory[S ~string](history domain.StatusHistory[S]) []OrderStatusEntry[S] {
	entries := make([]OrderStatusEntry[S], len(history))
	for i, entry := range history {
		entries[i] = OrderStatusEntry[S]{Status: entry.Status, ChangedAt: entry.ChangedAt, Note: entry.Note}
	}
	return entries
}

// NewOrderResponse maps a ledger entry for its buyer.
func NewOrderResponse(txn *domain.Transaction) OrderResponse {
	return OrderResponse{
		ID:              txn.ID,
		TransactionID:   txn.TransactionID,
		Items:           txn.Items,
		Amount:          txn.Amount,
		Status:          txn.Status,
		StatusHistory:   newOrderHistory(txn.StatusHistory),
		ShippingStatus:  txn.ShippingStatus,
		TrackingNumber:  txn.TrackingNumber,
		ShippingHistory: newOrderHistory(txn.ShippingHistory),
		CreatedAt:       txn.CreatedAt,
	}
}

// NewStatsResponse maps the service aggregate.
func NewStatsResponse(stats *service.StatsResult) StatsResponse {
	byStatus := make(map[domain.TransactionStatus]StatusTallyResponse, len(stats.ByStatus))
	for status, tally := range stats.ByStatus {
		byStatus[status] = StatusTallyResponse{Count: tally.Count, Amount: tally.Amount}
	}
	return StatsResponse{
		Total:          stats.Total,
		TotalAmount:    stats.TotalAmount,
		ApprovedCount:  stats.ApprovedCount,
		ApprovedAmount: stats.ApprovedAmount,
		ByStatus:       byStatus,
		Recent:         NewTransactionResponses(stats.Recent),
	}
}

// NewMyOrdersResponse maps the buyer history aggregate.
func NewMyOrdersResponse(result *service.MyOrdersResult) MyOrdersResponse {
	orders := make([]OrderResponse, len(result.Orders))
	for i := range result.Orders {
		orders[i] = NewOrderResponse(&result.Orders[i])
	}
	return MyOrdersResponse{Orders: orders, Total: result.Total, ByStatus: result.ByStatus}
}
