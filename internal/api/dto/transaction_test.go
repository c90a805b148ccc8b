package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/domain"
)

func sampleTransaction() *domain.Transaction {
	staff := "staff-1"
	notes := "called the customer"
	return &domain.Transaction{
		ID:            "id-1",
		TransactionID: "T1",
		Items:         []domain.TransactionItem{{Title: "Perfume", UnitPrice: 80, Quantity: 1, Subtotal: 80}},
		Amount:        80,
		Status:        domain.TransactionStatusApproved,
		StatusHistory: domain.StatusHistory[domain.TransactionStatus]{}.
			Append(domain.TransactionStatusPending, nil, "created", time.Now()).
			Append(domain.TransactionStatusApproved, &staff, "paid", time.Now()),
		Notes:       &notes,
		WebhookData: map[string]any{"raw": true},
	}
}

func TestOrderResponseHidesStaffFields(t *testing.T) {
	resp := NewOrderResponse(sampleTransaction())

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "changedBy")
	assert.NotContains(t, string(body), "webhookData")
	assert.NotContains(t, string(body), "staff-1")

	require.Len(t, resp.StatusHistory, 2)
	assert.Equal(t, domain.TransactionStatusApproved, resp.StatusHistory[1].Status)
	assert.Equal(t, "paid", resp.StatusHistory[1].Note)
}

func TestTransactionResponseKeepsStaffFields(t *testing.T) {
	resp := NewTransactionResponse(sampleTransaction())

	require.Len(t, resp.StatusHistory, 2)
	require.NotNil(t, resp.StatusHistory[1].ChangedBy)
	assert.Equal(t, "staff-1", *resp.StatusHistory[1].ChangedBy)
	assert.Equal(t, map[string]any{"raw": true}, resp.WebhookData)
}
