package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusHistoryAppendGrowsMonotonically(t *testing.T) {
	now := time.Now()
	actor := "staff-1"

	var history StatusHistory[TransactionStatus]
	history = history.Append(TransactionStatusPending, nil, "created", now)
	history = history.Append(TransactionStatusApproved, &actor, "paid", now.Add(time.Minute))
	history = history.Append(TransactionStatusRefunded, &actor, "", now.Add(2*time.Minute))

	require.Len(t, history, 3)
	assert.Equal(t, TransactionStatusPending, history[0].Status)
	assert.Nil(t, history[0].ChangedBy)
	assert.Equal(t, "staff-1", *history[2].ChangedBy)

	last, ok := history.Last()
	require.True(t, ok)
	assert.Equal(t, TransactionStatusRefunded, last.Status)
}

func TestStatusHistoryLastEmpty(t *testing.T) {
	var history StatusHistory[ShippingStatus]
	_, ok := history.Last()
	assert.False(t, ok)
}

func TestStatusHistoryAppendDoesNotMutateReceiver(t *testing.T) {
	now := time.Now()
	base := StatusHistory[TransactionStatus]{}.Append(TransactionStatusPending, nil, "", now)

	_ = base.Append(TransactionStatusApproved, nil, "", now)
	assert.Len(t, base, 1)
}

func TestSumSubtotals(t *testing.T) {
	items := []TransactionItem{
		{Title: "A", UnitPrice: 10, Quantity: 2, Subtotal: 20},
		{Title: "B", UnitPrice: 5, Quantity: 1, Subtotal: 5},
	}
	assert.Equal(t, 25.0, SumSubtotals(items))
	assert.Equal(t, 0.0, SumSubtotals(nil))
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, ValidTransactionStatus(TransactionStatusInProcess))
	assert.False(t, ValidTransactionStatus("shipped"))
	assert.True(t, ValidShippingStatus(ShippingStatusInTransit))
	assert.False(t, ValidShippingStatus("approved"))

	brand, ok := ParseBrand("  NATURA ")
	assert.True(t, ok)
	assert.Equal(t, BrandNatura, brand)
	_, ok = ParseBrand("chanel")
	assert.False(t, ok)

	category, ok := ParseCategory("Perfumeria")
	assert.True(t, ok)
	assert.Equal(t, CategoryPerfumeria, category)
	_, ok = ParseCategory("tools")
	assert.False(t, ok)
}
