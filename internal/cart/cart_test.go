package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneExpiredDropsStaleItems(t *testing.T) {
	now := time.Now()
	c := Cart{Items: []Item{
		{ProductID: "p1", Name: "Fresh", AddedAt: now.Add(-time.Hour)},
		{ProductID: "p2", Name: "Stale", AddedAt: now.Add(-5 * time.Hour)},
		{ProductID: "p3", Name: "Borderline", AddedAt: now.Add(-TTL)},
	}}

	pruned := PruneExpired(c, now)
	require.Len(t, pruned.Items, 1)
	assert.Equal(t, "p1", pruned.Items[0].ProductID)

	// Input cart untouched.
	assert.Len(t, c.Items, 3)
}

func TestPruneExpiredStampsMissingTimestamps(t *testing.T) {
	now := time.Now()
	c := Cart{Items: []Item{{ProductID: "legacy", Name: "Old client"}}}

	pruned := PruneExpired(c, now)
	require.Len(t, pruned.Items, 1)
	assert.Equal(t, now, pruned.Items[0].AddedAt)
}

func TestAddRenewsExistingLine(t *testing.T) {
	start := time.Now()
	c := Add(Cart{}, Item{ProductID: "p1", Name: "Lipstick", UnitPrice: 10, Quantity: 1}, start)
	require.Len(t, c.Items, 1)
	assert.Equal(t, start, c.Items[0].AddedAt)

	later := start.Add(3 * time.Hour)
	c = Add(c, Item{ProductID: "p1", UnitPrice: 12, Quantity: 2}, later)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 12.0, c.Items[0].UnitPrice)
	assert.Equal(t, later, c.Items[0].AddedAt)

	// The renewed line survives a prune that would have expired the original.
	pruned := PruneExpired(c, start.Add(5*time.Hour))
	assert.Len(t, pruned.Items, 1)
}

func TestAddAppendsNewLine(t *testing.T) {
	now := time.Now()
	c := Add(Cart{}, Item{ProductID: "p1", Quantity: 1}, now)
	c = Add(c, Item{ProductID: "p2", Quantity: 1}, now)
	assert.Len(t, c.Items, 2)
}

func TestTotal(t *testing.T) {
	c := Cart{Items: []Item{
		{ProductID: "p1", UnitPrice: 10, Quantity: 2},
		{ProductID: "p2", UnitPrice: 5.5, Quantity: 1},
	}}
	assert.Equal(t, 25.5, Total(c))
}

func TestCheckoutItemsDropsExpired(t *testing.T) {
	now := time.Now()
	c := Cart{Items: []Item{
		{ProductID: "p1", Name: "Lipstick", Brand: "natura", UnitPrice: 10, Quantity: 2, AddedAt: now},
		{ProductID: "p2", Name: "Stale", UnitPrice: 99, Quantity: 1, AddedAt: now.Add(-6 * time.Hour)},
	}}

	items := CheckoutItems(c, now)
	require.Len(t, items, 1)
	assert.Equal(t, "Lipstick", items[0].Title)
	assert.Equal(t, "natura", items[0].Description)
	assert.Equal(t, 10.0, items[0].UnitPrice)
	assert.Equal(t, 2, items[0].Quantity)
}
