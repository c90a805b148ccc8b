// Package cart implements the client cart contract: the cart itself lives on
// the buyer's device, and the functions here define how a well-behaved client
// (or the checkout endpoint validating one) treats it.
package cart

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/service"
)

// TTL is how long an item may sit in a cart before it is considered stale.
const TTL = 4 * time.Hour

// Item is one cart line. AddedAt renews every time the same product is added
// again, so active carts never expire out from under the buyer.
type Item struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand,omitempty"`
	UnitPrice float64   `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// Cart is an ordered list of items.
type Cart struct {
	Items []Item `json:"items"`
}

// Add merges a product into the cart. An existing line for the same product
// gains quantity and a fresh timestamp; otherwise a new line is appended.
func Add(cart Cart, item Item, now time.Time) Cart {
	item.AddedAt = now
	for i, existing := range cart.Items {
		if existing.ProductID == item.ProductID {
			items := append([]Item{}, cart.Items...)
			items[i].Quantity += item.Quantity
			items[i].AddedAt = now
			items[i].UnitPrice = item.UnitPrice
			return Cart{Items: items}
		}
	}
	return Cart{Items: append(append([]Item{}, cart.Items...), item)}
}

// PruneExpired returns the cart without items older than TTL. Items carrying
// no timestamp predate the expiry scheme and are stamped now instead of
// dropped. The input is never mutated.
func PruneExpired(cart Cart, now time.Time) Cart {
	cutoff := now.Add(-TTL)
	var kept []Item
	for _, item := range cart.Items {
		if item.AddedAt.IsZero() {
			item.AddedAt = now
			kept = append(kept, item)
			continue
		}
		if item.AddedAt.After(cutoff) {
			kept = append(kept, item)
		}
	}
	return Cart{Items: kept}
}

// Total computes the cart total from unit prices.
func Total(cart Cart) float64 {
	var total float64
	for _, item := range cart.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// CheckoutItems converts the cart into payment line items for the provider.
// Expired lines are dropped first.
func CheckoutItems(cart Cart, now time.Time) []service.PaymentItem {
	fresh := PruneExpired(cart, now)
	items := make([]service.PaymentItem, 0, len(fresh.Items))
	for _, item := range fresh.Items {
		items = append(items, service.PaymentItem{
			Title:       item.Name,
			Description: item.Brand,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	return items
}
