package domain

import (
	"strings"
	"time"
)

// Brand enumerates the storefront's product lines.
type Brand string

const (
	BrandNatura Brand = "natura"
	BrandAvon   Brand = "avon"
	BrandArbell Brand = "arbell"
)

// Category enumerates product categories.
type Category string

const (
	CategoryMaquillaje Category = "maquillaje"
	CategoryPerfumeria Category = "perfumeria"
	CategoryCuidados   Category = "cuidados"
	CategoryOtros      Category = "otros"
)

// ParseBrand normalizes and validates a brand value.
func ParseBrand(s string) (Brand, bool) {
	b := Brand(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BrandNatura, BrandAvon, BrandArbell:
		return b, true
	}
	return "", false
}

// ParseCategory normalizes and validates a category value.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryMaquillaje, CategoryPerfumeria, CategoryCuidados, CategoryOtros:
		return c, true
	}
	return "", false
}

// Product is a catalog entry. Writes are restricted to admin/developer;
// reads are public.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Image       string
	Brand       Brand
	Category    Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
