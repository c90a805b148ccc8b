package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/persistence"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

const (
	catalogCacheTTL       = 5 * time.Minute
	catalogCacheKeyAll    = "catalog:all"
	catalogCacheKeyPrefix = "catalog:brand:"
)

// ProductInput carries catalog write fields.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Image       string
	Brand       string
	Category    string
}

// CatalogService owns the product catalog. Public listings are served through
// a best-effort Redis cache; writes invalidate it.
type CatalogService struct {
	products repository.ProductRepository
	cache    *persistence.Redis
	logger   *zap.Logger
}

// NewCatalogService builds the service. The cache may be nil.
func NewCatalogService(products repository.ProductRepository, cache *persistence.Redis, logger *zap.Logger) *CatalogService {
	return &CatalogService{products: products, cache: cache, logger: logger}
}

func (s *CatalogService) validate(input ProductInput) (domain.Brand, domain.Category, error) {
	if input.Name == "" {
		return "", "", apperrors.NewValidationError("name is required", nil)
	}
	if input.Price < 0 {
		return "", "", apperrors.NewValidationError("price must be non-negative", nil)
	}
	brand, ok := domain.ParseBrand(input.Brand)
	if !ok {
		return "", "", apperrors.NewValidationError(
			fmt.Sprintf("invalid brand %q: must be natura, avon or arbell", input.Brand), nil)
	}
	category, ok := domain.ParseCategory(input.Category)
	if !ok {
		return "", "", apperrors.NewValidationError(
			fmt.Sprintf("invalid category %q: must be maquillaje, perfumeria, cuidados or otros", input.Category), nil)
	}
	return brand, category, nil
}

// Create adds a catalog entry.
func (s *CatalogService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	brand, category, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		Brand:       brand,
		Category:    category,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, brand)
	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("brand", string(brand)),
	)
	return product, nil
}

// Update replaces all writable fields of a product.
func (s *CatalogService) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	brand, category, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousBrand := existing.Brand

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Image = input.Image
	existing.Brand = brand
	existing.Category = category

	if err := s.products.Update(ctx, existing); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, err
	}

	s.invalidate(ctx, brand, previousBrand)
	return existing, nil
}

// Delete removes a product and returns the deleted entry.
func (s *CatalogService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, err
	}

	s.invalidate(ctx, deleted.Brand)
	s.logger.Info("product deleted", zap.String("product_id", id))
	return deleted, nil
}

// GetByID fetches a single product.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, err
	}
	return product, nil
}

// List returns the public catalog, optionally filtered by brand, served from
// cache when possible.
func (s *CatalogService) List(ctx context.Context, brandFilter *string, limit int) ([]domain.Product, error) {
	var brand *domain.Brand
	cacheKey := catalogCacheKeyAll
	if brandFilter != nil && *brandFilter != "" {
		parsed, ok := domain.ParseBrand(*brandFilter)
		if !ok {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("invalid brand %q: must be natura, avon or arbell", *brandFilter), nil)
		}
		brand = &parsed
		cacheKey = catalogCacheKeyPrefix + string(parsed)
	}

	// Only default-sized pages are cached; custom limits go to the database.
	cacheable := limit <= 0
	if cacheable {
		if data, ok := s.cache.GetCached(ctx, cacheKey); ok {
			var products []domain.Product
			if err := json.Unmarshal(data, &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.products.List(ctx, brand, limit)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if data, err := json.Marshal(products); err == nil {
			s.cache.SetCached(ctx, cacheKey, data, catalogCacheTTL)
		}
	}
	return products, nil
}

// Search matches products against name, description and brand. Queries
// shorter than two characters are rejected.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return nil, apperrors.NewValidationError("search query must be at least 2 characters", nil)
	}
	return s.products.Search(ctx, query, limit)
}

func (s *CatalogService) invalidate(ctx context.Context, brands ...domain.Brand) {
	keys := []string{catalogCacheKeyAll}
	seen := map[domain.Brand]struct{}{}
	for _, brand := range brands {
		if _, dup := seen[brand]; dup {
			continue
		}
		seen[brand] = struct{}{}
		keys = append(keys, catalogCacheKeyPrefix+string(brand))
	}
	s.cache.Invalidate(ctx, keys...)
}
