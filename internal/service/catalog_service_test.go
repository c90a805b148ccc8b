package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

type fakeProductRepo struct {
	byID map[string]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: make(map[string]*domain.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	product.ID = uuid.NewString()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	clone := *product
	f.byID[product.ID] = &clone
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	if _, ok := f.byID[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *product
	f.byID[product.ID] = &clone
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) (*domain.Product, error) {
	product, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(f.byID, id)
	return product, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	product, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *product
	return &clone, nil
}

func (f *fakeProductRepo) List(_ context.Context, brand *domain.Brand, _ int) ([]domain.Product, error) {
	var result []domain.Product
	for _, product := range f.byID {
		if brand != nil && product.Brand != *brand {
			continue
		}
		result = append(result, *product)
	}
	return result, nil
}

func (f *fakeProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	return f.List(ctx, nil, 0)
}

func (f *fakeProductRepo) Search(_ context.Context, query string, _ int) ([]domain.Product, error) {
	needle := strings.ToLower(query)
	var result []domain.Product
	for _, product := range f.byID {
		haystack := strings.ToLower(product.Name + " " + product.Description + " " + string(product.Brand))
		if strings.Contains(haystack, needle) {
			result = append(result, *product)
		}
	}
	return result, nil
}

func newTestCatalog(t *testing.T) (*CatalogService, *fakeProductRepo) {
	t.Helper()
	repo := newFakeProductRepo()
	return NewCatalogService(repo, nil, zap.NewNop()), repo
}

func validProduct() ProductInput {
	return ProductInput{
		Name:     "Lipstick",
		Price:    12.5,
		Brand:    "Natura",
		Category: "MAQUILLAJE",
	}
}

func TestCatalogCreateNormalizesEnums(t *testing.T) {
	svc, _ := newTestCatalog(t)

	product, err := svc.Create(context.Background(), validProduct())
	require.NoError(t, err)
	assert.Equal(t, domain.BrandNatura, product.Brand)
	assert.Equal(t, domain.CategoryMaquillaje, product.Category)
	assert.NotEmpty(t, product.ID)
}

func TestCatalogCreateRejectsBadEnums(t *testing.T) {
	svc, _ := newTestCatalog(t)

	input := validProduct()
	input.Brand = "chanel"
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	input = validProduct()
	input.Category = "electronics"
	_, err = svc.Create(context.Background(), input)
	require.Error(t, err)

	input = validProduct()
	input.Price = -1
	_, err = svc.Create(context.Background(), input)
	require.Error(t, err)

	input = validProduct()
	input.Name = ""
	_, err = svc.Create(context.Background(), input)
	require.Error(t, err)
}

func TestCatalogListFiltersByBrand(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	avon := validProduct()
	avon.Name = "Perfume"
	avon.Brand = "avon"
	avon.Category = "perfumeria"
	_, err = svc.Create(ctx, avon)
	require.NoError(t, err)

	brand := "avon"
	products, err := svc.List(ctx, &brand, 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Perfume", products[0].Name)

	bogus := "chanel"
	_, err = svc.List(ctx, &bogus, 0)
	require.Error(t, err)
}

func TestCatalogSearchMinLength(t *testing.T) {
	svc, _ := newTestCatalog(t)

	_, err := svc.Search(context.Background(), "a", 0)
	require.Error(t, err)

	_, err = svc.Search(context.Background(), "  x ", 0)
	require.Error(t, err)
}

func TestCatalogUpdateAndDelete(t *testing.T) {
	svc, repo := newTestCatalog(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	input := validProduct()
	input.Name = "Matte Lipstick"
	updated, err := svc.Update(ctx, product.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Matte Lipstick", updated.Name)

	deleted, err := svc.Delete(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, deleted.ID)
	assert.Empty(t, repo.byID)

	_, err = svc.Delete(ctx, product.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
