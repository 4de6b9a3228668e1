package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

func TestCatalogService_AdminOnlyWrites(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Catalog.Create(f.ctx, f.user, &models.Product{Name: "Oil", Category: "grocery"})
	assert.ErrorIs(t, err, ErrForbidden)

	p, err := f.svc.Catalog.Create(f.ctx, f.admin, &models.Product{Name: "Oil", Category: "grocery", Price: 150, AvailableQuantity: 4})
	require.NoError(t, err)
	assert.False(t, p.ID.IsZero())
}

func TestCatalogService_UpdateInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Oil", 150, 140, 4)

	got, err := f.svc.Catalog.Get(f.ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 4, got.AvailableQuantity)

	stock := 9
	got, err = f.svc.Catalog.Update(f.ctx, f.admin, p.ID.Hex(), &models.ProductUpdate{AvailableQuantity: &stock})
	require.NoError(t, err)
	assert.Equal(t, 9, got.AvailableQuantity)

	_, err = f.svc.Catalog.Update(f.ctx, f.admin, p.ID.Hex(), &models.ProductUpdate{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, f.svc.Catalog.Delete(f.ctx, f.admin, p.ID.Hex()))
	_, err = f.svc.Catalog.Get(f.ctx, p.ID.Hex())
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCatalogService_InvalidID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Catalog.Get(f.ctx, "nope")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCatalogService_SortByMostSellerWithBadges(t *testing.T) {
	f := newFixture(t)
	apple := f.product(t, "Apple", 10, 0, 100)
	banana := f.product(t, "Banana", 10, 0, 100)
	cherry := f.product(t, "Cherry", 10, 0, 100)
	require.NoError(t, f.repos.MostSellers.Increment(f.ctx, banana.ID, "Banana", 7))
	require.NoError(t, f.repos.MostSellers.Increment(f.ctx, cherry.ID, "Cherry", 3))

	page, err := f.svc.Catalog.List(f.ctx, models.ProductQuery{Page: 1, PageSize: 2, SortBy: SortByMostSeller})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int64(2), page.TotalPages)
	require.Len(t, page.Data, 2)
	assert.Equal(t, banana.ID, page.Data[0].ID)
	assert.Equal(t, cherry.ID, page.Data[1].ID)
	assert.True(t, page.Data[0].MostSeller)

	page, err = f.svc.Catalog.List(f.ctx, models.ProductQuery{Page: 2, PageSize: 2, SortBy: SortByMostSeller})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, apple.ID, page.Data[0].ID)
	assert.False(t, page.Data[0].MostSeller)
}

func TestCatalogService_ListFilters(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Basmati Rice", 120, 100, 10)
	f.product(t, "Brown Bread", 45, 40, 10)

	page, err := f.svc.Catalog.List(f.ctx, models.ProductQuery{Page: 1, PageSize: 10, Search: "rice", SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Basmati Rice", page.Data[0].Name)
}
