package repositories_test

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var defaultLimits = repositories.PlacementLimits{Capacity: 1_000_000_000, Ceiling: 1_000_000_000, MaxAttempts: 5}

type backend struct {
	name     string
	products repositories.ProductRepository
	orders   repositories.OrderRepository
}

func newBackends(t *testing.T, limits repositories.PlacementLimits) []backend {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(context.Background(), database.DriverSQLite, dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mockProducts := repositories.NewMockProductRepository()
	return []backend{
		{
			name:     "gorm",
			products: repositories.NewGORMProductRepository(db, limits),
			orders:   repositories.NewGORMOrderRepository(db, limits),
		},
		{
			name:     "mock",
			products: mockProducts,
			orders:   repositories.NewMockOrderRepository(mockProducts, limits),
		},
	}
}

func sampleProduct(name string, category models.Category, units int) *models.Product {
	return &models.Product{
		Name:           name,
		Price:          10.0,
		Category:       category,
		Colors:         []string{"red", "blue"},
		Sizes:          []string{"M"},
		AvailableUnits: units,
	}
}

func sampleOrder(items ...models.OrderItem) *models.Order {
	return &models.Order{
		Total:  10,
		Status: models.OrderStatusPending,
		BuyerInfo: models.BuyerInfo{
			BuyerName:      "Ana",
			BuyerEmail:     "ana@example.com",
			BuyerPhone:     "3001234567",
			ShipCity:       "Bogota",
			ShipDepartment: "Cundinamarca",
			ShipAddress:    "Calle 1 # 2-3",
		},
		Items: items,
	}
}

func orderItem(productID string, quantity int) models.OrderItem {
	return models.OrderItem{
		Item:      models.Item{ProductID: productID, Quantity: quantity, Color: "red", Size: "M"},
		UnitPrice: 10,
	}
}

func TestProductRepository(t *testing.T) {
	for _, b := range newBackends(t, defaultLimits) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			shirt := sampleProduct("Shirt", models.CategoryUpperBody, 3)
			shirt.ID = "client-chosen"
			require.NoError(t, b.products.Create(ctx, shirt))
			assert.Equal(t, "000001", shirt.ID)

			skirt := sampleProduct("Skirt", models.CategorySkirts, 0)
			require.NoError(t, b.products.Create(ctx, skirt))
			assert.Equal(t, "000002", skirt.ID)

			got, err := b.products.GetByID(ctx, shirt.ID)
			require.NoError(t, err)
			assert.Equal(t, "Shirt", got.Name)
			assert.Equal(t, []string{"red", "blue"}, got.Colors)

			all, err := b.products.List(ctx, repositories.ProductFilter{})
			require.NoError(t, err)
			assert.Len(t, all, 2)

			available, err := b.products.List(ctx, repositories.ProductFilter{AvailableOnly: true})
			require.NoError(t, err)
			require.Len(t, available, 1)
			assert.Equal(t, shirt.ID, available[0].ID)

			skirts, err := b.products.List(ctx, repositories.ProductFilter{Category: models.CategorySkirts})
			require.NoError(t, err)
			require.Len(t, skirts, 1)
			assert.Equal(t, skirt.ID, skirts[0].ID)

			got.Price = 12.5
			got.AvailableUnits = 0
			require.NoError(t, b.products.Update(ctx, got))
			updated, err := b.products.GetByID(ctx, shirt.ID)
			require.NoError(t, err)
			assert.Equal(t, 12.5, updated.Price)
			assert.Equal(t, 0, updated.AvailableUnits)

			missing := sampleProduct("Ghost", models.CategoryPants, 1)
			missing.ID = "999999"
			err = b.products.Update(ctx, missing)
			assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

			require.NoError(t, b.products.Delete(ctx, skirt.ID))
			_, err = b.products.GetByID(ctx, skirt.ID)
			assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
			err = b.products.Delete(ctx, skirt.ID)
			assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

			n, err := b.products.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestOrderRepository_PlaceAndLifecycle(t *testing.T) {
	for _, b := range newBackends(t, defaultLimits) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			p := sampleProduct("Shirt", models.CategoryUpperBody, 5)
			require.NoError(t, b.products.Create(ctx, p))

			order := sampleOrder(orderItem(p.ID, 2), orderItem(p.ID, 1))
			require.NoError(t, b.orders.Place(ctx, order))
			assert.Equal(t, "000001", order.ID)

			stored, err := b.orders.GetByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusPending, stored.Status)
			assert.Equal(t, "Ana", stored.BuyerName)
			require.Len(t, stored.Items, 2)
			assert.NotEqual(t, stored.Items[0].ID, stored.Items[1].ID)

			product, err := b.products.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, product.AvailableUnits)

			second := sampleOrder(orderItem(p.ID, 1))
			require.NoError(t, b.orders.Place(ctx, second))
			assert.Equal(t, "000002", second.ID)

			list, err := b.orders.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "000001", list[0].ID)

			require.NoError(t, b.orders.UpdateStatus(ctx, order.ID, models.OrderStatusApproved))
			stored, err = b.orders.GetByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusApproved, stored.Status)

			err = b.orders.UpdateStatus(ctx, "424242", models.OrderStatusDenied)
			assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

			require.NoError(t, b.orders.Delete(ctx, order.ID))
			_, err = b.orders.GetByID(ctx, order.ID)
			assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
			err = b.orders.Delete(ctx, order.ID)
			assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
		})
	}
}

func TestOrderRepository_InsufficientStockRollsBack(t *testing.T) {
	for _, b := range newBackends(t, defaultLimits) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			plenty := sampleProduct("Shirt", models.CategoryUpperBody, 10)
			scarce := sampleProduct("Lipstick", models.CategoryMakeup, 1)
			require.NoError(t, b.products.Create(ctx, plenty))
			require.NoError(t, b.products.Create(ctx, scarce))

			err := b.orders.Place(ctx, sampleOrder(orderItem(plenty.ID, 3), orderItem(scarce.ID, 2)))
			assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))

			p, err := b.products.GetByID(ctx, plenty.ID)
			require.NoError(t, err)
			assert.Equal(t, 10, p.AvailableUnits)

			list, err := b.orders.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestOrderRepository_IDReusedAfterDeletion(t *testing.T) {
	for _, b := range newBackends(t, defaultLimits) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			p := sampleProduct("Shirt", models.CategoryUpperBody, 5)
			require.NoError(t, b.products.Create(ctx, p))

			first := sampleOrder(orderItem(p.ID, 1))
			require.NoError(t, b.orders.Place(ctx, first))
			require.Equal(t, "000001", first.ID)
			require.NoError(t, b.orders.Delete(ctx, first.ID))

			again := sampleOrder(orderItem(p.ID, 1))
			require.NoError(t, b.orders.Place(ctx, again))
			assert.Equal(t, "000001", again.ID)
		})
	}
}

func TestOrderRepository_Capacity(t *testing.T) {
	limits := repositories.PlacementLimits{Capacity: 1, Ceiling: 1_000_000_000, MaxAttempts: 3}
	for _, b := range newBackends(t, limits) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			p := sampleProduct("Shirt", models.CategoryUpperBody, 5)
			require.NoError(t, b.products.Create(ctx, p))

			require.NoError(t, b.orders.Place(ctx, sampleOrder(orderItem(p.ID, 1))))
			err := b.orders.Place(ctx, sampleOrder(orderItem(p.ID, 1)))
			assert.Equal(t, apperr.CapacityExceeded, apperr.KindOf(err))

			product, err := b.products.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 4, product.AvailableUnits)
		})
	}
}

func TestOrderRepository_ConcurrentPlacementsForLastUnits(t *testing.T) {
	for _, b := range newBackends(t, defaultLimits) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			p := sampleProduct("Shirt", models.CategoryUpperBody, 3)
			require.NoError(t, b.products.Create(ctx, p))

			const buyers = 6
			var wg sync.WaitGroup
			errs := make([]error, buyers)
			ids := make([]string, buyers)
			for i := 0; i < buyers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					order := sampleOrder(orderItem(p.ID, 1))
					errs[i] = b.orders.Place(ctx, order)
					ids[i] = order.ID
				}(i)
			}
			wg.Wait()

			placed := map[string]bool{}
			for i, err := range errs {
				if err == nil {
					assert.False(t, placed[ids[i]], "duplicate order id %s", ids[i])
					placed[ids[i]] = true
					continue
				}
				assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))
			}
			assert.Len(t, placed, 3)

			product, err := b.products.GetByID(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, product.AvailableUnits)
		})
	}
}
