package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartFixture struct {
	cart     *services.CartService
	products *repositories.MockProductRepository
	orders   *repositories.MockOrderRepository
	p1       *models.Product
}

func newCartFixture(t *testing.T, fees services.FeeLookup) *cartFixture {
	t.Helper()
	limits := repositories.PlacementLimits{Capacity: 1_000_000_000, Ceiling: 1_000_000_000, MaxAttempts: 1}
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository(products, limits)

	p1 := &models.Product{
		Name:           "P1",
		Price:          10.0,
		Category:       models.CategoryUpperBody,
		Colors:         []string{"red", "blue"},
		Sizes:          []string{"M", "L"},
		AvailableUnits: 5,
	}
	require.NoError(t, products.Create(context.Background(), p1))

	orderService := services.NewOrderService(orders, fees, nil, zap.NewNop())
	return &cartFixture{
		cart:     services.NewCartService(session.NewMemoryStore(time.Hour), products, orderService, zap.NewNop()),
		products: products,
		orders:   orders,
		p1:       p1,
	}
}

func (f *cartFixture) add(t *testing.T, sid string, quantity int, color, size string) (*models.Cart, error) {
	t.Helper()
	return f.cart.AddItem(context.Background(), sid, services.AddItemRequest{
		ProductID: f.p1.ID, Quantity: quantity, Color: color, Size: size,
	})
}

func TestCartService_AddItemMergesUpToStock(t *testing.T) {
	f := newCartFixture(t, fixedFees{})

	_, err := f.add(t, "s1", 2, "red", "M")
	require.NoError(t, err)
	cart, err := f.add(t, "s1", 3, "red", "M")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 50.0, cart.Total())

	_, err = f.add(t, "s1", 1, "red", "M")
	assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))

	cart, err = f.cart.GetCart(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, cart.Total())
}

func TestCartService_AddItemChecksProductAndVariants(t *testing.T) {
	f := newCartFixture(t, fixedFees{})
	ctx := context.Background()

	_, err := f.cart.AddItem(ctx, "s1", services.AddItemRequest{ProductID: "424242", Quantity: 1})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = f.add(t, "s1", 1, "green", "M")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = f.add(t, "s1", 1, "red", "XXL")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = f.add(t, "s1", 0, "red", "M")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	cart, err := f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	f := newCartFixture(t, fixedFees{})

	_, err := f.add(t, "s1", 2, "red", "M")
	require.NoError(t, err)

	other, err := f.cart.GetCart(context.Background(), "s2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestCartService_ChangeQuantityAndRemove(t *testing.T) {
	f := newCartFixture(t, fixedFees{})
	ctx := context.Background()
	key := models.ItemKey{ProductID: f.p1.ID, Color: "red", Size: "M"}

	_, err := f.add(t, "s1", 2, "red", "M")
	require.NoError(t, err)

	cart, err := f.cart.ChangeQuantity(ctx, "s1", key, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.TotalQuantity())

	_, err = f.cart.ChangeQuantity(ctx, "s1", key, -3)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = f.cart.ChangeQuantity(ctx, "s1", key, 3)
	assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))

	cart, err = f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, cart.TotalQuantity())

	cart, err = f.cart.RemoveItem(ctx, "s1", key)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	_, err = f.cart.RemoveItem(ctx, "s1", key)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCartService_ChangeQuantityUsesCurrentPrice(t *testing.T) {
	f := newCartFixture(t, fixedFees{})
	ctx := context.Background()

	_, err := f.add(t, "s1", 1, "red", "M")
	require.NoError(t, err)

	repriced := *f.p1
	repriced.Price = 12.5
	require.NoError(t, f.products.Update(ctx, &repriced))

	cart, err := f.cart.ChangeQuantity(ctx, "s1", models.ItemKey{ProductID: f.p1.ID, Color: "red", Size: "M"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cart.Total())
}

func TestCartService_PlaceOrderClearsCartAndTakesStock(t *testing.T) {
	f := newCartFixture(t, fixedFees{fee: 4})
	ctx := context.Background()

	_, err := f.add(t, "s1", 2, "red", "M")
	require.NoError(t, err)
	_, err = f.add(t, "s1", 1, "blue", "L")
	require.NoError(t, err)

	order, err := f.cart.PlaceOrder(ctx, "s1", validBuyer())
	require.NoError(t, err)
	assert.Equal(t, "000001", order.ID)
	assert.Equal(t, 34.0, order.Total)

	cart, err := f.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	product, err := f.products.GetByID(ctx, f.p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, product.AvailableUnits)

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestCartService_FailedPlacementKeepsCart(t *testing.T) {
	ctx := context.Background()

	t.Run("fee table unreadable", func(t *testing.T) {
		f := newCartFixture(t, fixedFees{err: apperr.New(apperr.Persistence, "delivery.lookup", "unreadable")})
		_, err := f.add(t, "s1", 2, "red", "M")
		require.NoError(t, err)

		_, err = f.cart.PlaceOrder(ctx, "s1", validBuyer())
		assert.Equal(t, apperr.Persistence, apperr.KindOf(err))

		cart, err := f.cart.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 2, cart.TotalQuantity())
	})

	t.Run("stock sold elsewhere", func(t *testing.T) {
		f := newCartFixture(t, fixedFees{})
		_, err := f.add(t, "s1", 4, "red", "M")
		require.NoError(t, err)
		_, err = f.add(t, "s2", 3, "red", "M")
		require.NoError(t, err)

		_, err = f.cart.PlaceOrder(ctx, "s2", validBuyer())
		require.NoError(t, err)

		_, err = f.cart.PlaceOrder(ctx, "s1", validBuyer())
		assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))

		cart, err := f.cart.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 4, cart.TotalQuantity())
	})

	t.Run("invalid buyer", func(t *testing.T) {
		f := newCartFixture(t, fixedFees{})
		_, err := f.add(t, "s1", 1, "red", "M")
		require.NoError(t, err)

		_, err = f.cart.PlaceOrder(ctx, "s1", models.BuyerInfo{})
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))

		cart, err := f.cart.GetCart(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, cart.IsEmpty())
	})
}

func TestCartService_ConcurrentAddsOnOneSession(t *testing.T) {
	f := newCartFixture(t, fixedFees{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.add(t, "s1", 1, "red", "M")
		}()
	}
	wg.Wait()

	cart, err := f.cart.GetCart(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 5, cart.TotalQuantity())
}

func TestCartService_Clear(t *testing.T) {
	f := newCartFixture(t, fixedFees{})
	_, err := f.add(t, "s1", 1, "red", "M")
	require.NoError(t, err)

	require.NoError(t, f.cart.Clear(context.Background(), "s1"))
	cart, err := f.cart.GetCart(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

// gatedProducts holds GetByID until release is closed.
type gatedProducts struct {
	repositories.ProductRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedProducts) GetByID(ctx context.Context, id string) (*models.Product, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.ProductRepository.GetByID(ctx, id)
}

func TestCartService_AddItemReadsProductUnderSessionLock(t *testing.T) {
	f := newCartFixture(t, fixedFees{})
	gated := &gatedProducts{ProductRepository: f.products, entered: make(chan struct{}), release: make(chan struct{})}
	carts := services.NewCartService(session.NewMemoryStore(time.Hour), gated, nil, zap.NewNop())
	ctx := context.Background()

	addDone := make(chan error, 1)
	go func() {
		_, err := carts.AddItem(ctx, "s1", services.AddItemRequest{ProductID: f.p1.ID, Quantity: 2, Color: "red", Size: "M"})
		addDone <- err
	}()
	<-gated.entered

	readDone := make(chan *models.Cart, 1)
	go func() {
		cart, err := carts.GetCart(ctx, "s1")
		assert.NoError(t, err)
		readDone <- cart
	}()

	select {
	case <-readDone:
		t.Fatal("cart was read while the product lookup of an add was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)
	require.NoError(t, <-addDone)
	cart := <-readDone
	assert.Equal(t, 2, cart.TotalQuantity())
}
