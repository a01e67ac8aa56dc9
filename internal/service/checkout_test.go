package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
	"github.com/al-shaimon/zkart-backend/internal/dto"
	"github.com/al-shaimon/zkart-backend/internal/model"
)

func TestCreateOrderSnapshotsPriceAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedCustomer(t, f.db, "buyer@example.com")
	shop := seedShop(t, f.db, "vendor@example.com")
	product := seedProduct(t, f.db, shop.ID, 40, 5)

	_, err := f.cart.AddItem(ctx, "buyer@example.com", &dto.AddToCartRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	resp, err := f.checkout.CreateOrder(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.NotNil(t, resp.Order)
	assert.NotEmpty(t, resp.ClientSecret)

	assert.Equal(t, model.OrderPending, resp.Order.Status)
	assert.Equal(t, model.PaymentPending, resp.Order.PaymentStatus)
	assert.Equal(t, 80.0, resp.Order.TotalAmount)
	assert.Equal(t, int64(8000), f.gateway.lastAmount.Load())

	// stock decremented by exactly the ordered quantity
	assert.Equal(t, 3, reloadProduct(t, f.db, product.ID).Stock)

	// cart is gone; a new one can start right away
	assert.Zero(t, countRows(t, f.db, &model.Cart{}))
	assert.Zero(t, countRows(t, f.db, &model.CartItem{}))

	// later price edits do not leak into the persisted snapshot
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", product.ID).Update("price", 99.0).Error)

	order := reloadOrder(t, f.db, resp.Order.ID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 40.0, order.Items[0].Price)
	assert.Equal(t, 80.0, order.TotalAmount)
}

func TestCreateOrderAppliesStoredDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedCustomer(t, f.db, "buyer@example.com")
	shop := seedShop(t, f.db, "vendor@example.com")
	product := seedProduct(t, f.db, shop.ID, 100, 5)
	coupon := seedCoupon(t, f.db, &model.Coupon{
		Code:      "SAVE20",
		ShopID:    shop.ID,
		Discount:  20,
		ValidFrom: time.Now().Add(-time.Hour),
		IsActive:  true,
	})

	_, err := f.cart.AddItem(ctx, "buyer@example.com", &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.coupon.Apply(ctx, "SAVE20", "buyer@example.com")
	require.NoError(t, err)

	resp, err := f.checkout.CreateOrder(ctx, "buyer@example.com")
	require.NoError(t, err)

	assert.Equal(t, 80.0, resp.Order.TotalAmount)
	assert.Equal(t, 20.0, resp.Order.Discount)
	require.NotNil(t, resp.Order.CouponID)
	assert.Equal(t, coupon.ID, *resp.Order.CouponID)
	assert.Equal(t, int64(8000), f.gateway.lastAmount.Load())

	// redemption counter ticks up
	var reloaded model.Coupon
	require.NoError(t, f.db.First(&reloaded, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, reloaded.UsageCount)
}

func TestCreateOrderOutOfStockRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedCustomer(t, f.db, "buyer@example.com")
	shop := seedShop(t, f.db, "vendor@example.com")
	product := seedProduct(t, f.db, shop.ID, 10, 5)

	_, err := f.cart.AddItem(ctx, "buyer@example.com", &dto.AddToCartRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	// stock drops to one unit after the item went into the cart
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", product.ID).Update("stock", 1).Error)

	_, err = f.checkout.CreateOrder(ctx, "buyer@example.com")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Status)

	// no partial progress: stock, cart, order table all untouched
	assert.Equal(t, 1, reloadProduct(t, f.db, product.ID).Stock)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Cart{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &model.CartItem{}))
	assert.Zero(t, countRows(t, f.db, &model.Order{}))
	assert.Zero(t, countRows(t, f.db, &model.OrderItem{}))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := seedCustomer(t, f.db, "buyer@example.com")
	shop := seedShop(t, f.db, "vendor@example.com")

	// a bare cart row with no items
	require.NoError(t, f.db.Create(&model.Cart{CustomerID: customer.ID, ShopID: shop.ID}).Error)

	_, err := f.checkout.CreateOrder(ctx, "buyer@example.com")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Cart is empty", appErr.Message)
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedCustomer(t, f.db, "first@example.com")
	seedCustomer(t, f.db, "second@example.com")
	shop := seedShop(t, f.db, "vendor@example.com")
	product := seedProduct(t, f.db, shop.ID, 10, 1)

	_, err := f.cart.AddItem(ctx, "first@example.com", &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "second@example.com", &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, email := range []string{"first@example.com", "second@example.com"} {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			_, results[i] = f.checkout.CreateOrder(ctx, email)
		}(i, email)
	}
	wg.Wait()

	succeeded := 0
	outOfStock := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if appErr, ok := apperror.As(err); ok && appErr.Status == 400 {
			outOfStock++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one checkout wins the last unit")
	assert.Equal(t, 1, outOfStock, "the loser fails out of stock")
	assert.Equal(t, 0, reloadProduct(t, f.db, product.ID).Stock)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Order{}))
}

func TestCreateOrderWithoutCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedCustomer(t, f.db, "buyer@example.com")

	_, err := f.checkout.CreateOrder(ctx, "buyer@example.com")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Status)
}

func TestConcurrentCheckoutSameCart(t *testing.T) {
	f := newFixtureWithDB(t, newPooledTestDB(t))
	ctx := context.Background()

	seedCustomer(t, f.db, "buyer@example.com")
	shop := seedShop(t, f.db, "vendor@example.com")
	product := seedProduct(t, f.db, shop.ID, 50, 100)

	_, err := f.cart.AddItem(ctx, "buyer@example.com", &dto.AddToCartRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	// gateway latency lines both callers up on the same pre-checkout snapshot
	f.gateway.delay = 100 * time.Millisecond

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.checkout.CreateOrder(ctx, "buyer@example.com")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	cartGone := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if appErr, ok := apperror.As(err); ok && appErr.Status == 404 {
			cartGone++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one checkout consumes the cart")
	assert.Equal(t, 1, cartGone, "the loser finds the cart already consumed")
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Order{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &model.OrderItem{}))
	// the winner decremented stock once; the loser's transaction rolled back
	assert.Equal(t, 99, reloadProduct(t, f.db, product.ID).Stock)
	// both callers reached the gateway; the loser's intent stays uncaptured
	assert.Equal(t, int64(2), f.gateway.intents.Load())
}

func TestCreateOrderRederivesDiscountAfterItemRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedCustomer(t, f.db, "buyer@example.com")
	shop := seedShop(t, f.db, "vendor@example.com")
	expensive := seedProduct(t, f.db, shop.ID, 100, 5)
	cheap := seedProduct(t, f.db, shop.ID, 10, 5)
	seedCoupon(t, f.db, &model.Coupon{
		Code:      "HALF",
		ShopID:    shop.ID,
		Discount:  50,
		ValidFrom: time.Now().Add(-time.Hour),
		IsActive:  true,
	})

	_, err := f.cart.AddItem(ctx, "buyer@example.com", &dto.AddToCartRequest{ProductID: expensive.ID, Quantity: 1})
	require.NoError(t, err)
	cartResp, err := f.cart.AddItem(ctx, "buyer@example.com", &dto.AddToCartRequest{ProductID: cheap.ID, Quantity: 1})
	require.NoError(t, err)

	// 50% of the 110 total gets cached on the cart
	_, err = f.coupon.Apply(ctx, "HALF", "buyer@example.com")
	require.NoError(t, err)

	var expensiveItemID string
	for _, item := range cartResp.Items {
		if item.ProductID == expensive.ID {
			expensiveItemID = item.ID
		}
	}
	require.NotEmpty(t, expensiveItemID)

	// dropping the expensive item makes the cached 55 discount stale
	_, err = f.cart.RemoveItem(ctx, expensiveItemID, "buyer@example.com")
	require.NoError(t, err)

	resp, err := f.checkout.CreateOrder(ctx, "buyer@example.com")
	require.NoError(t, err)

	// the order carries 50% of the live 10 total, never a negative amount
	assert.Equal(t, 5.0, resp.Order.TotalAmount)
	assert.Equal(t, 5.0, resp.Order.Discount)
	assert.Equal(t, int64(500), f.gateway.lastAmount.Load())
}
