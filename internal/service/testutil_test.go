package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbclient "github.com/al-shaimon/zkart-backend/internal/client"
	"github.com/al-shaimon/zkart-backend/internal/model"
	"github.com/al-shaimon/zkart-backend/internal/repository"
)

func openTestDB(t *testing.T, maxConns int) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(maxConns)

	require.NoError(t, dbclient.Migrate(db))
	return db
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// sqlite allows one writer; a single connection keeps concurrent test
	// transactions serialized instead of failing with a busy error
	return openTestDB(t, 1)
}

// newPooledTestDB hands out several connections so transactions can really
// overlap; the busy timeout in the DSN absorbs sqlite write-lock contention.
func newPooledTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, 4)
}

// fakeGateway satisfies client.PaymentClient without any network traffic.
type fakeGateway struct {
	intents    atomic.Int64
	lastAmount atomic.Int64
	delay      time.Duration
	createErr  error
	sigErr     error
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*dbclient.PaymentIntent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.delay > 0 {
		// stands in for gateway latency so racing checkouts line up
		time.Sleep(f.delay)
	}
	n := f.intents.Add(1)
	f.lastAmount.Store(amountMinor)
	return &dbclient.PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", n),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", n),
	}, nil
}

func (f *fakeGateway) VerifyWebhookSignature(payload []byte, sigHeader string) (*dbclient.GatewayEvent, error) {
	if f.sigErr != nil {
		return nil, f.sigErr
	}
	var ev struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &dbclient.GatewayEvent{
		ID:              ev.ID,
		Type:            ev.Type,
		PaymentIntentID: ev.Data.Object.ID,
	}, nil
}

func webhookBody(eventID, eventType, paymentIntentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"data":{"object":{"id":%q}}}`,
		eventID, eventType, paymentIntentID,
	))
}

type fixture struct {
	db       *gorm.DB
	gateway  *fakeGateway
	cart     CartService
	coupon   CouponService
	checkout CheckoutService
	payment  PaymentService
	order    OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithDB(t, newTestDB(t))
}

func newFixtureWithDB(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	gateway := &fakeGateway{}
	log := zap.NewNop()

	customerRepo := repository.NewCustomerRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	return &fixture{
		db:      db,
		gateway: gateway,
		cart:    NewCartService(db, customerRepo, productRepo, cartRepo),
		coupon:  NewCouponService("usd", customerRepo, vendorRepo, cartRepo, couponRepo),
		checkout: NewCheckoutService(
			db, gateway, "usd", log,
			customerRepo, productRepo, cartRepo, couponRepo, orderRepo,
		),
		payment: NewPaymentService(db, gateway, log, orderRepo, productRepo, webhookEventRepo),
		order:   NewOrderService(customerRepo, vendorRepo, orderRepo),
	}
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) *model.Customer {
	t.Helper()
	c := &model.Customer{Email: email, Name: "Test Customer"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedShop(t *testing.T, db *gorm.DB, vendorEmail string) *model.Shop {
	t.Helper()
	v := &model.Vendor{Email: vendorEmail, Name: "Test Vendor"}
	require.NoError(t, db.Create(v).Error)
	shop := &model.Shop{Name: "Shop of " + vendorEmail, VendorID: v.ID}
	require.NoError(t, db.Create(shop).Error)
	return shop
}

func seedProduct(t *testing.T, db *gorm.DB, shopID string, price float64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{Name: "Widget", Price: price, Stock: stock, ShopID: shopID}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedCoupon(t *testing.T, db *gorm.DB, c *model.Coupon) *model.Coupon {
	t.Helper()
	require.NoError(t, db.Create(c).Error)
	return c
}

func reloadProduct(t *testing.T, db *gorm.DB, id string) *model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return &p
}

func reloadOrder(t *testing.T, db *gorm.DB, id string) *model.Order {
	t.Helper()
	var o model.Order
	require.NoError(t, db.Preload("Items").First(&o, "id = ?", id).Error)
	return &o
}

func countRows(t *testing.T, db *gorm.DB, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(value).Count(&n).Error)
	return n
}
