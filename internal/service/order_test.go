package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
	"github.com/al-shaimon/zkart-backend/internal/middleware"
	"github.com/al-shaimon/zkart-backend/internal/model"
)

func TestGetOrderByIDRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := placeOrder(t, f, 1)
	seedCustomer(t, f.db, "other@example.com")
	seedShop(t, f.db, "other-vendor@example.com")

	tests := []struct {
		name      string
		principal middleware.Principal
		status    int
	}{
		{"admin sees any order", middleware.Principal{Email: "admin@example.com", Role: middleware.RoleAdmin}, 0},
		{"owning vendor", middleware.Principal{Email: "vendor@example.com", Role: middleware.RoleVendor}, 0},
		{"vendor of another shop", middleware.Principal{Email: "other-vendor@example.com", Role: middleware.RoleVendor}, 403},
		{"owning customer", middleware.Principal{Email: "buyer@example.com", Role: middleware.RoleCustomer}, 0},
		{"other customer", middleware.Principal{Email: "other@example.com", Role: middleware.RoleCustomer}, 403},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.order.GetOrderByID(ctx, order.ID, tc.principal)
			if tc.status == 0 {
				require.NoError(t, err)
				assert.Equal(t, order.ID, got.ID)
				return
			}
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.status, appErr.Status)
		})
	}
}

func TestGetOrderByIDNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.order.GetOrderByID(context.Background(), "missing",
		middleware.Principal{Email: "admin@example.com", Role: middleware.RoleAdmin})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Status)
}

func TestListMyOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := placeOrder(t, f, 1)

	orders, err := f.order.ListMyOrders(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	seedCustomer(t, f.db, "other@example.com")
	orders, err = f.order.ListMyOrders(ctx, "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUpdateOrderStatusValidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := placeOrder(t, f, 1)

	updated, err := f.order.UpdateOrderStatus(ctx, order.ID, model.OrderProcessing, "vendor@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.OrderProcessing, updated.Status)

	updated, err = f.order.UpdateOrderStatus(ctx, order.ID, model.OrderShipped, "vendor@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, updated.Status)
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := placeOrder(t, f, 1)

	// skipping PROCESSING is not allowed
	_, err := f.order.UpdateOrderStatus(ctx, order.ID, model.OrderShipped, "vendor@example.com")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Status)

	assert.Equal(t, model.OrderPending, reloadOrder(t, f.db, order.ID).Status)
}

func TestUpdateOrderStatusRequiresOwningVendor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := placeOrder(t, f, 1)
	seedShop(t, f.db, "other-vendor@example.com")

	_, err := f.order.UpdateOrderStatus(ctx, order.ID, model.OrderProcessing, "other-vendor@example.com")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.Status)
}

func TestUpdatePaymentStatusAdminOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := placeOrder(t, f, 1)

	updated, err := f.order.UpdatePaymentStatus(ctx, order.ID, model.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, updated.PaymentStatus)

	_, err = f.order.UpdatePaymentStatus(ctx, order.ID, "SETTLED")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Status)
}
