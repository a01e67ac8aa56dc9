package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
	"github.com/al-shaimon/zkart-backend/internal/client"
	"github.com/al-shaimon/zkart-backend/internal/coupon"
	"github.com/al-shaimon/zkart-backend/internal/dto"
	"github.com/al-shaimon/zkart-backend/internal/model"
	"github.com/al-shaimon/zkart-backend/internal/repository"
)

const paymentMethodStripe = "STRIPE"

// CheckoutService converts the customer's cart into an immutable order:
// payment intent first, then one transaction that consumes the cart with a
// guarded delete, decrements stock and writes the order snapshot.
type CheckoutService interface {
	CreateOrder(ctx context.Context, userEmail string) (*dto.CreateOrderResponse, error)
}

type checkoutServiceImpl struct {
	db            *gorm.DB
	paymentClient client.PaymentClient
	currency      string
	logger        *zap.Logger
	customerRepo  repository.CustomerRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	couponRepo    repository.CouponRepository
	orderRepo     repository.OrderRepository
}

func NewCheckoutService(
	db *gorm.DB,
	paymentClient client.PaymentClient,
	currency string,
	logger *zap.Logger,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	couponRepo repository.CouponRepository,
	orderRepo repository.OrderRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		db:            db,
		paymentClient: paymentClient,
		currency:      currency,
		logger:        logger,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		couponRepo:    couponRepo,
		orderRepo:     orderRepo,
	}
}

func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, userEmail string) (*dto.CreateOrderResponse, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, notFoundOr(err, "Customer not found")
	}

	cart, err := s.cartRepo.FindByCustomerID(ctx, customer.ID)
	if err != nil {
		return nil, notFoundOr(err, "Cart not found")
	}
	if len(cart.Items) == 0 {
		return nil, apperror.BadRequest("Cart is empty")
	}

	// recompute from live item and product rows; the cached cart total is
	// never trusted
	total := decimal.Zero
	for _, item := range cart.Items {
		if item.Product == nil {
			return nil, apperror.NotFound("Product not found")
		}
		total = total.Add(decimal.NewFromFloat(item.Product.Price).
			Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// re-derive the discount from the coupon against the live total; the
	// cached cart.Discount can be stale after item changes and would let a
	// big coupon push the order total negative
	discount := decimal.Zero
	if cart.Coupon != nil {
		discount = coupon.Compute(total, cart.Coupon).Amount
	}
	finalAmount := total.Sub(discount)

	// Gateway first: if the transaction below aborts, the intent is left
	// uncaptured, which charges nobody. The reverse order could charge a
	// customer with no order to show for it.
	intent, err := s.paymentClient.CreateIntent(ctx, coupon.MinorUnits(finalAmount), s.currency, map[string]string{
		"customerEmail": userEmail,
		"cartId":        cart.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	finalFloat, _ := finalAmount.Float64()
	discountFloat, _ := discount.Float64()

	order := &model.Order{
		CustomerID:    customer.ID,
		ShopID:        cart.ShopID,
		TotalAmount:   finalFloat,
		Discount:      discountFloat,
		CouponID:      cart.CouponID,
		Status:        model.OrderPending,
		PaymentStatus: model.PaymentPending,
		PaymentMethod: paymentMethodStripe,
		PaymentID:     intent.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// consume the cart first; the guarded delete makes sure exactly one
		// of two racing checkouts turns this cart into an order
		if err := s.cartRepo.Delete(ctx, tx, cart.ID); err != nil {
			return notFoundOr(err, "Cart not found")
		}

		for _, item := range cart.Items {
			ok, err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return apperror.BadRequest("Product out of stock")
			}
		}

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		orderItems := make([]*model.OrderItem, len(cart.Items))
		for i, item := range cart.Items {
			orderItems[i] = &model.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Product.Price, // frozen at this instant
			}
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}
		order.Items = make([]model.OrderItem, len(orderItems))
		for i, it := range orderItems {
			order.Items[i] = *it
		}

		if cart.CouponID != nil {
			if err := s.couponRepo.IncrementUsage(ctx, tx, *cart.CouponID); err != nil {
				return fmt.Errorf("record coupon redemption: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Warn("checkout aborted",
			zap.String("cart_id", cart.ID),
			zap.String("payment_id", intent.ID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("payment_id", order.PaymentID),
		zap.Float64("total", order.TotalAmount))

	return &dto.CreateOrderResponse{
		Order:        order,
		ClientSecret: intent.ClientSecret,
	}, nil
}
