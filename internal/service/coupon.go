package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
	"github.com/al-shaimon/zkart-backend/internal/coupon"
	"github.com/al-shaimon/zkart-backend/internal/dto"
	"github.com/al-shaimon/zkart-backend/internal/model"
	"github.com/al-shaimon/zkart-backend/internal/repository"
)

type CouponService interface {
	// Apply validates a coupon against the caller's cart and persists the
	// computed discount onto it.
	Apply(ctx context.Context, code string, userEmail string) (*dto.ApplyCouponResponse, error)
	// Create registers a coupon for one of the vendor's own shops.
	Create(ctx context.Context, vendorEmail string, req *dto.CreateCouponRequest) (*model.Coupon, error)
}

type couponServiceImpl struct {
	currency     string
	customerRepo repository.CustomerRepository
	vendorRepo   repository.VendorRepository
	cartRepo     repository.CartRepository
	couponRepo   repository.CouponRepository
}

func NewCouponService(
	currency string,
	customerRepo repository.CustomerRepository,
	vendorRepo repository.VendorRepository,
	cartRepo repository.CartRepository,
	couponRepo repository.CouponRepository,
) CouponService {
	return &couponServiceImpl{
		currency:     currency,
		customerRepo: customerRepo,
		vendorRepo:   vendorRepo,
		cartRepo:     cartRepo,
		couponRepo:   couponRepo,
	}
}

func (s *couponServiceImpl) Apply(ctx context.Context, code string, userEmail string) (*dto.ApplyCouponResponse, error) {
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

	// coupon must belong to the cart's shop
	c, err := s.couponRepo.FindByCodeAndShop(ctx, code, cart.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest("Invalid or expired coupon")
		}
		return nil, err
	}
	if !coupon.Usable(c, time.Now()) {
		return nil, apperror.BadRequest("Invalid or expired coupon")
	}

	cartTotal := decimal.Zero
	for _, item := range cart.Items {
		if item.Product == nil {
			continue
		}
		cartTotal = cartTotal.Add(decimal.NewFromFloat(item.Product.Price).
			Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	d := coupon.Compute(cartTotal, c)
	discount, _ := d.Amount.Float64()

	if err := s.cartRepo.SetCoupon(ctx, cart.ID, &c.ID, discount); err != nil {
		return nil, fmt.Errorf("store coupon on cart: %w", err)
	}

	original, _ := cartTotal.Float64()
	final, _ := cartTotal.Sub(d.Amount).Float64()

	return &dto.ApplyCouponResponse{
		OriginalAmount: original,
		Discount:       discount,
		FinalAmount:    final,
		Coupon: dto.Coupon{
			Code:         c.Code,
			Discount:     c.Discount,
			UsageLimit:   c.UsageLimit,
			DiscountType: string(d.Kind),
			Message:      d.Message(c, s.currency),
		},
	}, nil
}

func (s *couponServiceImpl) Create(ctx context.Context, vendorEmail string, req *dto.CreateCouponRequest) (*model.Coupon, error) {
	if req.Code == "" || req.ShopID == "" {
		return nil, apperror.BadRequest("Coupon code and shop are required")
	}
	if req.Discount <= 0 || req.Discount > 100 {
		return nil, apperror.BadRequest("Discount must be a percentage between 0 and 100")
	}

	owns, err := s.vendorRepo.OwnsShop(ctx, vendorEmail, req.ShopID)
	if err != nil {
		return nil, fmt.Errorf("check shop ownership: %w", err)
	}
	if !owns {
		return nil, apperror.Forbidden("You are not authorized to create a coupon for this shop")
	}

	exists, err := s.couponRepo.ExistsByCodeAndShop(ctx, req.Code, req.ShopID)
	if err != nil {
		return nil, fmt.Errorf("check coupon code: %w", err)
	}
	if exists {
		return nil, apperror.BadRequest("Coupon code already exists for this shop")
	}

	c := &model.Coupon{
		Code:       req.Code,
		ShopID:     req.ShopID,
		Discount:   req.Discount,
		ValidFrom:  time.Now(),
		UsageLimit: req.UsageLimit,
		IsActive:   true,
	}
	if req.ValidFrom != "" {
		t, err := time.Parse(time.RFC3339, req.ValidFrom)
		if err != nil {
			return nil, apperror.BadRequest("validFrom must be RFC 3339")
		}
		c.ValidFrom = t
	}
	if req.ValidUntil != "" {
		t, err := time.Parse(time.RFC3339, req.ValidUntil)
		if err != nil {
			return nil, apperror.BadRequest("validUntil must be RFC 3339")
		}
		c.ValidUntil = &t
	}

	if err := s.couponRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	return c, nil
}
