package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
	"github.com/al-shaimon/zkart-backend/internal/coupon"
	"github.com/al-shaimon/zkart-backend/internal/dto"
	"github.com/al-shaimon/zkart-backend/internal/model"
	"github.com/al-shaimon/zkart-backend/internal/repository"
)

type CartService interface {
	AddItem(ctx context.Context, userEmail string, req *dto.AddToCartRequest) (*dto.CartResponse, error)
	GetCart(ctx context.Context, userEmail string) (*dto.CartResponse, error)
	UpdateItem(ctx context.Context, itemID string, quantity int, userEmail string) (*dto.CartResponse, error)
	RemoveItem(ctx context.Context, itemID string, userEmail string) (*dto.CartResponse, error)
	Clear(ctx context.Context, userEmail string) error
}

type cartServiceImpl struct {
	db           *gorm.DB
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
}

func NewCartService(
	db *gorm.DB,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
) CartService {
	return &cartServiceImpl{
		db:           db,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userEmail string, req *dto.AddToCartRequest) (*dto.CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperror.BadRequest("Quantity must be at least 1")
	}

	customer, err := s.customerRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, notFoundOr(err, "Customer not found")
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, notFoundOr(err, "Product not found")
	}

	if product.Stock < req.Quantity {
		return nil, apperror.BadRequest("Product out of stock")
	}

	cart, err := s.cartRepo.FindByCustomerID(ctx, customer.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if cart != nil && cart.ShopID != product.ShopID && !req.ReplaceCart {
		return nil, apperror.ShopConflict(cart.ShopID, product.ShopID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cart != nil && (req.ReplaceCart || cart.ShopID != product.ShopID) {
			if err := s.cartRepo.Delete(ctx, tx, cart.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("discard previous cart: %w", err)
			}
			cart = nil
		}

		if cart == nil {
			cart = &model.Cart{
				CustomerID: customer.ID,
				ShopID:     product.ShopID,
			}
			if err := s.cartRepo.Create(ctx, tx, cart); err != nil {
				return fmt.Errorf("create cart: %w", err)
			}
		}

		return s.cartRepo.UpsertItem(ctx, tx, &model.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.projectCart(ctx, customer.ID)
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userEmail string) (*dto.CartResponse, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, notFoundOr(err, "Customer not found")
	}

	return s.projectCart(ctx, customer.ID)
}

func (s *cartServiceImpl) UpdateItem(ctx context.Context, itemID string, quantity int, userEmail string) (*dto.CartResponse, error) {
	if quantity < 1 {
		return nil, apperror.BadRequest("Quantity must be at least 1")
	}

	customer, item, err := s.ownedItem(ctx, itemID, userEmail)
	if err != nil {
		return nil, err
	}

	// stock is re-checked on increases only; shrinking an already-held
	// quantity always succeeds even after stock dropped under it
	if quantity > item.Quantity && item.Product != nil && item.Product.Stock < quantity {
		return nil, apperror.BadRequest("Requested quantity not available")
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return nil, notFoundOr(err, "Cart item not found")
	}

	return s.projectCart(ctx, customer.ID)
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, itemID string, userEmail string) (*dto.CartResponse, error) {
	customer, item, err := s.ownedItem(ctx, itemID, userEmail)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}

	// removing the last item retires the cart so a fresh one can start
	count, err := s.cartRepo.CountItems(ctx, item.CartID)
	if err != nil {
		return nil, fmt.Errorf("count cart items: %w", err)
	}
	if count == 0 {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.cartRepo.Delete(ctx, tx, item.CartID)
		})
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("delete empty cart: %w", err)
		}
		return &dto.CartResponse{ID: item.CartID, Items: []dto.CartItem{}}, nil
	}

	return s.projectCart(ctx, customer.ID)
}

func (s *cartServiceImpl) Clear(ctx context.Context, userEmail string) error {
	customer, err := s.customerRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return notFoundOr(err, "Customer not found")
	}

	cart, err := s.cartRepo.FindByCustomerID(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load cart: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.cartRepo.Delete(ctx, tx, cart.ID)
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

// ownedItem loads the cart item and verifies it belongs to the caller's cart.
func (s *cartServiceImpl) ownedItem(ctx context.Context, itemID, userEmail string) (*model.Customer, *model.CartItem, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, nil, notFoundOr(err, "Customer not found")
	}

	item, err := s.cartRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, nil, notFoundOr(err, "Cart item not found")
	}

	cart, err := s.cartRepo.FindByCustomerID(ctx, customer.ID)
	if err != nil || cart.ID != item.CartID {
		return nil, nil, apperror.Forbidden("Access denied")
	}

	return customer, item, nil
}

// projectCart computes the display totals. The discount is re-derived from
// the cached coupon with the pure formula rather than trusting the cached
// amount, so item changes after apply-coupon show the right number.
func (s *cartServiceImpl) projectCart(ctx context.Context, customerID string) (*dto.CartResponse, error) {
	cart, err := s.cartRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, notFoundOr(err, "Cart not found")
	}

	resp := &dto.CartResponse{
		ID:     cart.ID,
		ShopID: cart.ShopID,
		Items:  make([]dto.CartItem, 0, len(cart.Items)),
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		line := dto.CartItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.Price = item.Product.Price
			total = total.Add(decimal.NewFromFloat(item.Product.Price).
				Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		resp.Items = append(resp.Items, line)
	}

	discount := decimal.Zero
	if cart.Coupon != nil {
		d := coupon.Compute(total, cart.Coupon)
		discount = d.Amount
		resp.Coupon = &dto.Coupon{
			Code:         cart.Coupon.Code,
			Discount:     cart.Coupon.Discount,
			UsageLimit:   cart.Coupon.UsageLimit,
			DiscountType: string(d.Kind),
		}
	}

	resp.TotalAmount, _ = total.Float64()
	resp.Discount, _ = discount.Float64()
	resp.FinalAmount, _ = total.Sub(discount).Float64()

	return resp, nil
}
