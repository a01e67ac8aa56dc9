package service

import (
	"context"
	"fmt"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
	"github.com/al-shaimon/zkart-backend/internal/middleware"
	"github.com/al-shaimon/zkart-backend/internal/model"
	"github.com/al-shaimon/zkart-backend/internal/repository"
)

// OrderService is the role-scoped read/update surface over orders.
type OrderService interface {
	GetOrderByID(ctx context.Context, orderID string, principal middleware.Principal) (*model.Order, error)
	ListMyOrders(ctx context.Context, userEmail string) ([]*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, vendorEmail string) (*model.Order, error)
	// UpdatePaymentStatus is the explicit admin override; the reconciler owns
	// every other payment-status transition.
	UpdatePaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) (*model.Order, error)
}

type orderServiceImpl struct {
	customerRepo repository.CustomerRepository
	vendorRepo   repository.VendorRepository
	orderRepo    repository.OrderRepository
}

func NewOrderService(
	customerRepo repository.CustomerRepository,
	vendorRepo repository.VendorRepository,
	orderRepo repository.OrderRepository,
) OrderService {
	return &orderServiceImpl{
		customerRepo: customerRepo,
		vendorRepo:   vendorRepo,
		orderRepo:    orderRepo,
	}
}

func (s *orderServiceImpl) GetOrderByID(ctx context.Context, orderID string, principal middleware.Principal) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "Order not found")
	}

	switch principal.Role {
	case middleware.RoleAdmin:
		return order, nil

	case middleware.RoleVendor:
		owns, err := s.vendorRepo.OwnsShop(ctx, principal.Email, order.ShopID)
		if err != nil {
			return nil, fmt.Errorf("check shop ownership: %w", err)
		}
		if !owns {
			return nil, apperror.Forbidden("You are not authorized to view this order")
		}
		return order, nil

	case middleware.RoleCustomer:
		customer, err := s.customerRepo.FindByEmail(ctx, principal.Email)
		if err != nil {
			return nil, notFoundOr(err, "Customer not found")
		}
		if order.CustomerID != customer.ID {
			return nil, apperror.Forbidden("You are not authorized to view this order")
		}
		return order, nil
	}

	return nil, apperror.Forbidden("You are not authorized to view this order")
}

func (s *orderServiceImpl) ListMyOrders(ctx context.Context, userEmail string) ([]*model.Order, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, notFoundOr(err, "Customer not found")
	}

	return s.orderRepo.ListByCustomer(ctx, customer.ID)
}

func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, vendorEmail string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "Order not found")
	}

	owns, err := s.vendorRepo.OwnsShop(ctx, vendorEmail, order.ShopID)
	if err != nil {
		return nil, fmt.Errorf("check shop ownership: %w", err)
	}
	if !owns {
		return nil, apperror.Forbidden("You are not authorized to update this order")
	}

	if !order.Status.CanTransition(status) {
		return nil, apperror.BadRequest(fmt.Sprintf("Cannot move order from %s to %s", order.Status, status))
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, notFoundOr(err, "Order not found")
	}

	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *orderServiceImpl) UpdatePaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, apperror.BadRequest("Invalid payment status")
	}

	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, notFoundOr(err, "Order not found")
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status); err != nil {
		return nil, notFoundOr(err, "Order not found")
	}

	return s.orderRepo.FindByID(ctx, orderID)
}
