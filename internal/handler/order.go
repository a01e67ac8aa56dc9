package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/al-shaimon/zkart-backend/internal/client"
	"github.com/al-shaimon/zkart-backend/internal/dto"
	"github.com/al-shaimon/zkart-backend/internal/middleware"
	"github.com/al-shaimon/zkart-backend/internal/service"
)

type OrderHandler struct {
	checkoutService service.CheckoutService
	couponService   service.CouponService
	orderService    service.OrderService
	paymentService  service.PaymentService
}

func NewOrderHandler(
	checkoutService service.CheckoutService,
	couponService service.CouponService,
	orderService service.OrderService,
	paymentService service.PaymentService,
) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		couponService:   couponService,
		orderService:    orderService,
		paymentService:  paymentService,
	}
}

func (h *OrderHandler) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	var req dto.ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.couponService.Apply(ctx, req.Code, principal.Email)
	if err != nil {
		return err
	}

	return respond(c, "Coupon applied successfully", result)
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	result, err := h.checkoutService.CreateOrder(ctx, principal.Email)
	if err != nil {
		return err
	}

	return respond(c, "Order created successfully", result)
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	result, err := h.orderService.ListMyOrders(ctx, principal.Email)
	if err != nil {
		return err
	}

	return respond(c, "Orders retrieved successfully", result)
}

func (h *OrderHandler) GetOrderByID(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	result, err := h.orderService.GetOrderByID(ctx, c.Param("id"), principal)
	if err != nil {
		return err
	}

	return respond(c, "Order retrieved successfully", result)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	var req dto.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.orderService.UpdateOrderStatus(ctx, c.Param("id"), req.Status, principal.Email)
	if err != nil {
		return err
	}

	return respond(c, "Order status updated successfully", result)
}

func (h *OrderHandler) UpdatePaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdatePaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.orderService.UpdatePaymentStatus(ctx, c.Param("id"), req.PaymentStatus)
	if err != nil {
		return err
	}

	return respond(c, "Payment status updated successfully", result)
}

// Webhook receives gateway callbacks. Any non-2xx response makes the gateway
// redeliver, so processing failures bubble up; a bad signature is rejected
// with 400 and never retried server-side.
func (h *OrderHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "read webhook body")
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")

	if err := h.paymentService.HandleWebhook(ctx, body, sigHeader); err != nil {
		var sigErr *client.ErrSignature
		if errors.As(err, &sigErr) {
			return echo.NewHTTPError(http.StatusBadRequest, sigErr.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}
