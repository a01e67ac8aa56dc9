package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/al-shaimon/zkart-backend/internal/dto"
	"github.com/al-shaimon/zkart-backend/internal/middleware"
	"github.com/al-shaimon/zkart-backend/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	var req dto.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.cartService.AddItem(ctx, principal.Email, &req)
	if err != nil {
		return err
	}

	return respond(c, "Item added to cart successfully", result)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	result, err := h.cartService.GetCart(ctx, principal.Email)
	if err != nil {
		return err
	}

	return respond(c, "Cart retrieved successfully", result)
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	var req dto.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.cartService.UpdateItem(ctx, c.Param("id"), req.Quantity, principal.Email)
	if err != nil {
		return err
	}

	return respond(c, "Cart item updated successfully", result)
}

func (h *CartHandler) RemoveCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	result, err := h.cartService.RemoveItem(ctx, c.Param("id"), principal.Email)
	if err != nil {
		return err
	}

	return respond(c, "Cart item removed successfully", result)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	if err := h.cartService.Clear(ctx, principal.Email); err != nil {
		return err
	}

	return respond(c, "Cart cleared successfully", nil)
}
