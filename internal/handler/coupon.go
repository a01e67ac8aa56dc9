package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/al-shaimon/zkart-backend/internal/dto"
	"github.com/al-shaimon/zkart-backend/internal/middleware"
	"github.com/al-shaimon/zkart-backend/internal/service"
)

type CouponHandler struct {
	couponService service.CouponService
}

func NewCouponHandler(couponService service.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

func (h *CouponHandler) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	principal, _ := middleware.FromContext(c)

	var req dto.CreateCouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.couponService.Create(ctx, principal.Email, &req)
	if err != nil {
		return err
	}

	return respond(c, "Coupon created successfully", result)
}
