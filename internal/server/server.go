package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
	"github.com/al-shaimon/zkart-backend/internal/handler"
	"github.com/al-shaimon/zkart-backend/internal/middleware"
	"github.com/al-shaimon/zkart-backend/internal/service"
)

type Server struct {
	echo          *echo.Echo
	jwtSecret     string
	cartHandler   *handler.CartHandler
	orderHandler  *handler.OrderHandler
	couponHandler *handler.CouponHandler
}

func NewServer(
	logger *zap.Logger,
	jwtSecret string,
	cartService service.CartService,
	couponService service.CouponService,
	checkoutService service.CheckoutService,
	orderService service.OrderService,
	paymentService service.PaymentService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = newErrorHandler(logger)

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:          e,
		jwtSecret:     jwtSecret,
		cartHandler:   handler.NewCartHandler(cartService),
		orderHandler:  handler.NewOrderHandler(checkoutService, couponService, orderService, paymentService),
		couponHandler: handler.NewCouponHandler(couponService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	customerOnly := middleware.Auth(s.jwtSecret, middleware.RoleCustomer)
	vendorOnly := middleware.Auth(s.jwtSecret, middleware.RoleVendor)
	adminOnly := middleware.Auth(s.jwtSecret, middleware.RoleAdmin)
	anyRole := middleware.Auth(s.jwtSecret,
		middleware.RoleAdmin, middleware.RoleVendor, middleware.RoleCustomer)

	// -------- cart --------
	cart := api.Group("/cart")
	cart.POST("/add-to-cart", s.cartHandler.AddToCart, customerOnly)
	cart.GET("", s.cartHandler.GetCart, customerOnly)
	cart.PATCH("/item/:id", s.cartHandler.UpdateCartItem, customerOnly)
	cart.DELETE("/item/:id", s.cartHandler.RemoveCartItem, customerOnly)
	cart.DELETE("/clear", s.cartHandler.ClearCart, customerOnly)

	// -------- order --------
	order := api.Group("/order")
	order.POST("/apply-coupon", s.orderHandler.ApplyCoupon, customerOnly)
	order.POST("/create-order", s.orderHandler.CreateOrder, customerOnly)
	order.GET("/my-orders", s.orderHandler.GetMyOrders, customerOnly)
	order.GET("/:id", s.orderHandler.GetOrderByID, anyRole)
	order.PATCH("/:id/status", s.orderHandler.UpdateOrderStatus, vendorOnly)
	order.PATCH("/:id/payment-status", s.orderHandler.UpdatePaymentStatus, adminOnly)

	// -------- gateway webhook (raw body, signature-verified) --------
	order.POST("/webhook", s.orderHandler.Webhook)

	// -------- coupon --------
	api.POST("/coupon", s.couponHandler.CreateCoupon, vendorOnly)
}

// failure envelope rendered for every domain error
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func newErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := errorResponse{
			Message: "Internal server error",
			Error:   "INTERNAL",
		}
		status := http.StatusInternalServerError

		if appErr, ok := apperror.As(err); ok {
			status = appErr.Status
			resp.Message = appErr.Message
			resp.Error = appErr.Code
			resp.Details = appErr.Details
		} else if httpErr, ok := err.(*echo.HTTPError); ok {
			status = httpErr.Code
			resp.Message = http.StatusText(status)
			if msg, ok := httpErr.Message.(string); ok {
				resp.Message = msg
			}
			resp.Error = "BAD_REQUEST"
		} else {
			logger.Error("unhandled error", zap.Error(err))
		}

		if writeErr := c.JSON(status, resp); writeErr != nil {
			logger.Error("write error response", zap.Error(writeErr))
		}
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
