package dto

import "github.com/al-shaimon/zkart-backend/internal/model"

type AddToCartRequest struct {
	ProductID   string `json:"productId"`
	Quantity    int    `json:"quantity"`
	ReplaceCart bool   `json:"replaceCart"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CartResponse struct {
	ID          string     `json:"id"`
	ShopID      string     `json:"shopId"`
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	Discount    float64    `json:"discount"`
	FinalAmount float64    `json:"finalAmount"`
	Coupon      *Coupon    `json:"coupon,omitempty"`
}

type Coupon struct {
	Code         string   `json:"code"`
	Discount     float64  `json:"discount"`
	UsageLimit   *float64 `json:"usageLimit,omitempty"`
	DiscountType string   `json:"discountType,omitempty"`
	Message      string   `json:"discountMessage,omitempty"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type ApplyCouponResponse struct {
	OriginalAmount float64 `json:"originalAmount"`
	Discount       float64 `json:"discount"`
	FinalAmount    float64 `json:"finalAmount"`
	Coupon         Coupon  `json:"coupon"`
}

type CreateCouponRequest struct {
	Code       string   `json:"code"`
	Discount   float64  `json:"discount"`
	ShopID     string   `json:"shopId"`
	ValidFrom  string   `json:"validFrom,omitempty"`  // RFC 3339
	ValidUntil string   `json:"validUntil,omitempty"` // RFC 3339
	UsageLimit *float64 `json:"usageLimit,omitempty"`
}

type CreateOrderResponse struct {
	Order        *model.Order `json:"order"`
	ClientSecret string       `json:"clientSecret"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}
