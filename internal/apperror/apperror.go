// Package apperror defines the typed domain failures the API surfaces.
// Every domain error carries the HTTP status it renders with so a single
// top-level handler can map it.
package apperror

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// ShopConflictDetails lets the client offer a "replace cart?" confirmation.
type ShopConflictDetails struct {
	CurrentShopID        string `json:"currentShopId"`
	NewShopID            string `json:"newShopId"`
	RequiresConfirmation bool   `json:"requiresConfirmation"`
}

// ShopConflict is returned when a customer adds a product from a different
// shop than their current cart without asking for a replace.
func ShopConflict(currentShopID, newShopID string) *Error {
	return &Error{
		Status:  http.StatusConflict,
		Code:    "DIFFERENT_SHOP",
		Message: "Cannot add products from different shops. Would you like to replace your current cart?",
		Details: ShopConflictDetails{
			CurrentShopID:        currentShopID,
			NewShopID:            newShopID,
			RequiresConfirmation: true,
		},
	}
}

// As unwraps err into an *Error if one is anywhere in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
