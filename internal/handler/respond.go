package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}
