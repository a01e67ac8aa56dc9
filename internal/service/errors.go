package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
)

// notFoundOr maps a gorm record miss to the domain NotFound error and passes
// everything else through untouched.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(message)
	}
	return err
}
