package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/al-shaimon/zkart-backend/internal/model"
)

type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
}

type customerRepoImpl struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepoImpl{
		db: db,
	}
}

func (r *customerRepoImpl) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", email, false).
		First(&customer).Error

	if err != nil {
		return nil, err
	}

	return &customer, nil
}
