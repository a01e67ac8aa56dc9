package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/al-shaimon/zkart-backend/internal/model"
)

type VendorRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Vendor, error)
	// OwnsShop reports whether the shop belongs to the vendor with the
	// given email.
	OwnsShop(ctx context.Context, vendorEmail, shopID string) (bool, error)
}

type vendorRepoImpl struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepoImpl{
		db: db,
	}
}

func (r *vendorRepoImpl) FindByEmail(ctx context.Context, email string) (*model.Vendor, error) {
	var vendor model.Vendor
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", email, false).
		First(&vendor).Error

	if err != nil {
		return nil, err
	}

	return &vendor, nil
}

func (r *vendorRepoImpl) OwnsShop(ctx context.Context, vendorEmail, shopID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Shop{}).
		Joins("JOIN vendors ON vendors.id = shops.vendor_id").
		Where("shops.id = ? AND vendors.email = ?", shopID, vendorEmail).
		Count(&count).Error

	return count > 0, err
}
