package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/al-shaimon/zkart-backend/internal/model"
)

type CouponRepository interface {
	FindByCodeAndShop(ctx context.Context, code, shopID string) (*model.Coupon, error)
	ExistsByCodeAndShop(ctx context.Context, code, shopID string) (bool, error)
	Create(ctx context.Context, coupon *model.Coupon) error
	IncrementUsage(ctx context.Context, tx *gorm.DB, couponID string) error
}

type couponRepoImpl struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepoImpl{
		db: db,
	}
}

func (r *couponRepoImpl) FindByCodeAndShop(ctx context.Context, code, shopID string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND shop_id = ?", code, shopID).
		First(&coupon).Error

	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

func (r *couponRepoImpl) ExistsByCodeAndShop(ctx context.Context, code, shopID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("code = ? AND shop_id = ?", code, shopID).
		Count(&count).Error

	return count > 0, err
}

func (r *couponRepoImpl) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepoImpl) IncrementUsage(ctx context.Context, tx *gorm.DB, couponID string) error {
	return tx.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ?", couponID).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
}
