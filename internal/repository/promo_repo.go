package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
)

type PromoCodeRepo interface {
	WithTx(tx *gorm.DB) PromoCodeRepo
	Create(promo *model.PromoCode) error
	GetByEventAndCode(eventID uint, code string) (*model.PromoCode, error)
	IncrementUses(id uint) error
}

type promoCodeRepoGorm struct {
	db *gorm.DB
}

var _ PromoCodeRepo = (*promoCodeRepoGorm)(nil)

func NewPromoCodeRepoGorm(db *gorm.DB) *promoCodeRepoGorm {
	return &promoCodeRepoGorm{
		db: db,
	}
}

func (r *promoCodeRepoGorm) WithTx(tx *gorm.DB) PromoCodeRepo {
	return &promoCodeRepoGorm{
		db: tx,
	}
}

func (r *promoCodeRepoGorm) Create(promo *model.PromoCode) error {
	ctx := context.Background()
	return gorm.G[model.PromoCode](r.db).Create(ctx, promo)
}

func (r *promoCodeRepoGorm) GetByEventAndCode(eventID uint, code string) (*model.PromoCode, error) {
	ctx := context.Background()
	promo, err := gorm.G[model.PromoCode](r.db).
		Where(&model.PromoCode{EventID: eventID, Code: code}).
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// IncrementUses bumps current_uses atomically. The counter is advisory
// (usable? is a pre-check, not an inventory guarantee) so no row lock is
// taken here.
func (r *promoCodeRepoGorm) IncrementUses(id uint) error {
	return r.db.Model(&model.PromoCode{}).
		Where("id = ?", id).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1")).Error
}
