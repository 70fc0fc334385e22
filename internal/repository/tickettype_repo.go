package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tessera-live/tessera/internal/model"
)

type TicketTypeRepo interface {
	WithTx(tx *gorm.DB) TicketTypeRepo
	Create(tt *model.TicketType) error
	GetByID(id uint) (*model.TicketType, error)
	GetByIDForUpdate(id uint) (*model.TicketType, error)
	GetByEventID(eventID uint) ([]model.TicketType, error)
	TiersByTicketTypeID(id uint) ([]model.PricingTier, error)
	AddQuantitySold(id uint, delta int) error
}

type ticketTypeRepoGorm struct {
	db *gorm.DB
}

var _ TicketTypeRepo = (*ticketTypeRepoGorm)(nil)

func NewTicketTypeRepoGorm(db *gorm.DB) *ticketTypeRepoGorm {
	return &ticketTypeRepoGorm{
		db: db,
	}
}

func (r *ticketTypeRepoGorm) WithTx(tx *gorm.DB) TicketTypeRepo {
	return &ticketTypeRepoGorm{
		db: tx,
	}
}

func (r *ticketTypeRepoGorm) Create(tt *model.TicketType) error {
	ctx := context.Background()
	return gorm.G[model.TicketType](r.db).Create(ctx, tt)
}

func (r *ticketTypeRepoGorm) GetByID(id uint) (*model.TicketType, error) {
	var tt model.TicketType
	err := r.db.Preload("PricingTiers").Where("id = ?", id).First(&tt).Error
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// GetByIDForUpdate reads the ticket type under SELECT ... FOR UPDATE.
// Every path that mutates the quantity counters must read through this
// inside its transaction, never through GetByID.
func (r *ticketTypeRepoGorm) GetByIDForUpdate(id uint) (*model.TicketType, error) {
	var tt model.TicketType
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&tt).Error
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *ticketTypeRepoGorm) GetByEventID(eventID uint) ([]model.TicketType, error) {
	var tts []model.TicketType
	err := r.db.Preload("PricingTiers").
		Where("event_id = ?", eventID).
		Order("id").
		Find(&tts).Error
	return tts, err
}

// TiersByTicketTypeID loads the tiers with a plain read. Tier rows are
// read-only inside the purchase path, so no lock is needed even when the
// ticket type row itself is held FOR UPDATE.
func (r *ticketTypeRepoGorm) TiersByTicketTypeID(id uint) ([]model.PricingTier, error) {
	var tiers []model.PricingTier
	err := r.db.Where("ticket_type_id = ?", id).Order("id").Find(&tiers).Error
	return tiers, err
}

// AddQuantitySold moves the sold counter by delta (negative on refund).
// Callers must already hold the row lock via GetByIDForUpdate.
func (r *ticketTypeRepoGorm) AddQuantitySold(id uint, delta int) error {
	return r.db.Model(&model.TicketType{}).
		Where("id = ?", id).
		UpdateColumn("quantity_sold", gorm.Expr("quantity_sold + ?", delta)).Error
}
