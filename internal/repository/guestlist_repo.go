package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tessera-live/tessera/internal/model"
)

type GuestListRepo interface {
	WithTx(tx *gorm.DB) GuestListRepo
	Create(entry *model.GuestListEntry) error
	GetByID(id uint) (*model.GuestListEntry, error)
	GetByIDForUpdate(id uint) (*model.GuestListEntry, error)
	GetByEventID(eventID uint) ([]model.GuestListEntry, error)
	Save(entry *model.GuestListEntry) error
}

type guestListRepoGorm struct {
	db *gorm.DB
}

var _ GuestListRepo = (*guestListRepoGorm)(nil)

func NewGuestListRepoGorm(db *gorm.DB) *guestListRepoGorm {
	return &guestListRepoGorm{
		db: db,
	}
}

func (r *guestListRepoGorm) WithTx(tx *gorm.DB) GuestListRepo {
	return &guestListRepoGorm{
		db: tx,
	}
}

func (r *guestListRepoGorm) Create(entry *model.GuestListEntry) error {
	ctx := context.Background()
	return gorm.G[model.GuestListEntry](r.db).Create(ctx, entry)
}

func (r *guestListRepoGorm) GetByID(id uint) (*model.GuestListEntry, error) {
	ctx := context.Background()
	entry, err := gorm.G[model.GuestListEntry](r.db).Where(&model.GuestListEntry{ID: id}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetByIDForUpdate locks the entry row before the ticket type row is
// touched. The entry-then-ticket-type order is fixed to keep redemption
// from deadlocking against itself.
func (r *guestListRepoGorm) GetByIDForUpdate(id uint) (*model.GuestListEntry, error) {
	var entry model.GuestListEntry
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *guestListRepoGorm) GetByEventID(eventID uint) ([]model.GuestListEntry, error) {
	ctx := context.Background()
	return gorm.G[model.GuestListEntry](r.db).
		Where(&model.GuestListEntry{EventID: eventID}).
		Find(ctx)
}

func (r *guestListRepoGorm) Save(entry *model.GuestListEntry) error {
	return r.db.Save(entry).Error
}
