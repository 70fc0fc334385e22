package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/model"
)

type WaitlistRepo interface {
	WithTx(tx *gorm.DB) WaitlistRepo
	Create(entry *model.WaitlistEntry) error
	GetByID(id uint) (*model.WaitlistEntry, error)
	Save(entry *model.WaitlistEntry) error
	MaxPosition(eventID uint, ticketTypeID *uint) (int, error)
	ActiveByEmail(eventID uint, ticketTypeID *uint, email string) (*model.WaitlistEntry, error)
	NextWaiting(eventID uint, ticketTypeID *uint) (*model.WaitlistEntry, error)
	WaitingForEvent(eventID uint) ([]model.WaitlistEntry, error)
}

type waitlistRepoGorm struct {
	db *gorm.DB
}

var _ WaitlistRepo = (*waitlistRepoGorm)(nil)

func NewWaitlistRepoGorm(db *gorm.DB) *waitlistRepoGorm {
	return &waitlistRepoGorm{
		db: db,
	}
}

func (r *waitlistRepoGorm) WithTx(tx *gorm.DB) WaitlistRepo {
	return &waitlistRepoGorm{
		db: tx,
	}
}

func (r *waitlistRepoGorm) Create(entry *model.WaitlistEntry) error {
	ctx := context.Background()
	return gorm.G[model.WaitlistEntry](r.db).Create(ctx, entry)
}

func (r *waitlistRepoGorm) GetByID(id uint) (*model.WaitlistEntry, error) {
	ctx := context.Background()
	entry, err := gorm.G[model.WaitlistEntry](r.db).Where(&model.WaitlistEntry{ID: id}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepoGorm) Save(entry *model.WaitlistEntry) error {
	return r.db.Save(entry).Error
}

func scopeQueue(db *gorm.DB, eventID uint, ticketTypeID *uint) *gorm.DB {
	q := db.Model(&model.WaitlistEntry{}).Where("event_id = ?", eventID)
	if ticketTypeID == nil {
		return q.Where("ticket_type_id IS NULL")
	}
	return q.Where("ticket_type_id = ?", *ticketTypeID)
}

// MaxPosition must be called with the event row lock held so positions
// come out dense per queue.
func (r *waitlistRepoGorm) MaxPosition(eventID uint, ticketTypeID *uint) (int, error) {
	var max int
	err := scopeQueue(r.db, eventID, ticketTypeID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *waitlistRepoGorm) ActiveByEmail(eventID uint, ticketTypeID *uint, email string) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	err := scopeQueue(r.db, eventID, ticketTypeID).
		Where("email = ?", email).
		Where("status IN ?", model.ActiveWaitlistStatuses).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepoGorm) NextWaiting(eventID uint, ticketTypeID *uint) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	err := scopeQueue(r.db, eventID, ticketTypeID).
		Where("status = ?", model.WaitlistStatusWaiting).
		Order("position").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// WaitingForEvent returns waiting entries across all of the event's
// queues in position order, used by the post-refund scan.
func (r *waitlistRepoGorm) WaitingForEvent(eventID uint) ([]model.WaitlistEntry, error) {
	var entries []model.WaitlistEntry
	err := r.db.Model(&model.WaitlistEntry{}).
		Where("event_id = ?", eventID).
		Where("status = ?", model.WaitlistStatusWaiting).
		Order("position").
		Find(&entries).Error
	return entries, err
}
