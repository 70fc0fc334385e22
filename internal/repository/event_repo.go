package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tessera-live/tessera/internal/model"
)

type EventRepo interface {
	WithTx(tx *gorm.DB) EventRepo
	Create(event *model.Event) error
	GetByID(id uint) (*model.Event, error)
	GetByIDForUpdate(id uint) (*model.Event, error)
	GetBySlug(slug string) (*model.Event, error)
	SlugExists(slug string) (bool, error)
	Save(event *model.Event) error
	ListPublished() ([]model.Event, error)
}

type eventRepoGorm struct {
	db *gorm.DB
}

var _ EventRepo = (*eventRepoGorm)(nil)

func NewEventRepoGorm(db *gorm.DB) *eventRepoGorm {
	return &eventRepoGorm{
		db: db,
	}
}

func (r *eventRepoGorm) WithTx(tx *gorm.DB) EventRepo {
	return &eventRepoGorm{
		db: tx,
	}
}

func (r *eventRepoGorm) Create(event *model.Event) error {
	ctx := context.Background()
	return gorm.G[model.Event](r.db).Create(ctx, event)
}

func (r *eventRepoGorm) GetByID(id uint) (*model.Event, error) {
	ctx := context.Background()
	event, err := gorm.G[model.Event](r.db).Where(&model.Event{ID: id}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByIDForUpdate takes the event row lock. The waitlist uses it to
// serialize position assignment per event.
func (r *eventRepoGorm) GetByIDForUpdate(id uint) (*model.Event, error) {
	var event model.Event
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepoGorm) GetBySlug(slug string) (*model.Event, error) {
	ctx := context.Background()
	event, err := gorm.G[model.Event](r.db).Where(&model.Event{Slug: slug}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepoGorm) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Event{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *eventRepoGorm) Save(event *model.Event) error {
	return r.db.Save(event).Error
}

func (r *eventRepoGorm) ListPublished() ([]model.Event, error) {
	ctx := context.Background()
	return gorm.G[model.Event](r.db).
		Where(&model.Event{Status: model.EventStatusPublished}).
		Find(ctx)
}
