package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tessera-live/tessera/internal/model"
)

type OrderRepo interface {
	WithTx(tx *gorm.DB) OrderRepo
	Create(order *model.Order) error
	GetByID(id uint) (*model.Order, error)
	GetByIDForUpdate(id uint) (*model.Order, error)
	Save(order *model.Order) error
	CreateTicket(ticket *model.Ticket) error
	GetTicketsByOrderID(orderID uint) ([]model.Ticket, error)
	GetTicketByQRCode(code string) (*model.Ticket, error)
	SaveTicket(ticket *model.Ticket) error
}

type orderRepoGorm struct {
	db *gorm.DB
}

var _ OrderRepo = (*orderRepoGorm)(nil)

func NewOrderRepoGorm(db *gorm.DB) *orderRepoGorm {
	return &orderRepoGorm{
		db: db,
	}
}

func (r *orderRepoGorm) WithTx(tx *gorm.DB) OrderRepo {
	return &orderRepoGorm{
		db: tx,
	}
}

func (r *orderRepoGorm) Create(order *model.Order) error {
	ctx := context.Background()
	return gorm.G[model.Order](r.db).Create(ctx, order)
}

func (r *orderRepoGorm) GetByID(id uint) (*model.Order, error) {
	ctx := context.Background()
	order, err := gorm.G[model.Order](r.db).Where(&model.Order{ID: id}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate locks the order row, serializing concurrent refund
// attempts against the same order.
func (r *orderRepoGorm) GetByIDForUpdate(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoGorm) Save(order *model.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepoGorm) CreateTicket(ticket *model.Ticket) error {
	ctx := context.Background()
	return gorm.G[model.Ticket](r.db).Create(ctx, ticket)
}

func (r *orderRepoGorm) GetTicketsByOrderID(orderID uint) ([]model.Ticket, error) {
	ctx := context.Background()
	return gorm.G[model.Ticket](r.db).Where(&model.Ticket{OrderID: orderID}).Find(ctx)
}

func (r *orderRepoGorm) GetTicketByQRCode(code string) (*model.Ticket, error) {
	ctx := context.Background()
	ticket, err := gorm.G[model.Ticket](r.db).Where(&model.Ticket{QRCode: code}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *orderRepoGorm) SaveTicket(ticket *model.Ticket) error {
	return r.db.Save(ticket).Error
}
