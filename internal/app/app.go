package app

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/config"
	"github.com/tessera-live/tessera/internal/cache"
	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/mq"
	"github.com/tessera-live/tessera/internal/repository"
	"github.com/tessera-live/tessera/internal/service/domain"
	"github.com/tessera-live/tessera/internal/service/workflow"
)

type App struct {
	Config *config.Config

	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger
	MQConn *amqp.Connection

	EventRepo      repository.EventRepo
	TicketTypeRepo repository.TicketTypeRepo
	OrderRepo      repository.OrderRepo
	PromoCodeRepo  repository.PromoCodeRepo
	WaitlistRepo   repository.WaitlistRepo
	GuestListRepo  repository.GuestListRepo

	CatalogService   domain.CatalogService
	IssuerService    domain.IssuerService
	PaymentService   domain.PaymentService
	RefundService    domain.RefundService
	WaitlistService  domain.WaitlistService
	GuestListService domain.GuestListService
	TicketService    domain.TicketService

	CheckoutWorkflow     *workflow.CheckoutWorkflow
	BoxOfficeWorkflow    *workflow.BoxOfficeWorkflow
	GuestListWorkflow    *workflow.GuestListWorkflow
	WaitlistWorkflow     *workflow.WaitlistWorkflow
	RefundWorkflow       *workflow.RefundWorkflow
	NotificationWorkflow *workflow.NotificationWorkflow
}

func New(cfg *config.Config, db *gorm.DB, redisCache *cache.RedisCache,
	mqConn *amqp.Connection, logger *zap.Logger, provider domain.PaymentProvider) *App {
	eventRepo := repository.NewEventRepoGorm(db)
	ttRepo := repository.NewTicketTypeRepoGorm(db)
	orderRepo := repository.NewOrderRepoGorm(db)
	promoRepo := repository.NewPromoCodeRepoGorm(db)
	waitlistRepo := repository.NewWaitlistRepoGorm(db)
	guestListRepo := repository.NewGuestListRepoGorm(db)

	catalogService := domain.NewCatalogService(db, redisCache, logger, eventRepo, ttRepo, promoRepo)
	issuerService := domain.NewIssuerService(db, logger, eventRepo, ttRepo, orderRepo, promoRepo)
	paymentService := domain.NewPaymentService(cfg.PaymentMode, cfg.Currency, provider)
	refundService := domain.NewRefundService(db, logger, orderRepo, ttRepo)
	waitlistService := domain.NewWaitlistService(db, logger, cfg.WaitlistOfferTTL, waitlistRepo, eventRepo)
	guestListService := domain.NewGuestListService(db, logger, guestListRepo, ttRepo, issuerService)
	ticketService := domain.NewTicketService(db, logger, orderRepo)

	checkoutWorkflow := workflow.NewCheckoutWorkflow(cfg, logger, redisCache, mqConn,
		catalogService, issuerService, paymentService, waitlistService)
	boxOfficeWorkflow := workflow.NewBoxOfficeWorkflow(logger, mqConn, issuerService)
	guestListWorkflow := workflow.NewGuestListWorkflow(logger, mqConn, guestListService)
	waitlistWorkflow := workflow.NewWaitlistWorkflow(logger, mqConn, waitlistService)
	refundWorkflow := workflow.NewRefundWorkflow(logger, mqConn, paymentService, refundService, waitlistWorkflow)
	notificationWorkflow := workflow.NewNotificationWorkflow(logger,
		workflow.NewLogDispatcher(logger), waitlistService)

	return &App{
		Config: cfg,
		DB:     db,
		Cache:  redisCache,
		Logger: logger,
		MQConn: mqConn,

		EventRepo:      eventRepo,
		TicketTypeRepo: ttRepo,
		OrderRepo:      orderRepo,
		PromoCodeRepo:  promoRepo,
		WaitlistRepo:   waitlistRepo,
		GuestListRepo:  guestListRepo,

		CatalogService:   catalogService,
		IssuerService:    issuerService,
		PaymentService:   paymentService,
		RefundService:    refundService,
		WaitlistService:  waitlistService,
		GuestListService: guestListService,
		TicketService:    ticketService,

		CheckoutWorkflow:     checkoutWorkflow,
		BoxOfficeWorkflow:    boxOfficeWorkflow,
		GuestListWorkflow:    guestListWorkflow,
		WaitlistWorkflow:     waitlistWorkflow,
		RefundWorkflow:       refundWorkflow,
		NotificationWorkflow: notificationWorkflow,
	}
}

func (app *App) Migrate() error {
	return app.DB.AutoMigrate(
		&model.Event{},
		&model.TicketType{},
		&model.PricingTier{},
		&model.PromoCode{},
		&model.Order{},
		&model.Ticket{},
		&model.WaitlistEntry{},
		&model.GuestListEntry{},
	)
}

func (app *App) Init() error {
	if err := mq.InitQueues(app.MQConn, app.Config.WaitlistOfferTTL); err != nil {
		return err
	}

	if err := app.NotificationWorkflow.Start(app.MQConn); err != nil {
		return err
	}

	return nil
}

func (app *App) Close() error {
	sqlDB, err := app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
