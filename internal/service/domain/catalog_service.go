package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/internal/cache"
	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/repository"
	"github.com/tessera-live/tessera/internal/service"
)

type CatalogService interface {
	CreateEvent(event *model.Event) error
	PublishEvent(eventID uint) error
	CancelEvent(eventID uint) error
	GetEventByID(id uint) (*model.Event, error)
	GetEventBySlug(slug string) (*model.Event, error)
	ListPublishedEvents() ([]model.Event, error)
	CreateTicketType(tt *model.TicketType) error
	GetTicketType(id uint) (*model.TicketType, error)
	TicketTypesForEvent(eventID uint) ([]model.TicketType, error)
	CreatePricingTier(tier *model.PricingTier) error
	CreatePromoCode(promo *model.PromoCode) error
	ResolvePromoCode(eventID uint, code string) (*model.PromoCode, error)
}

type catalogService struct {
	db        *gorm.DB
	cache     *cache.RedisCache
	logger    *zap.Logger
	eventRepo repository.EventRepo
	ttRepo    repository.TicketTypeRepo
	promoRepo repository.PromoCodeRepo
}

var _ CatalogService = (*catalogService)(nil)

func NewCatalogService(db *gorm.DB, redisCache *cache.RedisCache, logger *zap.Logger,
	eventRepo repository.EventRepo, ttRepo repository.TicketTypeRepo,
	promoRepo repository.PromoCodeRepo) *catalogService {
	return &catalogService{
		db:        db,
		cache:     redisCache,
		logger:    logger,
		eventRepo: eventRepo,
		ttRepo:    ttRepo,
		promoRepo: promoRepo,
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func hexSuffix() string {
	b := make([]byte, 3)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func (s *catalogService) CreateEvent(event *model.Event) error {
	if event.Title == "" {
		return service.Validationf("title", "must not be empty")
	}
	if !event.EndsAt.After(event.StartsAt) {
		return service.Validationf("ends_at", "must be after starts_at")
	}
	if event.Status == "" {
		event.Status = model.EventStatusDraft
	}

	slug := slugify(event.Title)
	taken, err := s.eventRepo.SlugExists(slug)
	if err != nil {
		return err
	}
	if taken {
		slug = slug + "-" + hexSuffix()
	}
	event.Slug = slug

	if err := s.eventRepo.Create(event); err != nil {
		return err
	}
	s.logger.Info("event created",
		zap.Uint("event_id", event.ID),
		zap.String("slug", event.Slug))
	return nil
}

func (s *catalogService) PublishEvent(eventID uint) error {
	return s.transitionEvent(eventID, (*model.Event).Publish)
}

func (s *catalogService) CancelEvent(eventID uint) error {
	return s.transitionEvent(eventID, (*model.Event).Cancel)
}

func (s *catalogService) transitionEvent(eventID uint, transition func(*model.Event) error) error {
	event, err := s.GetEventByID(eventID)
	if err != nil {
		return err
	}
	if err := transition(event); err != nil {
		return err
	}
	if err := s.eventRepo.Save(event); err != nil {
		return err
	}
	return s.invalidate(event)
}

func (s *catalogService) invalidate(event *model.Event) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateEvent(event.ID, event.Slug); err != nil {
		s.logger.Warn("catalog cache invalidation failed",
			zap.Uint("event_id", event.ID), zap.Error(err))
	}
	return nil
}

func (s *catalogService) GetEventByID(id uint) (*model.Event, error) {
	event, err := s.eventRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *catalogService) GetEventBySlug(slug string) (*model.Event, error) {
	if s.cache != nil {
		if eventID, found, err := s.cache.GetEventSlug(slug); err == nil && found {
			return s.GetEventByID(eventID)
		}
	}
	event, err := s.eventRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetEventSlug(slug, event.ID); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return event, nil
}

func (s *catalogService) ListPublishedEvents() ([]model.Event, error) {
	return s.eventRepo.ListPublished()
}

func (s *catalogService) CreateTicketType(tt *model.TicketType) error {
	if tt.PriceCents < 0 {
		return service.Validationf("price_cents", "must not be negative")
	}
	if tt.QuantityAvailable <= 0 {
		return service.Validationf("quantity_available", "must be positive")
	}
	if tt.MaxPerOrder <= 0 {
		return service.Validationf("max_per_order", "must be positive")
	}
	event, err := s.GetEventByID(tt.EventID)
	if err != nil {
		return err
	}
	if err := s.ttRepo.Create(tt); err != nil {
		return err
	}
	return s.invalidate(event)
}

func (s *catalogService) GetTicketType(id uint) (*model.TicketType, error) {
	tt, err := s.ttRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return tt, nil
}

func (s *catalogService) TicketTypesForEvent(eventID uint) ([]model.TicketType, error) {
	return s.ttRepo.GetByEventID(eventID)
}

func (s *catalogService) CreatePricingTier(tier *model.PricingTier) error {
	if tier.PriceCents < 0 {
		return service.Validationf("price_cents", "must not be negative")
	}
	tt, err := s.GetTicketType(tier.TicketTypeID)
	if err != nil {
		return err
	}
	if err := s.db.Create(tier).Error; err != nil {
		return err
	}
	event, err := s.GetEventByID(tt.EventID)
	if err != nil {
		return err
	}
	return s.invalidate(event)
}

func (s *catalogService) CreatePromoCode(promo *model.PromoCode) error {
	if promo.Code == "" {
		return service.Validationf("code", "must not be empty")
	}
	if promo.DiscountType != model.DiscountTypePercentage && promo.DiscountType != model.DiscountTypeFixed {
		return service.Validationf("discount_type", "must be percentage or fixed")
	}
	if promo.DiscountValue <= 0 {
		return service.Validationf("discount_value", "must be positive")
	}
	if _, err := s.GetEventByID(promo.EventID); err != nil {
		return err
	}
	promo.Code = strings.ToUpper(promo.Code)
	return s.promoRepo.Create(promo)
}

func (s *catalogService) ResolvePromoCode(eventID uint, code string) (*model.PromoCode, error) {
	promo, err := s.promoRepo.GetByEventAndCode(eventID, strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	if !promo.Usable(time.Now()) {
		return nil, service.ErrPromoNotUsable
	}
	return promo, nil
}
