package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/codbridge/internal/models"
)

// GormShopDirectory implements ShopDirectory on top of Postgres.
type GormShopDirectory struct {
	db *gorm.DB
}

// NewGormShopDirectory constructs a GormShopDirectory.
func NewGormShopDirectory(db *gorm.DB) *GormShopDirectory {
	return &GormShopDirectory{db: db}
}

func (s *GormShopDirectory) FindByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.WithContext(ctx).Where("shop_domain = ?", domain).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (s *GormShopDirectory) Save(ctx context.Context, shop *models.Shop) error {
	var existing models.Shop
	err := s.db.WithContext(ctx).Where("shop_domain = ?", shop.ShopDomain).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(shop).Error
	}
	if err != nil {
		return err
	}
	shop.ID = existing.ID
	shop.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(shop).Error
}

func (s *GormShopDirectory) Deactivate(ctx context.Context, domain string) error {
	return s.db.WithContext(ctx).Model(&models.Shop{}).
		Where("shop_domain = ?", domain).
		Updates(map[string]any{"is_active": false, "access_token": ""}).Error
}

// GormVerificationStore implements VerificationStore on top of Postgres.
type GormVerificationStore struct {
	db *gorm.DB
}

// NewGormVerificationStore constructs a GormVerificationStore.
func NewGormVerificationStore(db *gorm.DB) *GormVerificationStore {
	return &GormVerificationStore{db: db}
}

func (s *GormVerificationStore) DeleteUnverified(ctx context.Context, phone string) error {
	return s.db.WithContext(ctx).
		Where("phone = ? AND verified = ?", phone, false).
		Delete(&models.PhoneVerification{}).Error
}

func (s *GormVerificationStore) Create(ctx context.Context, rec *models.PhoneVerification) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormVerificationStore) LatestUnverified(ctx context.Context, phone string) (*models.PhoneVerification, error) {
	var rec models.PhoneVerification
	err := s.db.WithContext(ctx).
		Where("phone = ? AND verified = ?", phone, false).
		Order("created_at desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormVerificationStore) Update(ctx context.Context, rec *models.PhoneVerification) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

func (s *GormVerificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.PhoneVerification{}, "id = ?", id).Error
}

// GormOrderStore implements OrderStore on top of Postgres.
type GormOrderStore struct {
	db *gorm.DB
}

// NewGormOrderStore constructs a GormOrderStore.
func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

func (s *GormOrderStore) Create(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *GormOrderStore) ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("shop_id = ?", shopID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GormPixelDirectory implements PixelDirectory on top of Postgres.
type GormPixelDirectory struct {
	db *gorm.DB
}

// NewGormPixelDirectory constructs a GormPixelDirectory.
func NewGormPixelDirectory(db *gorm.DB) *GormPixelDirectory {
	return &GormPixelDirectory{db: db}
}

func (s *GormPixelDirectory) ActiveIntegration(ctx context.Context, shopDomain string) (*models.MetaIntegration, error) {
	var shop models.Shop
	err := s.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var integration models.MetaIntegration
	err = s.db.WithContext(ctx).
		Where("shop_id = ? AND is_active = ?", shop.ID, true).
		Preload("Pixels", "is_active = ?", true).
		First(&integration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &integration, nil
}
