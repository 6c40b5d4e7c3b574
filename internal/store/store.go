package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/codbridge/internal/models"
)

// ShopDirectory resolves shop domains to credentials and feature flags.
type ShopDirectory interface {
	// FindByDomain returns the shop for a domain, or nil when unknown.
	FindByDomain(ctx context.Context, domain string) (*models.Shop, error)
	// Save upserts a shop keyed by its domain.
	Save(ctx context.Context, shop *models.Shop) error
	// Deactivate flags a shop inactive and clears its credential.
	Deactivate(ctx context.Context, domain string) error
}

// VerificationStore persists OTP verification records keyed by phone number.
type VerificationStore interface {
	// DeleteUnverified removes every unverified record for a phone.
	DeleteUnverified(ctx context.Context, phone string) error
	Create(ctx context.Context, rec *models.PhoneVerification) error
	// LatestUnverified returns the most recently created unverified record
	// for a phone, or nil when none exists.
	LatestUnverified(ctx context.Context, phone string) (*models.PhoneVerification, error)
	Update(ctx context.Context, rec *models.PhoneVerification) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderStore persists local copies of submitted orders.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]models.Order, int64, error)
}

// PixelDirectory resolves the active conversion-tracking targets of a shop.
type PixelDirectory interface {
	// ActiveIntegration returns the shop's active Meta integration with its
	// active pixels preloaded, or nil when the shop has none.
	ActiveIntegration(ctx context.Context, shopDomain string) (*models.MetaIntegration, error)
}
