package models

import "github.com/google/uuid"

// MetaIntegration links a shop to a Meta Business account used for
// server-side conversion tracking.
type MetaIntegration struct {
	BaseModel
	ShopID                uuid.UUID   `gorm:"type:uuid;index" json:"shop_id"`
	MetaAccessToken       string      `json:"-"`
	MetaBusinessAccountID string      `json:"meta_business_account_id"`
	IsActive              bool        `json:"is_active"`
	Pixels                []MetaPixel `json:"pixels,omitempty"`
}

// MetaPixel is a tracking pixel registered under a Meta integration.
// A pixel-specific CAPI token takes precedence over the integration token.
type MetaPixel struct {
	BaseModel
	MetaIntegrationID uuid.UUID `gorm:"type:uuid;index" json:"meta_integration_id"`
	PixelID           string    `gorm:"index" json:"pixel_id"`
	Name              string    `json:"name"`
	CapiAccessToken   string    `json:"-"`
	IsActive          bool      `json:"is_active"`
}
