package models

// Shop stores the per-store credential and feature flags obtained during
// app installation. Shops are deactivated on uninstall, never deleted.
type Shop struct {
	BaseModel
	ShopDomain      string `gorm:"uniqueIndex" json:"shop_domain"`
	AccessToken     string `json:"-"`
	Scope           string `json:"scope"`
	IsActive        bool   `json:"is_active"`
	CodEnabled      bool   `json:"cod_enabled"`
	WhatsappEnabled bool   `json:"whatsapp_enabled"`

	// Storefront popup texts managed from the admin panel.
	PopupTitle       string `json:"popup_title"`
	PopupDescription string `json:"popup_description"`
}
