package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/codbridge/internal/middleware"
	"github.com/example/codbridge/internal/store"
)

// SettingsHandler exposes the shop's feature flags and popup texts to the
// embedded admin panel.
type SettingsHandler struct {
	shops store.ShopDirectory
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(shops store.ShopDirectory) *SettingsHandler {
	return &SettingsHandler{shops: shops}
}

// Get returns the current settings for the authenticated shop.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	shopDomain, ok := middleware.GetCurrentShop(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	shop, err := h.shops.FindByDomain(c.Context(), shopDomain)
	if err != nil {
		return err
	}
	if shop == nil {
		return fiber.NewError(fiber.StatusNotFound, "shop not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"shop_domain":       shop.ShopDomain,
			"is_active":         shop.IsActive,
			"cod_enabled":       shop.CodEnabled,
			"whatsapp_enabled":  shop.WhatsappEnabled,
			"popup_title":       shop.PopupTitle,
			"popup_description": shop.PopupDescription,
		},
	})
}

type updateSettingsRequest struct {
	CodEnabled       *bool   `json:"cod_enabled"`
	WhatsappEnabled  *bool   `json:"whatsapp_enabled"`
	PopupTitle       *string `json:"popup_title"`
	PopupDescription *string `json:"popup_description"`
}

// Update changes feature flags and popup texts. Absent fields are untouched.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	shopDomain, ok := middleware.GetCurrentShop(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	shop, err := h.shops.FindByDomain(c.Context(), shopDomain)
	if err != nil {
		return err
	}
	if shop == nil {
		return fiber.NewError(fiber.StatusNotFound, "shop not found")
	}

	if req.CodEnabled != nil {
		shop.CodEnabled = *req.CodEnabled
	}
	if req.WhatsappEnabled != nil {
		shop.WhatsappEnabled = *req.WhatsappEnabled
	}
	if req.PopupTitle != nil {
		shop.PopupTitle = *req.PopupTitle
	}
	if req.PopupDescription != nil {
		shop.PopupDescription = *req.PopupDescription
	}

	if err := h.shops.Save(c.Context(), shop); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
