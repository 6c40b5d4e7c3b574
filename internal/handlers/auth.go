package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/codbridge/internal/config"
	"github.com/example/codbridge/internal/models"
	"github.com/example/codbridge/internal/store"
)

// AuthHandler implements the app install flow: OAuth redirect, token
// exchange, and the uninstall webhook that deactivates the shop.
type AuthHandler struct {
	shops      store.ShopDirectory
	cfg        *config.Config
	httpClient *http.Client
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(shops store.ShopDirectory, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		shops:      shops,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Install redirects the merchant to the Shopify authorize screen.
func (h *AuthHandler) Install(c *fiber.Ctx) error {
	shop := c.Query("shop")
	if shop == "" {
		return fiber.NewError(fiber.StatusBadRequest, "shop parameter is required")
	}

	authorizeURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		h.cfg.ShopifyAPIKey,
		url.QueryEscape(h.cfg.ShopifyScopes),
		url.QueryEscape(h.cfg.AppURL+"/api/auth/callback"),
		uuid.NewString(),
	)

	return c.Redirect(authorizeURL, fiber.StatusFound)
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// Callback exchanges the OAuth code for an offline access token and upserts
// the shop record. Re-authorization refreshes the credential in place.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	shopDomain := c.Query("shop")
	if code == "" || shopDomain == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code and shop parameters are required")
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     h.cfg.ShopifyAPIKey,
		"client_secret": h.cfg.ShopifyAPISecret,
		"code":          code,
	})
	if err != nil {
		return err
	}

	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain)
	resp, err := h.httpClient.Post(tokenURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("exchange access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}

	var tokenResp accessTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return fmt.Errorf("unmarshal token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return fmt.Errorf("token exchange failed: status %d body %s", resp.StatusCode, string(body))
	}

	shop, err := h.shops.FindByDomain(c.Context(), shopDomain)
	if err != nil {
		return err
	}
	if shop == nil {
		shop = &models.Shop{
			ShopDomain:      shopDomain,
			CodEnabled:      true,
			WhatsappEnabled: true,
		}
	}
	shop.AccessToken = tokenResp.AccessToken
	shop.Scope = tokenResp.Scope
	shop.IsActive = true

	if err := h.shops.Save(c.Context(), shop); err != nil {
		return fmt.Errorf("save shop: %w", err)
	}

	log.Printf("[Auth] shop installed: %s", shopDomain)
	return c.Redirect(fmt.Sprintf("https://%s/admin/apps", shopDomain), fiber.StatusFound)
}

// Uninstalled handles the app/uninstalled webhook. The shop is deactivated,
// never deleted; its orders stay queryable.
func (h *AuthHandler) Uninstalled(c *fiber.Ctx) error {
	if !h.verifyWebhookHMAC(c) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid webhook signature")
	}

	shopDomain := c.Get("X-Shopify-Shop-Domain")
	if shopDomain == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing shop domain header")
	}

	if err := h.shops.Deactivate(c.Context(), shopDomain); err != nil {
		return err
	}

	log.Printf("[Auth] shop uninstalled: %s", shopDomain)
	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) verifyWebhookHMAC(c *fiber.Ctx) bool {
	received := c.Get("X-Shopify-Hmac-Sha256")
	if received == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.cfg.ShopifyAPISecret))
	mac.Write(c.Body())
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(received), []byte(expected))
}
