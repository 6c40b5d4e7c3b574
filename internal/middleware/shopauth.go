package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/codbridge/internal/config"
	"github.com/example/codbridge/internal/utils"
)

const shopContextKey = "currentShopDomain"

// ShopAuthMiddleware validates embedded-app session tokens and loads the
// authenticated shop domain into context.
func ShopAuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		shopDomain, err := utils.ParseSessionToken(cfg.ShopifyAPISecret, cfg.ShopifyAPIKey, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session token")
		}

		c.Locals(shopContextKey, shopDomain)
		return c.Next()
	}
}

// GetCurrentShop extracts the authenticated shop domain from context.
func GetCurrentShop(c *fiber.Ctx) (string, bool) {
	value := c.Locals(shopContextKey)
	if value == nil {
		return "", false
	}

	if domain, ok := value.(string); ok && domain != "" {
		return domain, true
	}

	return "", false
}
