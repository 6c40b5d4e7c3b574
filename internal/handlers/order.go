package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/codbridge/internal/middleware"
	"github.com/example/codbridge/internal/services"
	"github.com/example/codbridge/internal/store"
	"github.com/example/codbridge/internal/utils"
)

// OrderHandler manages COD order submission and the merchant order list.
type OrderHandler struct {
	svc    *services.OrderService
	shops  store.ShopDirectory
	orders store.OrderStore
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(svc *services.OrderService, shops store.ShopDirectory, orders store.OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, shops: shops, orders: orders}
}

type cartItemRequest struct {
	ID        int64 `json:"id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

type createOrderRequest struct {
	Shop            string            `json:"shop"`
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerAddress string            `json:"customerAddress"`
	CustomerCity    string            `json:"customerCity"`
	CustomerCountry string            `json:"customerCountry"`
	CustomerZip     string            `json:"customerZip"`
	CartItems       []cartItemRequest `json:"cartItems"`
	TotalAmount     int64             `json:"totalAmount"`
	CartToken       string            `json:"cartToken"`
	CodPaymentType  string            `json:"codPaymentType"`
	LandingPage     string            `json:"landingPage"`
	ReferringSite   string            `json:"referringSite"`
	UserAgent       string            `json:"userAgent"`
}

// Create submits a verified COD order to the platform.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	items := make([]services.CartItem, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		variantID := item.VariantID
		if variantID == 0 {
			variantID = item.ID
		}
		items = append(items, services.CartItem{
			VariantID: variantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	pending := services.PendingOrder{
		Shop:            req.Shop,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		CustomerCity:    req.CustomerCity,
		CustomerCountry: req.CustomerCountry,
		CustomerZip:     req.CustomerZip,
		CartItems:       items,
		TotalAmount:     req.TotalAmount,
		CartToken:       req.CartToken,
		CodPaymentType:  req.CodPaymentType,
		LandingPage:     req.LandingPage,
		ReferringSite:   req.ReferringSite,
		UserAgent:       req.UserAgent,
		ClientIP:        clientIP(c),
	}

	result, err := h.svc.Submit(c.Context(), pending)
	if err != nil {
		var validation *services.ValidationError
		var creation *services.OrderCreationError
		switch {
		case errors.As(err, &validation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validation.Message,
				"field": validation.Field,
			})
		case errors.Is(err, services.ErrShopNotAuthorized):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "shop configuration not found",
				"details": "please reinstall the application",
			})
		case errors.As(err, &creation):
			// The platform body is usually JSON but a proxy can hand back
			// HTML; pass it through as a plain string in that case.
			var details any = string(creation.Body)
			if json.Valid(creation.Body) {
				details = json.RawMessage(creation.Body)
			}
			return c.Status(creation.Status).JSON(fiber.Map{
				"error":   "order could not be created",
				"details": details,
			})
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"orderId":       result.OrderID,
		"orderNumber":   result.OrderNumber,
		"orderName":     result.OrderName,
		"redirectUrl":   result.RedirectURL,
		"checkoutToken": result.CheckoutToken,
		"shop":          req.Shop,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

// List returns the shop's local order copies, newest first.
func (h *OrderHandler) List(c *fiber.Ctx) error {
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

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListByShop(c.Context(), shop.ID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// clientIP resolves the end customer's IP from proxy headers, falling back
// to the connection address.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if real := c.Get("X-Real-Ip"); real != "" {
		return real
	}
	return c.IP()
}
