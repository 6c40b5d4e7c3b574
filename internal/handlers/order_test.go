package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/codbridge/internal/models"
	"github.com/example/codbridge/internal/services"
	"github.com/example/codbridge/internal/store"
)

// failingCommerce answers customer resolution but rejects order creation
// with a fixed platform response.
type failingCommerce struct {
	status int
	body   []byte
}

func (f *failingCommerce) SearchCustomerByPhone(ctx context.Context, shop, token, phone string) (int64, error) {
	return 7001, nil
}

func (f *failingCommerce) CreateCustomer(ctx context.Context, shop, token string, in services.CustomerInput) (int64, error) {
	return 0, nil
}

func (f *failingCommerce) CreateOrder(ctx context.Context, shop, token string, payload services.OrderPayload) (*services.PlatformOrder, error) {
	return nil, &services.OrderCreationError{Status: f.status, Body: f.body}
}

func (f *failingCommerce) CreateMarketingEvent(ctx context.Context, shop, token string, in services.MarketingEventInput) (int64, error) {
	return 0, nil
}

func (f *failingCommerce) CreateEngagement(ctx context.Context, shop, token string, eventID int64) error {
	return nil
}

func (f *failingCommerce) CreateOrderMetafield(ctx context.Context, shop, token string, orderID int64, field services.Metafield) error {
	return nil
}

type noopConversions struct{}

func (noopConversions) SendPurchaseEvent(ctx context.Context, shopDomain string, order *services.PlatformOrder, user services.ConversionUser, clientIP, userAgent string) error {
	return nil
}

func orderApp(t *testing.T, commerce services.CommerceGateway) *fiber.App {
	t.Helper()
	shops := store.NewMemoryShopDirectory()
	if err := shops.Save(context.Background(), &models.Shop{
		ShopDomain:  "demo.myshopify.com",
		AccessToken: "shpat_test",
		IsActive:    true,
	}); err != nil {
		t.Fatal(err)
	}
	orders := store.NewMemoryOrderStore()
	svc := services.NewOrderService(shops, orders, commerce, noopConversions{})
	handler := NewOrderHandler(svc, shops, orders)

	app := fiber.New()
	app.Post("/api/orders", handler.Create)
	return app
}

func codOrderBody() fiber.Map {
	return fiber.Map{
		"shop":            "demo.myshopify.com",
		"customerName":    "Ayşe Yılmaz",
		"customerPhone":   "5551234567",
		"customerAddress": "Istiklal Cd. 1",
		"codPaymentType":  "cash",
		"cartItems":       []fiber.Map{{"variant_id": 1, "quantity": 1, "price": 1000}},
		"totalAmount":     1000,
	}
}

func TestCreateOrderPassesThroughPlatformJSONError(t *testing.T) {
	app := orderApp(t, &failingCommerce{
		status: http.StatusUnprocessableEntity,
		body:   []byte(`{"errors":{"line_items":"invalid"}}`),
	})

	resp, body := postJSON(t, app, "/api/orders", codOrderBody())
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 passthrough", resp.StatusCode)
	}

	details, ok := body["details"].(map[string]any)
	if !ok {
		t.Fatalf("details = %T, want embedded JSON object", body["details"])
	}
	if _, ok := details["errors"]; !ok {
		t.Errorf("details = %v, want platform errors preserved", details)
	}
}

func TestCreateOrderPassesThroughNonJSONErrorBody(t *testing.T) {
	app := orderApp(t, &failingCommerce{
		status: http.StatusBadGateway,
		body:   []byte("<html>Bad Gateway</html>"),
	})

	resp, body := postJSON(t, app, "/api/orders", codOrderBody())
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 passthrough", resp.StatusCode)
	}
	if body["details"] != "<html>Bad Gateway</html>" {
		t.Errorf("details = %v, want raw body as string", body["details"])
	}
}
