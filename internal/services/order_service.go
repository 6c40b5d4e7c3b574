package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/codbridge/internal/models"
	"github.com/example/codbridge/internal/store"
)

// ErrShopNotAuthorized means the shop is unknown or carries no access
// credential; nothing external has been called yet.
var ErrShopNotAuthorized = errors.New("shop is not installed or has no access credential")

// ValidationError reports a rejected submission before any external call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// CommerceGateway wraps the external commerce platform calls the
// orchestrator depends on. *ShopifyService is the production implementation.
type CommerceGateway interface {
	SearchCustomerByPhone(ctx context.Context, shop, token, phone string) (int64, error)
	CreateCustomer(ctx context.Context, shop, token string, in CustomerInput) (int64, error)
	CreateOrder(ctx context.Context, shop, token string, payload OrderPayload) (*PlatformOrder, error)
	CreateMarketingEvent(ctx context.Context, shop, token string, in MarketingEventInput) (int64, error)
	CreateEngagement(ctx context.Context, shop, token string, eventID int64) error
	CreateOrderMetafield(ctx context.Context, shop, token string, orderID int64, field Metafield) error
}

// SubmitResult is returned once the platform order exists, regardless of
// side-effect outcomes.
type SubmitResult struct {
	OrderID       int64
	OrderNumber   int64
	OrderName     string
	RedirectURL   string
	CheckoutToken string
}

// OrderService orchestrates the end-to-end COD submission: validate, resolve
// the customer, place the platform order, fire best-effort tracking side
// effects, persist a local copy, and compute the redirect target.
type OrderService struct {
	shops       store.ShopDirectory
	orders      store.OrderStore
	commerce    CommerceGateway
	conversions ConversionGateway
}

// NewOrderService constructs an OrderService.
func NewOrderService(shops store.ShopDirectory, orders store.OrderStore, commerce CommerceGateway, conversions ConversionGateway) *OrderService {
	return &OrderService{
		shops:       shops,
		orders:      orders,
		commerce:    commerce,
		conversions: conversions,
	}
}

// sideEffect is one best-effort post-creation task. Every task runs under the
// same catch-and-log wrapper; none can fail the submission.
type sideEffect struct {
	name string
	run  func(ctx context.Context) error
}

// Submit processes a pending COD order. The caller's phone must already be
// verified through the verification service; submission trusts that claim.
func (s *OrderService) Submit(ctx context.Context, pending PendingOrder) (*SubmitResult, error) {
	// Step 1: validate before touching anything external.
	if err := validatePending(pending); err != nil {
		return nil, err
	}

	// Step 2: resolve the shop credential.
	shop, err := s.shops.FindByDomain(ctx, pending.Shop)
	if err != nil {
		return nil, fmt.Errorf("resolve shop: %w", err)
	}
	if shop == nil || shop.AccessToken == "" {
		return nil, ErrShopNotAuthorized
	}
	token := shop.AccessToken

	checkoutToken := pending.CartToken
	if checkoutToken == "" {
		checkoutToken = SynthCheckoutToken()
	}

	// Step 3: resolve the customer; every failure here degrades to inline
	// customer fields on the order itself.
	customerID := s.resolveCustomer(ctx, pending, token)

	// Step 4: compose and submit the order. Failure is fatal and passes the
	// platform's status and body through verbatim.
	payload := BuildOrderPayload(pending, customerID, checkoutToken)
	order, err := s.commerce.CreateOrder(ctx, pending.Shop, token, payload)
	if err != nil {
		return nil, err
	}
	log.Printf("[Order] platform order created: id=%d number=%d", order.ID, order.OrderNumber)

	// Steps 5-6: tracking side effects and the local copy, each isolated.
	firstName, lastName := SplitName(pending.CustomerName)
	effects := []sideEffect{
		{
			name: "marketing event",
			run: func(ctx context.Context) error {
				eventID, err := s.commerce.CreateMarketingEvent(ctx, pending.Shop, token, BuildMarketingEvent(pending, order.ID))
				if err != nil {
					return err
				}
				return s.commerce.CreateEngagement(ctx, pending.Shop, token, eventID)
			},
		},
		{
			name: "order metafields",
			run: func(ctx context.Context) error {
				for _, field := range TrackingMetafields(pending, checkoutToken) {
					if err := s.commerce.CreateOrderMetafield(ctx, pending.Shop, token, order.ID, field); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			name: "conversion events",
			run: func(ctx context.Context) error {
				user := ConversionUser{
					Email:     pending.CustomerEmail,
					Phone:     pending.CustomerPhone,
					FirstName: firstName,
					LastName:  lastName,
					City:      pending.CustomerCity,
					Country:   pending.CustomerCountry,
				}
				return s.conversions.SendPurchaseEvent(ctx, pending.Shop, order, user, pending.ClientIP, pending.UserAgent)
			},
		},
		{
			name: "local copy",
			run: func(ctx context.Context) error {
				return s.orders.Create(ctx, &models.Order{
					ShopID:          shop.ID,
					OrderID:         fmt.Sprintf("%d", order.ID),
					OrderNumber:     order.Name,
					CustomerName:    pending.CustomerName,
					CustomerPhone:   pending.CustomerPhone,
					CustomerEmail:   pending.CustomerEmail,
					CustomerAddress: pending.CustomerAddress,
					CustomerCity:    pending.CustomerCity,
					CustomerCountry: orDefault(pending.CustomerCountry, "TR"),
					CustomerZip:     pending.CustomerZip,
					PaymentMethod:   "COD",
					CodPaymentType:  pending.CodPaymentType,
					OrderStatus:     "pending",
					TotalAmount:     float64(pending.TotalAmount) / 100,
				})
			},
		},
	}

	for _, effect := range effects {
		if err := effect.run(ctx); err != nil {
			log.Printf("[Order] %s side effect failed: %v", effect.name, err)
		}
	}

	// Step 7: three-tier redirect fallback, always non-empty.
	redirect := order.OrderStatusURL
	if redirect == "" {
		if order.ID != 0 {
			redirect = fmt.Sprintf("https://%s/account/orders/%d", pending.Shop, order.ID)
		} else {
			redirect = "https://" + pending.Shop
		}
	}

	return &SubmitResult{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		OrderName:     order.Name,
		RedirectURL:   redirect,
		CheckoutToken: checkoutToken,
	}, nil
}

func (s *OrderService) resolveCustomer(ctx context.Context, pending PendingOrder, token string) int64 {
	customerID, err := s.commerce.SearchCustomerByPhone(ctx, pending.Shop, token, pending.CustomerPhone)
	if err != nil {
		log.Printf("[Order] customer search failed (continuing): %v", err)
	}
	if customerID != 0 {
		return customerID
	}

	firstName, lastName := SplitName(pending.CustomerName)
	created, err := s.commerce.CreateCustomer(ctx, pending.Shop, token, CustomerInput{
		FirstName: firstName,
		LastName:  lastName,
		Email:     orDefault(pending.CustomerEmail, PlaceholderEmail()),
		Phone:     "+90" + pending.CustomerPhone,
	})
	if err != nil {
		log.Printf("[Order] customer creation failed (continuing): %v", err)
		return 0
	}
	return created
}

func validatePending(pending PendingOrder) error {
	switch {
	case pending.Shop == "":
		return &ValidationError{Field: "shop", Message: "shop domain is required"}
	case pending.CustomerName == "":
		return &ValidationError{Field: "customerName", Message: "customer name is required"}
	case pending.CustomerPhone == "":
		return &ValidationError{Field: "customerPhone", Message: "customer phone is required"}
	case pending.CustomerAddress == "":
		return &ValidationError{Field: "customerAddress", Message: "customer address is required"}
	}

	if pending.CodPaymentType != "cash" && pending.CodPaymentType != "card" {
		return &ValidationError{Field: "codPaymentType", Message: "cod payment type must be cash or card"}
	}

	return nil
}
