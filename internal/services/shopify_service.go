package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const shopifyAPIVersion = "2025-04"

// ShopifyRequestOpts captures inputs for Shopify Admin API calls.
type ShopifyRequestOpts struct {
	Shop   string
	Token  string
	Method string
	Path   string
	Query  map[string]string
	Body   any
}

// ShopifyResponse bundles the HTTP response metadata.
type ShopifyResponse struct {
	Status int
	Body   []byte
	Header http.Header
}

// ShopifyService wraps the Shopify Admin REST API. Each call is a single
// attempt with a bounded timeout; callers decide whether a failure is fatal.
type ShopifyService struct {
	httpClient *http.Client
}

// NewShopifyService constructs a ShopifyService with the given per-call timeout.
func NewShopifyService(timeout time.Duration) *ShopifyService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ShopifyService{httpClient: &http.Client{Timeout: timeout}}
}

// DoRequest performs a generic Admin API request against the shop, returning
// the raw status, body and headers.
func (s *ShopifyService) DoRequest(ctx context.Context, opts ShopifyRequestOpts) (*ShopifyResponse, error) {
	if opts.Shop == "" {
		return nil, errors.New("shop domain is required")
	}
	if opts.Method == "" {
		return nil, errors.New("request method is required")
	}
	path := strings.TrimLeft(opts.Path, "/")
	if path == "" {
		return nil, errors.New("request path is required")
	}

	u := url.URL{
		Scheme: "https",
		Host:   opts.Shop,
		Path:   fmt.Sprintf("/admin/api/%s/%s", shopifyAPIVersion, path),
	}
	if len(opts.Query) > 0 {
		values := u.Query()
		for k, v := range opts.Query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Shopify-Access-Token", opts.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &ShopifyResponse{
		Status: resp.StatusCode,
		Body:   respBody,
		Header: resp.Header.Clone(),
	}, nil
}

// SearchCustomerByPhone looks up an existing customer id by phone number.
// Returns 0 when no customer matches.
func (s *ShopifyService) SearchCustomerByPhone(ctx context.Context, shop, token, phone string) (int64, error) {
	resp, err := s.DoRequest(ctx, ShopifyRequestOpts{
		Shop:   shop,
		Token:  token,
		Method: http.MethodGet,
		Path:   "customers/search.json",
		Query:  map[string]string{"query": "phone:" + phone},
	})
	if err != nil {
		return 0, fmt.Errorf("search customer: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return 0, fmt.Errorf("search customer: status %d body %s", resp.Status, string(resp.Body))
	}

	var result struct {
		Customers []struct {
			ID int64 `json:"id"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return 0, fmt.Errorf("unmarshal customer search response: %w", err)
	}
	if len(result.Customers) == 0 {
		return 0, nil
	}
	return result.Customers[0].ID, nil
}

// CustomerInput describes a customer record to create on the platform.
type CustomerInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// CreateCustomer creates a new customer record and returns its id.
func (s *ShopifyService) CreateCustomer(ctx context.Context, shop, token string, in CustomerInput) (int64, error) {
	payload := map[string]any{
		"customer": map[string]any{
			"first_name":     in.FirstName,
			"last_name":      in.LastName,
			"email":          in.Email,
			"phone":          in.Phone,
			"verified_email": false,
			"tags":           "",
		},
	}

	resp, err := s.DoRequest(ctx, ShopifyRequestOpts{
		Shop:   shop,
		Token:  token,
		Method: http.MethodPost,
		Path:   "customers.json",
		Body:   payload,
	})
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return 0, fmt.Errorf("create customer: status %d body %s", resp.Status, string(resp.Body))
	}

	var result struct {
		Customer struct {
			ID int64 `json:"id"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return 0, fmt.Errorf("unmarshal customer response: %w", err)
	}
	if result.Customer.ID == 0 {
		return 0, errors.New("customer response missing id")
	}
	return result.Customer.ID, nil
}

// PlatformLineItem is a line item as echoed back by the platform.
type PlatformLineItem struct {
	VariantID int64  `json:"variant_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// PlatformOrder is the created order as returned by the platform.
type PlatformOrder struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	OrderNumber    int64              `json:"order_number"`
	OrderStatusURL string             `json:"order_status_url"`
	TotalPrice     string             `json:"total_price"`
	LineItems      []PlatformLineItem `json:"line_items"`
}

// OrderCreationError carries the external platform's verbatim failure so the
// handler can pass the status and body through to the caller.
type OrderCreationError struct {
	Status int
	Body   []byte
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed: status %d body %s", e.Status, string(e.Body))
}

// CreateOrder submits an order payload. A non-2xx answer is returned as an
// *OrderCreationError preserving the external status and body.
func (s *ShopifyService) CreateOrder(ctx context.Context, shop, token string, payload OrderPayload) (*PlatformOrder, error) {
	resp, err := s.DoRequest(ctx, ShopifyRequestOpts{
		Shop:   shop,
		Token:  token,
		Method: http.MethodPost,
		Path:   "orders.json",
		Body:   map[string]any{"order": payload},
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return nil, &OrderCreationError{Status: resp.Status, Body: resp.Body}
	}

	var result struct {
		Order PlatformOrder `json:"order"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w", err)
	}
	if result.Order.ID == 0 {
		return nil, errors.New("order response missing id")
	}
	return &result.Order, nil
}

// MarketingEventInput describes a conversion marketing event.
type MarketingEventInput struct {
	RemoteID        string `json:"remote_id"`
	EventType       string `json:"event_type"`
	Channel         string `json:"marketing_channel"`
	Paid            bool   `json:"paid"`
	StartedAt       string `json:"started_at"`
	ReferringDomain string `json:"referring_domain"`
	Budget          string `json:"budget"`
	Currency        string `json:"currency"`
	BudgetType      string `json:"budget_type"`
	UTMCampaign     string `json:"utm_campaign"`
	UTMSource       string `json:"utm_source"`
	UTMMedium       string `json:"utm_medium"`
	Description     string `json:"description"`
	ManageURL       string `json:"manage_url"`
	PreviewURL      string `json:"preview_url"`
	Tactic          string `json:"tactic"`
}

// CreateMarketingEvent registers a marketing event and returns its id.
func (s *ShopifyService) CreateMarketingEvent(ctx context.Context, shop, token string, in MarketingEventInput) (int64, error) {
	resp, err := s.DoRequest(ctx, ShopifyRequestOpts{
		Shop:   shop,
		Token:  token,
		Method: http.MethodPost,
		Path:   "marketing_events.json",
		Body:   map[string]any{"marketing_event": in},
	})
	if err != nil {
		return 0, fmt.Errorf("create marketing event: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return 0, fmt.Errorf("create marketing event: status %d body %s", resp.Status, string(resp.Body))
	}

	var result struct {
		MarketingEvent struct {
			ID int64 `json:"id"`
		} `json:"marketing_event"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return 0, fmt.Errorf("unmarshal marketing event response: %w", err)
	}
	return result.MarketingEvent.ID, nil
}

// CreateEngagement attaches a same-day engagement record to a marketing
// event so the conversion shows up in attribution reporting.
func (s *ShopifyService) CreateEngagement(ctx context.Context, shop, token string, eventID int64) error {
	engagement := map[string]any{
		"occurred_on":       time.Now().Format("2006-01-02"),
		"impressions_count": 1,
		"views_count":       1,
		"clicks_count":      1,
		"shares_count":      0,
		"favorites_count":   0,
		"comments_count":    0,
		"ad_spend":          0,
		"is_cumulative":     false,
		"utc_offset":        "+03:00",
	}

	resp, err := s.DoRequest(ctx, ShopifyRequestOpts{
		Shop:   shop,
		Token:  token,
		Method: http.MethodPost,
		Path:   fmt.Sprintf("marketing_events/%d/engagements.json", eventID),
		Body:   map[string]any{"engagements": []map[string]any{engagement}},
	})
	if err != nil {
		return fmt.Errorf("create engagement: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return fmt.Errorf("create engagement: status %d body %s", resp.Status, string(resp.Body))
	}
	return nil
}

// Metafield is a key/value metadata entry attached to an order.
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// CreateOrderMetafield attaches a single metafield to an order.
func (s *ShopifyService) CreateOrderMetafield(ctx context.Context, shop, token string, orderID int64, field Metafield) error {
	resp, err := s.DoRequest(ctx, ShopifyRequestOpts{
		Shop:   shop,
		Token:  token,
		Method: http.MethodPost,
		Path:   fmt.Sprintf("orders/%d/metafields.json", orderID),
		Body:   map[string]any{"metafield": field},
	})
	if err != nil {
		return fmt.Errorf("create metafield %s: %w", field.Key, err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return fmt.Errorf("create metafield %s: status %d body %s", field.Key, resp.Status, string(resp.Body))
	}
	return nil
}
