package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/example/codbridge/internal/store"
	"github.com/example/codbridge/internal/utils"
)

const metaGraphBaseURL = "https://graph.facebook.com/v18.0"

// ConversionUser carries the personal identifiers hashed into a purchase event.
type ConversionUser struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	City      string
	Country   string
}

// ConversionGateway emits a server-side purchase event for an order.
type ConversionGateway interface {
	SendPurchaseEvent(ctx context.Context, shopDomain string, order *PlatformOrder, user ConversionUser, clientIP, userAgent string) error
}

// MetaService sends CAPI purchase events to every active pixel of a shop.
type MetaService struct {
	pixels     store.PixelDirectory
	httpClient *http.Client
}

// NewMetaService constructs a MetaService with the given per-call timeout.
func NewMetaService(pixels store.PixelDirectory, timeout time.Duration) *MetaService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MetaService{pixels: pixels, httpClient: &http.Client{Timeout: timeout}}
}

type capiUserData struct {
	Em              []string `json:"em"`
	Ph              []string `json:"ph"`
	Fn              []string `json:"fn"`
	Ln              []string `json:"ln"`
	Ct              []string `json:"ct"`
	Country         []string `json:"country"`
	ClientIPAddress string   `json:"client_ip_address,omitempty"`
	ClientUserAgent string   `json:"client_user_agent,omitempty"`
}

type capiContent struct {
	ID        int64  `json:"id"`
	Quantity  int    `json:"quantity"`
	ItemPrice string `json:"item_price"`
}

type capiCustomData struct {
	Currency    string        `json:"currency"`
	Value       float64       `json:"value"`
	OrderID     int64         `json:"order_id"`
	ContentIDs  []int64       `json:"content_ids"`
	ContentType string        `json:"content_type"`
	Contents    []capiContent `json:"contents"`
	NumItems    int           `json:"num_items"`
}

type capiEvent struct {
	EventName      string         `json:"event_name"`
	EventTime      int64          `json:"event_time"`
	ActionSource   string         `json:"action_source"`
	EventSourceURL string         `json:"event_source_url"`
	UserData       capiUserData   `json:"user_data"`
	CustomData     capiCustomData `json:"custom_data"`
}

type capiRequest struct {
	Data []capiEvent `json:"data"`
}

// hashedField returns a single-element slice of the normalized hash, or an
// empty slice when the value is absent. Absent identifiers are transmitted
// as empty collections rather than omitted.
func hashedField(value string) []string {
	hashed := utils.HashIdentifier(value)
	if hashed == "" {
		return []string{}
	}
	return []string{hashed}
}

// SendPurchaseEvent emits one Purchase event per active pixel registered for
// the shop. Each pixel is attempted independently; a failure on one never
// prevents the others. Returns a summary error when any pixel failed.
func (s *MetaService) SendPurchaseEvent(ctx context.Context, shopDomain string, order *PlatformOrder, user ConversionUser, clientIP, userAgent string) error {
	integration, err := s.pixels.ActiveIntegration(ctx, shopDomain)
	if err != nil {
		return fmt.Errorf("load meta integration: %w", err)
	}
	if integration == nil {
		log.Printf("[Meta CAPI] no active integration for %s", shopDomain)
		return nil
	}
	if len(integration.Pixels) == 0 {
		log.Printf("[Meta CAPI] no active pixels for %s", shopDomain)
		return nil
	}

	event := s.buildEvent(shopDomain, order, user, clientIP, userAgent)

	attempted := 0
	failed := 0
	for _, pixel := range integration.Pixels {
		token := pixel.CapiAccessToken
		if token == "" {
			token = integration.MetaAccessToken
		}
		if token == "" {
			log.Printf("[Meta CAPI] pixel %s has no access token, skipping", pixel.PixelID)
			continue
		}

		attempted++
		if err := s.sendToPixel(ctx, pixel.PixelID, token, event); err != nil {
			failed++
			log.Printf("[Meta CAPI] pixel %s event failed: %v", pixel.PixelID, err)
			continue
		}
		log.Printf("[Meta CAPI] purchase event sent to pixel %s", pixel.PixelID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pixel events failed", failed, attempted)
	}
	return nil
}

func (s *MetaService) buildEvent(shopDomain string, order *PlatformOrder, user ConversionUser, clientIP, userAgent string) capiEvent {
	value, _ := strconv.ParseFloat(order.TotalPrice, 64)

	contentIDs := make([]int64, 0, len(order.LineItems))
	contents := make([]capiContent, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		id := item.VariantID
		if id == 0 {
			id = item.ProductID
		}
		contentIDs = append(contentIDs, id)
		contents = append(contents, capiContent{
			ID:        id,
			Quantity:  item.Quantity,
			ItemPrice: item.Price,
		})
	}

	return capiEvent{
		EventName:      "Purchase",
		EventTime:      time.Now().Unix(),
		ActionSource:   "website",
		EventSourceURL: "https://" + shopDomain,
		UserData: capiUserData{
			Em:              hashedField(user.Email),
			Ph:              hashedField(user.Phone),
			Fn:              hashedField(user.FirstName),
			Ln:              hashedField(user.LastName),
			Ct:              hashedField(user.City),
			Country:         hashedField(user.Country),
			ClientIPAddress: clientIP,
			ClientUserAgent: userAgent,
		},
		CustomData: capiCustomData{
			Currency:    marketingEventCurrency,
			Value:       value,
			OrderID:     order.ID,
			ContentIDs:  contentIDs,
			ContentType: "product",
			Contents:    contents,
			NumItems:    len(order.LineItems),
		},
	}
}

func (s *MetaService) sendToPixel(ctx context.Context, pixelID, token string, event capiEvent) error {
	body, err := json.Marshal(capiRequest{Data: []capiEvent{event}})
	if err != nil {
		return fmt.Errorf("marshal capi payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/events?access_token=%s", metaGraphBaseURL, pixelID, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create capi request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute capi request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("capi status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
