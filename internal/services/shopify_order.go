package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Platform-mandated marketing event constants. Budget and tactic values are
// required by the Marketing Events API; their exact semantics are opaque.
const (
	marketingEventBudget     = "2.00"
	marketingEventBudgetType = "daily"
	marketingEventTactic     = "post"
	marketingEventCurrency   = "TRY"
	conversionSourceName     = "COD WhatsApp App"
)

// CartItem is a single cart line in minor currency units.
type CartItem struct {
	VariantID int64
	Quantity  int
	Price     int64
}

// PendingOrder is the inbound COD submission.
type PendingOrder struct {
	Shop            string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	CustomerCity    string
	CustomerCountry string
	CustomerZip     string
	CartItems       []CartItem
	TotalAmount     int64
	CartToken       string
	CodPaymentType  string
	LandingPage     string
	ReferringSite   string
	UserAgent       string
	ClientIP        string
}

// OrderLineItem is a line item in major units as submitted to the platform.
type OrderLineItem struct {
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderAddress is a shipping/billing address block.
type OrderAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
}

// OrderCustomer references an existing customer or carries inline fields.
type OrderCustomer struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// OrderTransaction is the pending COD sale transaction.
type OrderTransaction struct {
	Kind    string  `json:"kind"`
	Status  string  `json:"status"`
	Amount  float64 `json:"amount"`
	Gateway string  `json:"gateway"`
}

// OrderPayload is the full platform order request body.
type OrderPayload struct {
	LineItems          []OrderLineItem    `json:"line_items"`
	Customer           OrderCustomer      `json:"customer"`
	ShippingAddress    OrderAddress       `json:"shipping_address"`
	BillingAddress     OrderAddress       `json:"billing_address"`
	Note               string             `json:"note"`
	Tags               string             `json:"tags"`
	SourceName         string             `json:"source_name"`
	SourceIdentifier   string             `json:"source_identifier"`
	SourceURL          string             `json:"source_url,omitempty"`
	FinancialStatus    string             `json:"financial_status"`
	Transactions       []OrderTransaction `json:"transactions"`
	InventoryBehaviour string             `json:"inventory_behaviour"`
	SendReceipt        bool               `json:"send_receipt"`
	SendFulfillment    bool               `json:"send_fulfillment_receipt"`
}

// SplitName applies the fixed name heuristic: first token becomes the first
// name, the remaining tokens joined become the last name (possibly empty).
// Downstream systems depend on this exact behavior.
func SplitName(fullName string) (string, string) {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return fullName, ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// MinorToMajor converts minor currency units to a fixed two-decimal string.
func MinorToMajor(minor int64) string {
	return fmt.Sprintf("%.2f", float64(minor)/100)
}

// SynthCheckoutToken generates a server-side checkout token when the client
// did not provide a cart token.
func SynthCheckoutToken() string {
	return fmt.Sprintf("cod_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// PlaceholderEmail synthesizes an email for customers who gave none; the
// platform requires a customer email on creation.
func PlaceholderEmail() string {
	return fmt.Sprintf("cod-%d@shopify-cod.local", time.Now().UnixMilli())
}

func codPaymentLabel(codPaymentType string) string {
	if codPaymentType == "card" {
		return "Kapıda Kredi Kartı"
	}
	return "Kapıda Nakit"
}

func codPaymentTag(codPaymentType string) string {
	if codPaymentType == "card" {
		return "Kapıda-Kredi-Kartı"
	}
	return "Kapıda-Nakit"
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// BuildOrderPayload composes the platform order request for a verified COD
// submission. When customerID is zero the customer is embedded inline
// (graceful degradation when resolution failed).
func BuildOrderPayload(pending PendingOrder, customerID int64, checkoutToken string) OrderPayload {
	firstName, lastName := SplitName(pending.CustomerName)

	lineItems := make([]OrderLineItem, 0, len(pending.CartItems))
	var saleMinor int64
	for _, item := range pending.CartItems {
		lineItems = append(lineItems, OrderLineItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     MinorToMajor(item.Price),
		})
		saleMinor += item.Price * int64(item.Quantity)
	}

	customer := OrderCustomer{ID: customerID}
	if customerID == 0 {
		customer = OrderCustomer{
			FirstName: firstName,
			LastName:  lastName,
			Email:     orDefault(pending.CustomerEmail, PlaceholderEmail()),
		}
	}

	address := OrderAddress{
		FirstName: firstName,
		LastName:  lastName,
		Address1:  pending.CustomerAddress,
		City:      pending.CustomerCity,
		Province:  pending.CustomerCity,
		Country:   orDefault(pending.CustomerCountry, "TR"),
		Zip:       pending.CustomerZip,
		Phone:     pending.CustomerPhone,
	}

	note := fmt.Sprintf(`Kapıda Ödeme (COD) - WhatsApp Doğrulamalı Sipariş
Ödeme Şekli: %s
Checkout Token: %s
Landing Page: %s
Referring Site: %s
Browser IP: %s
User Agent: %s`,
		codPaymentLabel(pending.CodPaymentType),
		checkoutToken,
		orDefault(pending.LandingPage, "N/A"),
		orDefault(pending.ReferringSite, "Direct"),
		orDefault(pending.ClientIP, "N/A"),
		orDefault(pending.UserAgent, "N/A"),
	)

	return OrderPayload{
		LineItems:        lineItems,
		Customer:         customer,
		ShippingAddress:  address,
		BillingAddress:   address,
		Note:             note,
		Tags:             fmt.Sprintf("COD, WhatsApp-Verified, %s", codPaymentTag(pending.CodPaymentType)),
		SourceName:       conversionSourceName,
		SourceIdentifier: checkoutToken,
		SourceURL:        pending.LandingPage,
		FinancialStatus:  "pending",
		Transactions: []OrderTransaction{
			{
				Kind:    "sale",
				Status:  "pending",
				Amount:  float64(saleMinor) / 100,
				Gateway: "Cash on Delivery",
			},
		},
		InventoryBehaviour: "decrement_ignoring_policy",
		SendReceipt:        false,
		SendFulfillment:    false,
	}
}

// BuildMarketingEvent composes the conversion marketing event for an order.
func BuildMarketingEvent(pending PendingOrder, orderID int64) MarketingEventInput {
	referringDomain := pending.Shop
	if pending.ReferringSite != "" {
		if parsed, err := url.Parse(pending.ReferringSite); err == nil && parsed.Hostname() != "" {
			referringDomain = parsed.Hostname()
		}
	}

	return MarketingEventInput{
		RemoteID:        fmt.Sprintf("cod_%d_%d", orderID, time.Now().UnixMilli()),
		EventType:       "ad",
		Channel:         "social",
		Paid:            false,
		StartedAt:       time.Now().UTC().Format(time.RFC3339),
		ReferringDomain: referringDomain,
		Budget:          marketingEventBudget,
		Currency:        marketingEventCurrency,
		BudgetType:      marketingEventBudgetType,
		UTMCampaign:     fmt.Sprintf("cod_whatsapp_%d", orderID),
		UTMSource:       "whatsapp",
		UTMMedium:       "cod_app",
		Description:     "COD WhatsApp Verified Order",
		ManageURL:       fmt.Sprintf("https://%s/admin/orders/%d", pending.Shop, orderID),
		PreviewURL:      orDefault(pending.LandingPage, "https://"+pending.Shop),
		Tactic:          marketingEventTactic,
	}
}

// TrackingMetafields lists the fixed analytics metadata attached to an order.
func TrackingMetafields(pending PendingOrder, checkoutToken string) []Metafield {
	return []Metafield{
		{Namespace: "cod_tracking", Key: "checkout_token", Value: checkoutToken, Type: "single_line_text_field"},
		{Namespace: "cod_tracking", Key: "landing_page", Value: orDefault(pending.LandingPage, "Direct"), Type: "single_line_text_field"},
		{Namespace: "cod_tracking", Key: "referring_site", Value: orDefault(pending.ReferringSite, "Direct"), Type: "single_line_text_field"},
		{Namespace: "cod_tracking", Key: "browser_ip", Value: orDefault(pending.ClientIP, "Unknown"), Type: "single_line_text_field"},
		{Namespace: "cod_tracking", Key: "conversion_source", Value: conversionSourceName, Type: "single_line_text_field"},
	}
}
