package services

import (
	"strings"
	"testing"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{"single token", "Ahmet", "Ahmet", ""},
		{"two tokens", "Ahmet Demir", "Ahmet", "Demir"},
		{"three tokens", "Mehmet Ali Kaya", "Mehmet", "Ali Kaya"},
		{"extra whitespace", "  Ahmet   Demir  ", "Ahmet", "Demir"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitName(tt.input)
			if first != tt.wantFirst || last != tt.wantLast {
				t.Errorf("SplitName(%q) = %q, %q; want %q, %q", tt.input, first, last, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestMinorToMajor(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{2550, "25.50"},
		{199999, "1999.99"},
	}
	for _, tt := range tests {
		if got := MinorToMajor(tt.minor); got != tt.want {
			t.Errorf("MinorToMajor(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}

func TestSynthCheckoutTokenShape(t *testing.T) {
	token := SynthCheckoutToken()
	if !strings.HasPrefix(token, "cod_") {
		t.Errorf("token %q lacks cod_ prefix", token)
	}
	parts := strings.Split(token, "_")
	if len(parts) != 3 || len(parts[2]) != 8 {
		t.Errorf("token %q does not match cod_<ms>_<suffix8>", token)
	}
}

func TestBuildOrderPayload(t *testing.T) {
	pending := PendingOrder{
		Shop:            "demo.myshopify.com",
		CustomerName:    "Mehmet Ali Kaya",
		CustomerPhone:   "5551234567",
		CustomerAddress: "Bağdat Cd. 42",
		CustomerCity:    "Kadıköy",
		CustomerZip:     "34710",
		CartItems: []CartItem{
			{VariantID: 11, Quantity: 2, Price: 1000},
			{VariantID: 12, Quantity: 1, Price: 500},
		},
		CodPaymentType: "card",
		LandingPage:    "https://demo.myshopify.com/products/widget",
		ReferringSite:  "https://instagram.com/shop",
		ClientIP:       "203.0.113.9",
		UserAgent:      "Mozilla/5.0",
	}

	payload := BuildOrderPayload(pending, 7001, "tok-1")

	if payload.Customer.ID != 7001 || payload.Customer.FirstName != "" {
		t.Errorf("customer ref = %+v, want id-only reference", payload.Customer)
	}
	if payload.FinancialStatus != "pending" {
		t.Errorf("financial status = %q", payload.FinancialStatus)
	}
	if payload.InventoryBehaviour != "decrement_ignoring_policy" {
		t.Errorf("inventory behaviour = %q", payload.InventoryBehaviour)
	}
	if payload.SendReceipt || payload.SendFulfillment {
		t.Error("receipts must be suppressed")
	}
	if payload.Tags != "COD, WhatsApp-Verified, Kapıda-Kredi-Kartı" {
		t.Errorf("tags = %q", payload.Tags)
	}
	if payload.SourceIdentifier != "tok-1" {
		t.Errorf("source identifier = %q", payload.SourceIdentifier)
	}

	if want := 25.00; payload.Transactions[0].Amount != want {
		t.Errorf("sale amount = %v, want %v", payload.Transactions[0].Amount, want)
	}
	if payload.Transactions[0].Kind != "sale" || payload.Transactions[0].Status != "pending" {
		t.Errorf("transaction = %+v", payload.Transactions[0])
	}

	if payload.ShippingAddress != payload.BillingAddress {
		t.Error("billing must mirror shipping")
	}
	addr := payload.ShippingAddress
	if addr.FirstName != "Mehmet" || addr.LastName != "Ali Kaya" {
		t.Errorf("address name = %q %q", addr.FirstName, addr.LastName)
	}
	if addr.Country != "TR" {
		t.Errorf("country = %q, want TR default", addr.Country)
	}
	if addr.Province != "Kadıköy" {
		t.Errorf("province = %q, want city echoed", addr.Province)
	}

	for _, fragment := range []string{
		"Kapıda Ödeme (COD)",
		"Ödeme Şekli: Kapıda Kredi Kartı",
		"Checkout Token: tok-1",
		"Browser IP: 203.0.113.9",
	} {
		if !strings.Contains(payload.Note, fragment) {
			t.Errorf("note missing %q:\n%s", fragment, payload.Note)
		}
	}
}

func TestBuildOrderPayloadInlineCustomer(t *testing.T) {
	pending := PendingOrder{
		CustomerName:    "Ahmet Demir",
		CustomerEmail:   "ahmet@example.com",
		CustomerAddress: "Adres 1",
		CodPaymentType:  "cash",
	}

	payload := BuildOrderPayload(pending, 0, "tok-2")

	if payload.Customer.ID != 0 {
		t.Errorf("customer id = %d, want inline", payload.Customer.ID)
	}
	if payload.Customer.Email != "ahmet@example.com" {
		t.Errorf("customer email = %q", payload.Customer.Email)
	}
	if payload.Tags != "COD, WhatsApp-Verified, Kapıda-Nakit" {
		t.Errorf("tags = %q", payload.Tags)
	}
	if !strings.Contains(payload.Note, "Landing Page: N/A") {
		t.Error("note must default missing landing page to N/A")
	}
	if !strings.Contains(payload.Note, "Referring Site: Direct") {
		t.Error("note must default missing referrer to Direct")
	}
}

func TestBuildMarketingEvent(t *testing.T) {
	pending := PendingOrder{
		Shop:          "demo.myshopify.com",
		ReferringSite: "https://instagram.com/some/post",
		LandingPage:   "https://demo.myshopify.com/products/widget",
	}

	event := BuildMarketingEvent(pending, 900111)

	if event.EventType != "ad" || event.Channel != "social" || event.Tactic != "post" {
		t.Errorf("event classification = %+v", event)
	}
	if event.Budget != "2.00" || event.BudgetType != "daily" || event.Currency != "TRY" {
		t.Errorf("budget block = %s/%s/%s", event.Budget, event.BudgetType, event.Currency)
	}
	if event.ReferringDomain != "instagram.com" {
		t.Errorf("referring domain = %q", event.ReferringDomain)
	}
	if event.UTMSource != "whatsapp" || event.UTMMedium != "cod_app" {
		t.Errorf("utm = %s/%s", event.UTMSource, event.UTMMedium)
	}
	if event.UTMCampaign != "cod_whatsapp_900111" {
		t.Errorf("utm campaign = %q", event.UTMCampaign)
	}
	if event.ManageURL != "https://demo.myshopify.com/admin/orders/900111" {
		t.Errorf("manage url = %q", event.ManageURL)
	}
	if event.PreviewURL != pending.LandingPage {
		t.Errorf("preview url = %q", event.PreviewURL)
	}
}

func TestBuildMarketingEventDefaultsToShopDomain(t *testing.T) {
	event := BuildMarketingEvent(PendingOrder{Shop: "demo.myshopify.com"}, 1)
	if event.ReferringDomain != "demo.myshopify.com" {
		t.Errorf("referring domain = %q", event.ReferringDomain)
	}
	if event.PreviewURL != "https://demo.myshopify.com" {
		t.Errorf("preview url = %q", event.PreviewURL)
	}
}

func TestTrackingMetafields(t *testing.T) {
	pending := PendingOrder{
		LandingPage:   "https://demo.myshopify.com/products/widget",
		ReferringSite: "https://instagram.com",
		ClientIP:      "203.0.113.9",
	}

	fields := TrackingMetafields(pending, "tok-3")
	if len(fields) != 5 {
		t.Fatalf("fields = %d, want 5", len(fields))
	}

	byKey := make(map[string]Metafield, len(fields))
	for _, field := range fields {
		if field.Namespace != "cod_tracking" {
			t.Errorf("namespace = %q for key %q", field.Namespace, field.Key)
		}
		if field.Type != "single_line_text_field" {
			t.Errorf("type = %q for key %q", field.Type, field.Key)
		}
		byKey[field.Key] = field
	}

	if byKey["checkout_token"].Value != "tok-3" {
		t.Errorf("checkout_token = %q", byKey["checkout_token"].Value)
	}
	if byKey["conversion_source"].Value != "COD WhatsApp App" {
		t.Errorf("conversion_source = %q", byKey["conversion_source"].Value)
	}

	// Defaults when the submission carried no tracking context.
	empty := TrackingMetafields(PendingOrder{}, "tok-4")
	defaults := map[string]string{
		"landing_page":   "Direct",
		"referring_site": "Direct",
		"browser_ip":     "Unknown",
	}
	for _, field := range empty {
		if want, ok := defaults[field.Key]; ok && field.Value != want {
			t.Errorf("%s default = %q, want %q", field.Key, field.Value, want)
		}
	}
}
