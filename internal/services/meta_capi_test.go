package services

import (
	"context"
	"testing"
	"time"

	"github.com/example/codbridge/internal/store"
	"github.com/example/codbridge/internal/utils"
)

func TestBuildEventUserData(t *testing.T) {
	svc := NewMetaService(store.NewMemoryPixelDirectory(), time.Second)

	order := &PlatformOrder{
		ID:         900111,
		TotalPrice: "25.00",
		LineItems: []PlatformLineItem{
			{VariantID: 11, Quantity: 2, Price: "10.00"},
			{VariantID: 0, ProductID: 77, Quantity: 1, Price: "5.00"},
		},
	}
	user := ConversionUser{
		Email:     "Test@Example.com ",
		Phone:     "5551234567",
		FirstName: "Ahmet",
	}

	event := svc.buildEvent("demo.myshopify.com", order, user, "203.0.113.9", "Mozilla/5.0")

	if event.EventName != "Purchase" || event.ActionSource != "website" {
		t.Errorf("event envelope = %+v", event)
	}
	if event.EventSourceURL != "https://demo.myshopify.com" {
		t.Errorf("source url = %q", event.EventSourceURL)
	}

	// Identifiers are hashed after normalization; absent ones stay empty
	// slices so they serialize as [] rather than null.
	if len(event.UserData.Em) != 1 || event.UserData.Em[0] != utils.HashIdentifier("test@example.com") {
		t.Errorf("email hash = %v", event.UserData.Em)
	}
	if len(event.UserData.Ln) != 0 || event.UserData.Ln == nil {
		t.Errorf("missing last name must be an empty slice, got %v", event.UserData.Ln)
	}
	if event.UserData.ClientIPAddress != "203.0.113.9" {
		t.Errorf("client ip = %q", event.UserData.ClientIPAddress)
	}

	custom := event.CustomData
	if custom.Value != 25.00 || custom.Currency != "TRY" || custom.OrderID != 900111 {
		t.Errorf("custom data = %+v", custom)
	}
	if custom.NumItems != 2 || len(custom.Contents) != 2 {
		t.Errorf("contents = %+v", custom.Contents)
	}
	// Variant id preferred, product id as fallback.
	if custom.ContentIDs[0] != 11 || custom.ContentIDs[1] != 77 {
		t.Errorf("content ids = %v", custom.ContentIDs)
	}
}

func TestSendPurchaseEventWithoutIntegration(t *testing.T) {
	svc := NewMetaService(store.NewMemoryPixelDirectory(), time.Second)

	err := svc.SendPurchaseEvent(context.Background(), "demo.myshopify.com", &PlatformOrder{ID: 1}, ConversionUser{}, "", "")
	if err != nil {
		t.Fatalf("no integration must be a silent no-op, got %v", err)
	}
}
