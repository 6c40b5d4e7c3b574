package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/codbridge/internal/services"
	"github.com/example/codbridge/internal/store"
)

type captureSender struct {
	lastCode string
	err      error
}

func (s *captureSender) SendCode(ctx context.Context, phone, code string) error {
	s.lastCode = code
	return s.err
}

func verificationApp(sender *captureSender) *fiber.App {
	svc := services.NewVerificationService(store.NewMemoryVerificationStore(), sender)
	handler := NewVerificationHandler(svc)

	app := fiber.New()
	app.Post("/api/verification/codes", handler.RequestCode)
	app.Post("/api/verification/codes/verify", handler.VerifyCode)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestRequestCodeEndpoint(t *testing.T) {
	sender := &captureSender{}
	app := verificationApp(sender)

	resp, body := postJSON(t, app, "/api/verification/codes", fiber.Map{"phoneNumber": "5551234567"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	if body["expiresInSeconds"] != float64(300) {
		t.Errorf("expiresInSeconds = %v, want 300", body["expiresInSeconds"])
	}
	if sender.lastCode == "" {
		t.Error("sender never received a code")
	}
}

func TestRequestCodeEndpointRejectsMissingPhone(t *testing.T) {
	app := verificationApp(&captureSender{})

	resp, _ := postJSON(t, app, "/api/verification/codes", fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRequestCodeEndpointRejectsInvalidPhone(t *testing.T) {
	app := verificationApp(&captureSender{})

	resp, body := postJSON(t, app, "/api/verification/codes", fiber.Map{"phoneNumber": "12345"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] == "" {
		t.Error("error message expected")
	}
}

func TestVerifyCodeEndpointRoundTrip(t *testing.T) {
	sender := &captureSender{}
	app := verificationApp(sender)

	if resp, _ := postJSON(t, app, "/api/verification/codes", fiber.Map{"phoneNumber": "5551234567"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("request code: status %d", resp.StatusCode)
	}

	resp, body := postJSON(t, app, "/api/verification/codes/verify", fiber.Map{
		"phoneNumber": "5551234567",
		"code":        sender.lastCode,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["verified"] != true {
		t.Errorf("verified = %v", body["verified"])
	}
	if body["phoneNumber"] != "5551234567" {
		t.Errorf("phoneNumber = %v, want normalized", body["phoneNumber"])
	}
}

func TestVerifyCodeEndpointWrongCode(t *testing.T) {
	sender := &captureSender{}
	app := verificationApp(sender)

	if resp, _ := postJSON(t, app, "/api/verification/codes", fiber.Map{"phoneNumber": "5551234567"}); resp.StatusCode != http.StatusOK {
		t.Fatal("request code failed")
	}

	wrong := "0000"
	if sender.lastCode == wrong {
		wrong = "0001"
	}

	resp, body := postJSON(t, app, "/api/verification/codes/verify", fiber.Map{
		"phoneNumber": "5551234567",
		"code":        wrong,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["verified"] != false {
		t.Errorf("verified = %v", body["verified"])
	}
	if body["remainingAttempts"] != float64(2) {
		t.Errorf("remainingAttempts = %v, want 2", body["remainingAttempts"])
	}
}

func TestVerifyCodeEndpointNoActiveCode(t *testing.T) {
	app := verificationApp(&captureSender{})

	resp, body := postJSON(t, app, "/api/verification/codes/verify", fiber.Map{
		"phoneNumber": "5551234567",
		"code":        "1234",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["verified"] != false {
		t.Errorf("verified = %v", body["verified"])
	}
}
