package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/codbridge/internal/utils"
)

const (
	vatanSMSEndpoint = "https://api.vatansms.net/api/whatsapp/v1/messages/send"
	smsTemplate      = "Sipariş doğrulama kodunuz: %s\n\nBu kodu kimseyle paylaşmayın. Kod 5 dakika geçerlidir."
)

// NotificationSender delivers an OTP message to a phone number.
type NotificationSender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// SMSService sends verification codes through the VatanSMS WhatsApp gateway.
type SMSService struct {
	deviceID     string
	clientID     string
	clientSecret string
	sendSpeed    string
	httpClient   *http.Client
}

// NewSMSService constructs an SMSService.
func NewSMSService(deviceID, clientID, clientSecret, sendSpeed string) *SMSService {
	if sendSpeed == "" {
		sendSpeed = "2"
	}
	return &SMSService{
		deviceID:     deviceID,
		clientID:     clientID,
		clientSecret: clientSecret,
		sendSpeed:    sendSpeed,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

type smsSendRequest struct {
	RegID     string `json:"reg_id"`
	To        string `json:"to"`
	Message   string `json:"message"`
	SendSpeed string `json:"send_speed"`
}

type smsSendResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SendCode delivers the verification message. The number is normalized to
// carry the +90 prefix before hitting the vendor. A non-200 vendor code is a
// delivery failure; there is no retry.
func (s *SMSService) SendCode(ctx context.Context, phone, code string) error {
	if s.clientID == "" || s.clientSecret == "" {
		return errors.New("sms gateway credentials are not configured")
	}

	payload := smsSendRequest{
		RegID:     s.deviceID,
		To:        utils.WithCountryCode(utils.NormalizePhone(phone)),
		Message:   fmt.Sprintf(smsTemplate, code),
		SendSpeed: s.sendSpeed,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, vatanSMSEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("client-id", s.clientID)
	req.Header.Set("client-secret", s.clientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute sms request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sms response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway status %d: %s", resp.StatusCode, string(respBody))
	}

	var result smsSendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("unmarshal sms response: %w", err)
	}

	if result.Code != 200 {
		return fmt.Errorf("sms gateway rejected message: code %d, %s", result.Code, result.Message)
	}

	return nil
}
