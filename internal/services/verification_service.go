package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/example/codbridge/internal/models"
	"github.com/example/codbridge/internal/store"
	"github.com/example/codbridge/internal/utils"
)

const (
	codeTTL     = 5 * time.Minute
	maxAttempts = 3
)

// Verification error taxonomy. All are terminal for the current code except
// WrongCodeError, which permits retry up to the attempt cap.
var (
	ErrInvalidPhone    = errors.New("invalid phone number format")
	ErrDeliveryFailed  = errors.New("verification message could not be delivered")
	ErrNoActiveCode    = errors.New("no active verification code for this phone")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many failed attempts")
)

// WrongCodeError reports a failed code match and how many attempts remain.
type WrongCodeError struct {
	Remaining int
}

func (e *WrongCodeError) Error() string {
	return fmt.Sprintf("wrong verification code, %d attempts remaining", e.Remaining)
}

// VerificationService implements the OTP state machine: issue a code, deliver
// it, and validate submissions under expiry and attempt limits.
type VerificationService struct {
	records store.VerificationStore
	sender  NotificationSender
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(records store.VerificationStore, sender NotificationSender) *VerificationService {
	return &VerificationService{records: records, sender: sender}
}

// CodeTTLSeconds is the validity window communicated to clients.
func (s *VerificationService) CodeTTLSeconds() int {
	return int(codeTTL / time.Second)
}

// RequestCode issues a fresh 4-digit code for a phone number and delivers it.
// Any prior unverified code for the phone is superseded. The delete-then-insert
// sequence is not atomic against a concurrent duplicate request; the benign
// two-codes-in-flight race is accepted since the attempt cap bounds abuse.
func (s *VerificationService) RequestCode(ctx context.Context, phoneNumber string) (int, error) {
	phone := utils.NormalizePhone(phoneNumber)
	if !utils.IsValidPhone(phone) {
		return 0, ErrInvalidPhone
	}

	code, err := generateCode()
	if err != nil {
		return 0, fmt.Errorf("generate verification code: %w", err)
	}

	if err := s.records.DeleteUnverified(ctx, phone); err != nil {
		return 0, fmt.Errorf("supersede prior codes: %w", err)
	}

	rec := &models.PhoneVerification{
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(codeTTL),
		Verified:  false,
		Attempts:  0,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return 0, fmt.Errorf("store verification record: %w", err)
	}

	if err := s.sender.SendCode(ctx, phone, code); err != nil {
		// The undelivered record stays behind; a new request supersedes it.
		log.Printf("[Verify] delivery failed for %s: %v", phone, err)
		return 0, ErrDeliveryFailed
	}

	return s.CodeTTLSeconds(), nil
}

// VerifyCode validates a submitted code against the latest unverified record
// for the phone. On success the record is flagged verified and becomes the
// caller's proof of phone ownership for order submission; it is not renewed
// beyond the original expiry window.
func (s *VerificationService) VerifyCode(ctx context.Context, phoneNumber, code string) (string, error) {
	if phoneNumber == "" || code == "" {
		return "", ErrNoActiveCode
	}
	phone := utils.NormalizePhone(phoneNumber)

	rec, err := s.records.LatestUnverified(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("load verification record: %w", err)
	}
	if rec == nil {
		return "", ErrNoActiveCode
	}

	if time.Now().After(rec.ExpiresAt) {
		if err := s.records.Delete(ctx, rec.ID); err != nil {
			log.Printf("[Verify] failed to delete expired record: %v", err)
		}
		return "", ErrCodeExpired
	}

	if rec.Attempts >= maxAttempts {
		if err := s.records.Delete(ctx, rec.ID); err != nil {
			log.Printf("[Verify] failed to delete exhausted record: %v", err)
		}
		return "", ErrTooManyAttempts
	}

	if rec.Code != code {
		rec.Attempts++
		if err := s.records.Update(ctx, rec); err != nil {
			return "", fmt.Errorf("record failed attempt: %w", err)
		}
		return "", &WrongCodeError{Remaining: maxAttempts - rec.Attempts}
	}

	rec.Verified = true
	if err := s.records.Update(ctx, rec); err != nil {
		return "", fmt.Errorf("flag record verified: %w", err)
	}

	return phone, nil
}

func generateCode() (string, error) {
	max := big.NewInt(10000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
