package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/codbridge/internal/services"
)

// VerificationHandler exposes the OTP request/verify endpoints.
type VerificationHandler struct {
	svc *services.VerificationService
}

// NewVerificationHandler constructs a VerificationHandler.
func NewVerificationHandler(svc *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

type requestCodeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// RequestCode issues a verification code and delivers it by SMS/WhatsApp.
func (h *VerificationHandler) RequestCode(c *fiber.Ctx) error {
	var req requestCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.PhoneNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "phone number is required",
		})
	}

	expiresIn, err := h.svc.RequestCode(c.Context(), req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPhone):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid phone number format",
			})
		case errors.Is(err, services.ErrDeliveryFailed):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "verification message could not be delivered, please retry",
			})
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"expiresInSeconds": expiresIn,
	})
}

type verifyCodeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"code"`
}

// VerifyCode validates a submitted code against the active record.
func (h *VerificationHandler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.PhoneNumber == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "phone number and code are required",
			"verified": false,
		})
	}

	phone, err := h.svc.VerifyCode(c.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		var wrongCode *services.WrongCodeError
		switch {
		case errors.As(err, &wrongCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":             "wrong verification code",
				"remainingAttempts": wrongCode.Remaining,
				"verified":          false,
			})
		case errors.Is(err, services.ErrNoActiveCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":    "no verification code found for this phone",
				"verified": false,
			})
		case errors.Is(err, services.ErrCodeExpired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":    "verification code expired, please request a new one",
				"verified": false,
			})
		case errors.Is(err, services.ErrTooManyAttempts):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":    "too many failed attempts, please request a new code",
				"verified": false,
			})
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"verified":    true,
		"phoneNumber": phone,
	})
}
