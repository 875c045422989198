package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hackmart/storefront/internal/payment"
)

// GatewayInterface is the payment gateway client surface.
type GatewayInterface interface {
	Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResponse, error)
}

// InitiatePaymentRequest is the DTO for POST /api/payment/initiate.
type InitiatePaymentRequest struct {
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`
	SuccessURL string  `json:"successUrl" validate:"required,url"`
	FailURL    string  `json:"failUrl" validate:"required,url"`
	CancelURL  string  `json:"cancelUrl" validate:"required,url"`
	Product    string  `json:"product" validate:"required,notblank,max=255"`
}

// PaymentHandler initiates gateway payment sessions.
type PaymentHandler struct {
	gateway   GatewayInterface
	auth      AuthServiceInterface
	validator *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(gateway GatewayInterface, authSvc AuthServiceInterface, v *validator.Validate) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, auth: authSvc, validator: v}
}

// Initiate handles POST /api/payment/initiate: opens a gateway session and
// returns the page URL the client should redirect to.
func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	var req InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request: amount, currency, urls and product are required",
		})
	}

	user, err := h.auth.GetUser(c.Context(), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "message": "unauthorized or invalid user",
		})
	}

	resp, err := h.gateway.Initiate(c.Context(), payment.InitiateRequest{
		TotalAmount:  req.Amount,
		Currency:     req.Currency,
		TranID:       uuid.New().String(),
		SuccessURL:   req.SuccessURL,
		FailURL:      req.FailURL,
		CancelURL:    req.CancelURL,
		CustomerName: user.Name,
		CustomerMail: user.Email,
		ProductName:  req.Product,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("payment initiation failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false, "message": "unable to initiate payment",
		})
	}
	if !resp.Succeeded() {
		log.Warn().Str("reason", resp.FailedReason).Str("user_id", user.ID).Msg("gateway refused payment session")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false, "message": "unable to initiate payment",
		})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"gatewayPageUrl": resp.GatewayPageURL,
	})
}
