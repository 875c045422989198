package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/internal/service"
)

// QuoteRequest is the DTO for POST /api/checkout/quote. Code is optional;
// when present the server re-validates it before pricing, never trusting a
// discount computed client-side.
type QuoteRequest struct {
	Subtotal float64 `json:"subtotal" validate:"required,gte=0"`
	Code     string  `json:"code" validate:"omitempty,max=64"`
	Season   string  `json:"season" validate:"omitempty,seasoncode"`
}

// CheckoutHandler prices carts server-side.
type CheckoutHandler struct {
	coupons   CouponServiceInterface
	seasons   SeasonDefaulter
	validator *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(coupons CouponServiceInterface, seasons SeasonDefaulter, v *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{coupons: coupons, seasons: seasons, validator: v}
}

// Quote handles POST /api/checkout/quote.
func (h *CheckoutHandler) Quote(c *fiber.Ctx) error {
	var req QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request: subtotal must be a non-negative number",
		})
	}

	var offer *model.CouponOffer
	if req.Code != "" {
		seasonCode := req.Season
		if seasonCode == "" {
			seasonCode = h.seasons.CurrentSeason(nil)
		}

		validated, err := h.coupons.Validate(c.Context(), req.Code, currentUserID(c), seasonCode)
		if err != nil {
			if status, _, message, ok := eligibilityOutcome(err); ok {
				return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
			}
			log.Error().Err(err).Str("code", req.Code).Msg("failed to validate coupon for quote")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false, "message": "internal server error",
			})
		}
		offer = validated
	}

	totals := service.ComputeTotal(req.Subtotal, offer)
	return c.JSON(fiber.Map{
		"success": true,
		"totals":  totals,
		"coupon":  offer,
	})
}
