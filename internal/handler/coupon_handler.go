package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/hackmart/storefront/internal/metrics"
	"github.com/hackmart/storefront/internal/model"
	"github.com/hackmart/storefront/internal/service"
)

// SeasonDefaulter supplies the current season code when the request omits one.
type SeasonDefaulter interface {
	CurrentSeason(date *time.Time) string
}

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	Validate(ctx context.Context, code, userID, seasonCode string) (*model.CouponOffer, error)
	Redeem(ctx context.Context, code, userID, seasonCode string) (*model.CouponOffer, error)
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Delete(ctx context.Context, id string) error
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	seasons   SeasonDefaulter
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service,
// season source and validator.
func NewCouponHandler(svc CouponServiceInterface, seasons SeasonDefaulter, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, seasons: seasons, validator: v}
}

// eligibilityOutcome maps an eligibility failure to its HTTP status, metric
// label and user-facing message. Every reason keeps its own message; the
// client surfaces them verbatim.
func eligibilityOutcome(err error) (status int, label, message string, ok bool) {
	var rankErr *service.RankIneligibleError
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		return fiber.StatusNotFound, "not_found", "coupon not found", true
	case errors.Is(err, service.ErrCouponNotStarted):
		return fiber.StatusBadRequest, "not_started", "this coupon is not active yet", true
	case errors.Is(err, service.ErrCouponExpired):
		return fiber.StatusBadRequest, "expired", "this coupon has expired", true
	case errors.Is(err, service.ErrCouponExhausted):
		return fiber.StatusBadRequest, "exhausted", "this coupon has reached its usage limit", true
	case errors.Is(err, service.ErrCouponAlreadyUsed):
		return fiber.StatusBadRequest, "already_used", "you have already used this coupon this season", true
	case errors.Is(err, service.ErrNoRank):
		return fiber.StatusBadRequest, "no_rank", "you have no rank this season", true
	case errors.As(err, &rankErr):
		return fiber.StatusBadRequest, "rank_ineligible",
			fmt.Sprintf("you are not eligible for this coupon, your rank is %d", rankErr.Rank), true
	case errors.Is(err, service.ErrInvalidRequest):
		return fiber.StatusBadRequest, "invalid", "invalid request", true
	}
	return 0, "error", "", false
}

// ValidateCoupon handles POST /api/coupon/validate-coupon. Read-only: a
// probe never consumes the coupon.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request: code is required",
		})
	}
	seasonCode := c.Query("season")
	if seasonCode == "" {
		seasonCode = h.seasons.CurrentSeason(nil)
	}

	offer, err := h.service.Validate(c.Context(), code, currentUserID(c), seasonCode)
	if err != nil {
		if status, label, message, ok := eligibilityOutcome(err); ok {
			metrics.CouponValidations.WithLabelValues(label).Inc()
			return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
		}
		metrics.CouponValidations.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("code", code).Str("season", seasonCode).Msg("failed to validate coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}

	metrics.CouponValidations.WithLabelValues("valid").Inc()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "coupon is valid",
		"coupon":  offer,
	})
}

// RedeemCoupon handles POST /api/coupon/redeem. Called at checkout commit;
// the service records the redemption atomically, so at most one of two
// concurrent redeems succeeds.
func (h *CouponHandler) RedeemCoupon(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request: code is required",
		})
	}
	seasonCode := c.Query("season")
	if seasonCode == "" {
		seasonCode = h.seasons.CurrentSeason(nil)
	}

	start := time.Now()
	offer, err := h.service.Redeem(c.Context(), code, currentUserID(c), seasonCode)
	if err != nil {
		metrics.RecordRedeemDuration("failure", time.Since(start).Seconds())
		if status, label, message, ok := eligibilityOutcome(err); ok {
			metrics.CouponRedemptions.WithLabelValues(label).Inc()
			return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
		}
		metrics.CouponRedemptions.WithLabelValues("error").Inc()
		log.Error().Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("code", code).
			Str("season", seasonCode).
			Str("user_id", currentUserID(c)).
			Msg("failed to redeem coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}

	metrics.RecordRedeemDuration("success", time.Since(start).Seconds())
	metrics.CouponRedemptions.WithLabelValues("redeemed").Inc()
	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("code", offer.Code).
		Str("season", seasonCode).
		Str("user_id", currentUserID(c)).
		Msg("coupon redeemed")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "coupon redeemed",
		"coupon":  offer,
	})
}

// formatCouponValidationError converts validator errors on the create DTO
// into per-field messages.
func formatCouponValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "Code":
				if tag == "required" {
					return "invalid request: code is required"
				}
				if tag == "notblank" {
					return "invalid request: code cannot be whitespace only"
				}
				return "invalid request: code is invalid"
			case "DiscountPercent":
				if tag == "required" {
					return "invalid request: discountPercent is required"
				}
				return "invalid request: discountPercent must be between 1 and 100"
			case "UsageLimit":
				if tag == "required" {
					return "invalid request: usageLimit is required"
				}
				return "invalid request: usageLimit must be -1 or greater"
			default:
				if tag == "required" {
					return "invalid request: " + field + " is required"
				}
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

// CreateCoupon handles POST /api/coupon/create-coupon (admin only).
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": formatCouponValidationError(err),
		})
	}

	coupon, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrCouponExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false, "message": "coupon already exists",
			})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "invalid request",
			})
		}
		log.Error().Err(err).Str("code", req.Code).Msg("failed to create coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "coupon created successfully",
		"coupon":  coupon,
	})
}

// ListCoupons handles GET /api/coupon/fetch-all-coupons (admin only).
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list coupons")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}
	return c.JSON(fiber.Map{"success": true, "couponList": coupons})
}

// DeleteCoupon handles DELETE /api/coupon/:id (admin only).
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "message": "coupon not found",
			})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "message": "invalid request: id is required",
			})
		}
		log.Error().Err(err).Str("coupon_id", id).Msg("failed to delete coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "internal server error",
		})
	}
	return c.JSON(fiber.Map{"success": true, "message": "coupon deleted successfully", "id": id})
}
