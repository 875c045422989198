package service

import (
	"math"

	"github.com/hackmart/storefront/internal/model"
)

// Totals is a priced checkout quote.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
}

// ComputeTotal applies a validated coupon's discount to the cart subtotal.
// A nil offer means no discount. All three figures are rounded to two
// decimals, half away from zero; the rounding happens on the discount first
// so subtotal - discount == total exactly.
func ComputeTotal(subtotal float64, offer *model.CouponOffer) Totals {
	subtotal = round2(subtotal)

	var discount float64
	if offer != nil {
		discount = round2(subtotal * float64(offer.DiscountPercent) / 100)
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          round2(subtotal - discount),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
