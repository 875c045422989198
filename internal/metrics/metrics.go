package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CouponValidations counts validate-coupon outcomes by reason.
	CouponValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_validations_total",
			Help: "Coupon validation attempts by outcome",
		},
		[]string{"outcome"}, // valid, not_found, expired, not_started, exhausted, rank_ineligible, already_used, no_rank, error
	)

	// CouponRedemptions counts redemption outcomes.
	CouponRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_redemptions_total",
			Help: "Coupon redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RedeemDuration tracks the latency of the redemption transaction.
	RedeemDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coupon_redeem_duration_seconds",
			Help:    "Duration of coupon redemption requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"status"}, // success or failure
	)

	// CoinsGranted totals the coins awarded through the game.
	CoinsGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "game_coins_granted_total",
			Help: "Total coins granted to players",
		},
	)
)

// RecordRedeemDuration records the duration of a redemption request.
func RecordRedeemDuration(status string, seconds float64) {
	RedeemDuration.WithLabelValues(status).Observe(seconds)
}
