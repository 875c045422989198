package model

import "time"

// UnlimitedUsage marks a coupon whose usage_limit never exhausts.
const UnlimitedUsage = -1

// Reserved rank-prize coupon codes. Their validity is governed by the user's
// leaderboard rank plus a one-use-per-season rule, not by the date window or
// usage limit stored on the row.
const (
	CodeTop5Hacker  = "top5hacker"
	CodeTop10Hacker = "top10hacker"
)

// Coupon represents a coupon row. Codes are stored lowercase and matched
// case-insensitively.
type Coupon struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	DiscountPercent int       `json:"discountPercent"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	UsageLimit      int       `json:"usageLimit"`
	UsageCount      int       `json:"usageCount"`
	CreatedAt       time.Time `json:"-"`
}

// Unlimited reports whether the coupon has no usage cap.
func (c *Coupon) Unlimited() bool { return c.UsageLimit == UnlimitedUsage }

// Exhausted reports whether the coupon's usage cap has been reached.
func (c *Coupon) Exhausted() bool {
	return !c.Unlimited() && c.UsageCount >= c.UsageLimit
}

// CouponOffer is the validated discount returned to the client. It carries
// only what checkout needs, never the full row.
type CouponOffer struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discountPercent"`
}

// CreateCouponRequest is the DTO for the admin create-coupon endpoint.
type CreateCouponRequest struct {
	Code            string    `json:"code" validate:"required,notblank,max=64"`
	DiscountPercent *int      `json:"discountPercent" validate:"required,gte=1,lte=100"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required"`
	UsageLimit      *int      `json:"usageLimit" validate:"required,gte=-1"`
}

// Redemption is a row in the redemption log. Its (user, coupon, season)
// uniqueness is what makes a rank-prize coupon one-shot per season.
type Redemption struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	CouponID  string    `json:"couponId"`
	Season    string    `json:"season"`
	CreatedAt time.Time `json:"createdAt"`
}
