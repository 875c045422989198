package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUserExists is returned when registering with an email that is taken
	ErrUserExists = errors.New("user with this email exists")

	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned on a failed email/password login
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongAuthProvider is returned when a user signs in through a channel
	// other than the one their account was created with
	ErrWrongAuthProvider = errors.New("invalid authentication channel for this user")

	// ErrInvalidRefreshToken is returned when a refresh token matches no user
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrScoreNotFound is returned when a user has no score row for a season.
	// Distinct from a zero score: no contribution has been made at all.
	ErrScoreNotFound = errors.New("game score not found")

	// ErrCouponExists is returned when creating a coupon whose code is taken
	ErrCouponExists = errors.New("coupon already exists")

	// ErrCouponNotFound is returned when a coupon code matches no record
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponNotStarted is returned when a coupon's window has not opened
	ErrCouponNotStarted = errors.New("coupon is not active yet")

	// ErrCouponExpired is returned when a coupon's window has closed
	ErrCouponExpired = errors.New("coupon has expired")

	// ErrCouponExhausted is returned when a capped coupon has no uses left
	ErrCouponExhausted = errors.New("coupon usage limit reached")

	// ErrCouponAlreadyUsed is returned when the user already consumed a
	// rank-prize coupon in the given season
	ErrCouponAlreadyUsed = errors.New("coupon already used this season")

	// ErrNoRank is returned when a rank-prize coupon is probed by a user
	// with no score this season
	ErrNoRank = errors.New("no rank this season")
)

// RankIneligibleError is returned when the user holds a rank but it is
// outside the coupon's threshold. It carries the rank so the caller can
// surface it in the refusal message.
type RankIneligibleError struct {
	Rank int
}

func (e *RankIneligibleError) Error() string {
	return fmt.Sprintf("not eligible for this coupon, rank is %d", e.Rank)
}
