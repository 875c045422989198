package auth

import "errors"

var (
	// ErrInvalidToken is returned when a token fails parsing or validation
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry has passed
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidSignature is returned when a token's signature or signing
	// method does not match
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrStateNotFound is returned when an OAuth state key is unknown or
	// has expired
	ErrStateNotFound = errors.New("oauth state not found or expired")
)
