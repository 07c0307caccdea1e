package backend

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTokenExpired is the status message the backend uses for an expired
	// access token.
	ErrTokenExpired = errors.New("token expired")
	// ErrBadResponse is returned when a response lacks a required field.
	ErrBadResponse = errors.New("malformed response")
)
