package auth

import "errors"

// Enumerated identity errors. Each maps to a fixed user-facing message at
// the handler boundary; anything else falls back to a generic message.
var (
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrMalformedEmail    = errors.New("email address is not valid")
	ErrWeakPassword      = errors.New("password is too weak (should be at least 6 characters)")
	ErrEmailTaken        = errors.New("email address is already in use by another account")
	ErrInvalidToken      = errors.New("invalid token")
	ErrSessionRevoked    = errors.New("session revoked")
)
