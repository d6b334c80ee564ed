// Package common defines shared constants and sentinel errors used across
// client and server layers of tchat. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Connection-level errors.
	ErrDisconnected = errors.New("disconnected")
	ErrNotConnected = errors.New("not connected")

	// Protocol-level errors.
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrDecodingFailed  = errors.New("failed to decode message")
	ErrMessageTooLarge = errors.New("message too large")

	// Identity-level errors.
	ErrDuplicateUsername = errors.New("username is already taken")
	ErrUnauthorized      = errors.New("authentication failed")
	ErrInvalidToken      = errors.New("invalid token")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")

	// Configuration errors.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
