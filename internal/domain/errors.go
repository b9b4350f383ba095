package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// User errors
	ErrMsgUserNotFound       = "user not found"
	ErrMsgUserExists         = "user already registered"
	ErrMsgInvalidCredentials = "invalid credentials"

	// Game errors
	ErrMsgGameNotFound = "game not found"
	ErrMsgGameExists   = "game already exists"

	// Trade errors
	ErrMsgTradeNotFound   = "trade not found"
	ErrMsgTradeNotPending = "trade is not pending"
	ErrMsgTradeConflict   = "trade is no longer satisfiable"

	// Validation/authorization errors
	ErrMsgValidation   = "invalid trade request"
	ErrMsgUnauthorized = "account not authorized"

	// Notification errors
	ErrMsgChannel = "notification channel unavailable"

	// Exchange errors
	ErrMsgInventoryInconsistent = "inventory left inconsistent"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// User errors
	ErrUserNotFound       = errors.New(ErrMsgUserNotFound)
	ErrUserExists         = errors.New(ErrMsgUserExists)
	ErrInvalidCredentials = errors.New(ErrMsgInvalidCredentials)

	// Game errors
	ErrGameNotFound = errors.New(ErrMsgGameNotFound)
	ErrGameExists   = errors.New(ErrMsgGameExists)

	// Trade errors
	ErrTradeNotFound = errors.New(ErrMsgTradeNotFound)

	// ErrTradeNotPending is returned when a transition targets a trade whose
	// status is already terminal. The losing side of a concurrent
	// accept/reject race observes this error.
	ErrTradeNotPending = errors.New(ErrMsgTradeNotPending)

	// ErrTradeConflict is returned when a game named by the trade is missing
	// from its inventory at swap time. The trade stays PENDING.
	ErrTradeConflict = errors.New(ErrMsgTradeConflict)

	// Validation/authorization errors
	ErrValidation   = errors.New(ErrMsgValidation)
	ErrUnauthorized = errors.New(ErrMsgUnauthorized)

	// ErrChannel is returned when a notification could not be handed to the
	// message channel. Callers treat it as best-effort: log and continue.
	ErrChannel = errors.New(ErrMsgChannel)

	// ErrInventoryInconsistent is returned when a swap removed both games but
	// could not re-insert them after exhausting retries. It must never pass
	// silently: log at the highest severity and stop automatic retry.
	ErrInventoryInconsistent = errors.New(ErrMsgInventoryInconsistent)
)
