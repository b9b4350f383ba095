package handler

import (
	"errors"
	"net/http"

	"github.com/gameswap/exchange/internal/domain"
)

// User-facing error messages derived from domain errors.
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."

	ErrMsgInvalidCredentialsError = "Invalid email or password"
	ErrMsgNotYourResourceError    = "You are not a party to that resource"

	ErrMsgUserNotFoundError  = "User not found"
	ErrMsgUserExistsError    = "An account with that email already exists"
	ErrMsgGameNotFoundError  = "Game not found"
	ErrMsgGameExistsError    = "A game with that name is already in the inventory"
	ErrMsgTradeNotFoundError = "Trade not found"

	ErrMsgTradeNotPendingError = "Trade has already been resolved"
	ErrMsgTradeConflictError   = "Trade is no longer satisfiable"

	ErrMsgInventoryInconsistentErr = "Exchange failed partway. Contact support."
	ErrMsgUnavailableError         = "Server is temporarily unavailable. Please try again later."
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// responses, converting internal service errors to status codes and messages
// callers can act on.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		// Validation errors carry the specific reason in their message.
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrMsgInvalidCredentialsError
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, ErrMsgNotYourResourceError
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrGameNotFound):
		return http.StatusNotFound, ErrMsgGameNotFoundError
	case errors.Is(err, domain.ErrTradeNotFound):
		return http.StatusNotFound, ErrMsgTradeNotFoundError
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, ErrMsgUserExistsError
	case errors.Is(err, domain.ErrGameExists):
		return http.StatusConflict, ErrMsgGameExistsError
	case errors.Is(err, domain.ErrTradeNotPending):
		return http.StatusConflict, ErrMsgTradeNotPendingError
	case errors.Is(err, domain.ErrTradeConflict):
		return http.StatusConflict, ErrMsgTradeConflictError
	case errors.Is(err, domain.ErrInventoryInconsistent):
		return http.StatusInternalServerError, ErrMsgInventoryInconsistentErr
	case errors.Is(err, domain.ErrChannel):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError
	}

	// Wrapped errors with a domain error further down the chain.
	if unwrapped := errors.Unwrap(err); unwrapped != nil && unwrapped != err {
		return mapServiceErrorToUserMessage(unwrapped)
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
