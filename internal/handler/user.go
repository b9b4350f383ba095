package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gameswap/exchange/internal/auth"
	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/user"
)

// RegisterRequest represents the request to create a new account.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email,max=254"`
	Name          string `json:"name" validate:"required,max=100"`
	Password      string `json:"password" validate:"required,min=8,max=128"`
	StreetAddress string `json:"street_address" validate:"max=200"`
}

// LoginRequest represents a credential check.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token issued on a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// UpdateSelfRequest carries optional profile updates. Absent fields are left
// unchanged.
type UpdateSelfRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=100"`
	StreetAddress *string `json:"street_address,omitempty" validate:"omitempty,max=200"`
}

// UpdatePasswordRequest rotates the account secret.
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// requester extracts the authenticated account from the request context.
// Routes behind the auth middleware always carry one; a miss means the route
// was wired outside it.
func requester(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := auth.AccountFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
	}
	return email, ok
}

// HandleRegister handles account creation.
func HandleRegister(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode register request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Register request failed validation")
			respondValidationError(w, err)
			return
		}

		created, err := userService.Register(r.Context(), domain.User{
			Email:         req.Email,
			Name:          req.Name,
			Password:      req.Password,
			StreetAddress: req.StreetAddress,
		})
		if err != nil {
			log.Error("Failed to register user", "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, DataResponse{Message: "account created", Data: created})
	}
}

// HandleLogin verifies credentials and issues a bearer token.
func HandleLogin(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode login request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, err)
			return
		}

		token, err := userService.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			log.Warn("Login failed", "email", req.Email)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, LoginResponse{Token: token})
	}
}

// HandleGetSelf returns the authenticated account's profile and inventory.
func HandleGetSelf(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := requester(w, r)
		if !ok {
			return
		}

		u, err := userService.GetSelf(r.Context(), email)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to load account", "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: u})
	}
}

// HandleUpdateSelf applies partial profile updates.
func HandleUpdateSelf(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		email, ok := requester(w, r)
		if !ok {
			return
		}

		var req UpdateSelfRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode profile update", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, err)
			return
		}

		updated, err := userService.UpdateSelf(r.Context(), email, req.Name, req.StreetAddress)
		if err != nil {
			log.Error("Failed to update profile", "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Message: "profile updated", Data: updated})
	}
}

// HandleUpdatePassword rotates the account secret. A credential-changed
// notification is published downstream of the service call.
func HandleUpdatePassword(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		email, ok := requester(w, r)
		if !ok {
			return
		}

		var req UpdatePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode password update", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, err)
			return
		}

		if err := userService.UpdatePassword(r.Context(), email, req.Password); err != nil {
			log.Error("Failed to update password", "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: "password updated"})
	}
}
