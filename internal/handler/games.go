package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/user"
)

// AddGameRequest lists a game in the authenticated account's inventory.
type AddGameRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Publisher string `json:"publisher" validate:"max=200"`
	Year      int    `json:"year" validate:"omitempty,gte=1950,lte=2100"`
	Platform  string `json:"platform" validate:"max=100"`
	Condition string `json:"condition" validate:"max=100"`
}

// UpdateGameRequest renames a game and/or revises its condition. Absent
// fields are left unchanged.
type UpdateGameRequest struct {
	NewName   *string `json:"new_name,omitempty" validate:"omitempty,min=1,max=200"`
	Condition *string `json:"condition,omitempty" validate:"omitempty,max=100"`
}

// gameName pulls the game name out of the route, tolerating percent-encoding.
func gameName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// HandleAddGame lists a new game in the inventory.
func HandleAddGame(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		email, ok := requester(w, r)
		if !ok {
			return
		}

		var req AddGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode add game request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, err)
			return
		}

		game := domain.Game{
			Name:      req.Name,
			Publisher: req.Publisher,
			Year:      req.Year,
			Platform:  req.Platform,
			Condition: req.Condition,
		}
		if err := userService.AddGame(r.Context(), email, game); err != nil {
			log.Error("Failed to add game", "game", req.Name, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, DataResponse{Message: "game listed", Data: game})
	}
}

// HandleGetGame returns one game from the inventory.
func HandleGetGame(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := requester(w, r)
		if !ok {
			return
		}

		game, err := userService.GetGame(r.Context(), email, gameName(r))
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: game})
	}
}

// HandleUpdateGame renames a game and/or revises its condition.
func HandleUpdateGame(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		email, ok := requester(w, r)
		if !ok {
			return
		}

		var req UpdateGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode game update", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, err)
			return
		}

		updated, err := userService.UpdateGame(r.Context(), email, gameName(r), user.GameUpdate{
			NewName:   req.NewName,
			Condition: req.Condition,
		})
		if err != nil {
			log.Error("Failed to update game", "game", gameName(r), "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Message: "game updated", Data: updated})
	}
}

// HandleDeleteGame removes a game from the inventory.
func HandleDeleteGame(userService user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		email, ok := requester(w, r)
		if !ok {
			return
		}

		if err := userService.DeleteGame(r.Context(), email, gameName(r)); err != nil {
			log.Error("Failed to delete game", "game", gameName(r), "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: "game removed"})
	}
}
