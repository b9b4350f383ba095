package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/trade"
)

// CreateTradeRequest proposes an exchange: the authenticated account offers
// one of its games for one of the receiver's.
type CreateTradeRequest struct {
	Receiver      string `json:"receiver" validate:"required,email"`
	OfferedGame   string `json:"offered_game" validate:"required,max=200"`
	RequestedGame string `json:"requested_game" validate:"required,max=200"`
}

// HandleCreateTrade creates a pending trade offer.
func HandleCreateTrade(tradeService trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		email, ok := requester(w, r)
		if !ok {
			return
		}

		var req CreateTradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode trade request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, err)
			return
		}

		created, err := tradeService.Create(r.Context(), email, req.Receiver, req.OfferedGame, req.RequestedGame)
		if err != nil {
			log.Warn("Failed to create trade", "receiver", req.Receiver, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, DataResponse{Message: "trade created", Data: created})
	}
}

// HandleListTrades returns the account's trades split into incoming and
// outgoing.
func HandleListTrades(tradeService trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := requester(w, r)
		if !ok {
			return
		}

		trades, err := tradeService.ListFor(r.Context(), email)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list trades", "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: trades})
	}
}

// HandleGetTrade returns a single trade. Only the two parties may view it.
func HandleGetTrade(tradeService trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := requester(w, r)
		if !ok {
			return
		}

		t, err := tradeService.Get(r.Context(), chi.URLParam(r, "id"), email)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: t})
	}
}

// HandleResolveTrade resolves a pending trade to the given terminal status on
// behalf of the receiver. Accepting performs the inventory swap before the
// status is recorded.
func HandleResolveTrade(tradeService trade.Service, target domain.TradeStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		email, ok := requester(w, r)
		if !ok {
			return
		}

		tradeID := chi.URLParam(r, "id")
		resolved, err := tradeService.Transition(r.Context(), tradeID, target, email)
		if err != nil {
			log.Warn("Failed to resolve trade", "trade_id", tradeID, "target", string(target), "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Message: "trade resolved", Data: resolved})
	}
}
