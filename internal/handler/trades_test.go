package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameswap/exchange/internal/auth"
	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/trade"
)

// fakeTradeService is a stateful stand-in for trade.Service.
type fakeTradeService struct {
	trades map[string]*domain.Trade
	nextID int
}

func newFakeTradeService() *fakeTradeService {
	return &fakeTradeService{trades: make(map[string]*domain.Trade)}
}

func (f *fakeTradeService) Create(_ context.Context, sender, receiver, offered, requested string) (*domain.Trade, error) {
	if sender == receiver {
		return nil, fmt.Errorf("%w: sender and receiver must differ", domain.ErrValidation)
	}
	f.nextID++
	t := &domain.Trade{
		ID:            fmt.Sprintf("trade-%d", f.nextID),
		Sender:        sender,
		Receiver:      receiver,
		OfferedGame:   offered,
		RequestedGame: requested,
		Status:        domain.TradeStatusPending,
	}
	f.trades[t.ID] = t
	return t, nil
}

func (f *fakeTradeService) Get(_ context.Context, tradeID, requester string) (*domain.Trade, error) {
	t, ok := f.trades[tradeID]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	if requester != t.Sender && requester != t.Receiver {
		return nil, domain.ErrUnauthorized
	}
	return t, nil
}

func (f *fakeTradeService) ListFor(_ context.Context, email string) (*domain.TradesForUser, error) {
	out := &domain.TradesForUser{Incoming: []domain.Trade{}, Outgoing: []domain.Trade{}}
	for _, t := range f.trades {
		switch email {
		case t.Receiver:
			out.Incoming = append(out.Incoming, *t)
		case t.Sender:
			out.Outgoing = append(out.Outgoing, *t)
		}
	}
	return out, nil
}

func (f *fakeTradeService) Transition(_ context.Context, tradeID string, target domain.TradeStatus, requester string) (*domain.Trade, error) {
	t, ok := f.trades[tradeID]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	if requester != t.Receiver {
		return nil, domain.ErrUnauthorized
	}
	if t.Status != domain.TradeStatusPending {
		return nil, domain.ErrTradeNotPending
	}
	t.Status = target
	return t, nil
}

func newTradeRouter(svc trade.Service, account string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithAccount(req.Context(), account)))
		})
	})
	r.Post("/trades", HandleCreateTrade(svc))
	r.Get("/trades", HandleListTrades(svc))
	r.Get("/trades/{id}", HandleGetTrade(svc))
	r.Post("/trades/{id}/accept", HandleResolveTrade(svc, domain.TradeStatusAccepted))
	r.Post("/trades/{id}/reject", HandleResolveTrade(svc, domain.TradeStatusRejected))
	return r
}

func TestHandleCreateTrade(t *testing.T) {
	InitValidator()
	svc := newFakeTradeService()
	router := newTradeRouter(svc, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/trades", CreateTradeRequest{
		Receiver:      "bob@example.com",
		OfferedGame:   "Chrono Drift",
		RequestedGame: "Star Courier",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"PENDING"`)
	require.Len(t, svc.trades, 1)

	// Offering to yourself is a validation error; the reason is surfaced.
	rec = doJSON(t, router, http.MethodPost, "/trades", CreateTradeRequest{
		Receiver:      "alice@example.com",
		OfferedGame:   "Chrono Drift",
		RequestedGame: "Star Courier",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sender and receiver must differ")

	// Missing fields never reach the service.
	rec = doJSON(t, router, http.MethodPost, "/trades", CreateTradeRequest{Receiver: "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, svc.trades, 1)
}

func TestHandleListAndGetTrade(t *testing.T) {
	InitValidator()
	svc := newFakeTradeService()
	created, err := svc.Create(context.Background(), "alice@example.com", "bob@example.com", "Chrono Drift", "Star Courier")
	require.NoError(t, err)

	aliceRouter := newTradeRouter(svc, "alice@example.com")
	rec := doJSON(t, aliceRouter, http.MethodGet, "/trades", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Data domain.TradesForUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Data.Outgoing, 1)
	assert.Empty(t, listResp.Data.Incoming)

	rec = doJSON(t, aliceRouter, http.MethodGet, "/trades/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A third party gets a 403, not the trade.
	outsider := newTradeRouter(svc, "mallory@example.com")
	rec = doJSON(t, outsider, http.MethodGet, "/trades/"+created.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, aliceRouter, http.MethodGet, "/trades/no-such-trade", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleResolveTrade(t *testing.T) {
	InitValidator()
	svc := newFakeTradeService()
	created, err := svc.Create(context.Background(), "alice@example.com", "bob@example.com", "Chrono Drift", "Star Courier")
	require.NoError(t, err)

	// Only the receiver may resolve.
	aliceRouter := newTradeRouter(svc, "alice@example.com")
	rec := doJSON(t, aliceRouter, http.MethodPost, "/trades/"+created.ID+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	bobRouter := newTradeRouter(svc, "bob@example.com")
	rec = doJSON(t, bobRouter, http.MethodPost, "/trades/"+created.ID+"/accept", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ACCEPTED"`)

	// Resolving a settled trade conflicts.
	rec = doJSON(t, bobRouter, http.MethodPost, "/trades/"+created.ID+"/reject", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrMsgTradeNotPendingError)
}
