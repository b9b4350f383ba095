// Package trade owns the trade lifecycle: creation, lookup, and the
// PENDING-to-terminal transition. It orchestrates the exchange coordinator
// and the notification producer but holds no inventory logic of its own.
package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gameswap/exchange/internal/concurrency"
	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/metrics"
	"github.com/gameswap/exchange/internal/notify"
	"github.com/gameswap/exchange/internal/repository"
)

// Swapper is the exchange coordinator capability consumed on acceptance.
type Swapper interface {
	Swap(ctx context.Context, sender, receiver, senderGame, receiverGame string) error
}

// Service defines the interface for trade operations
type Service interface {
	Create(ctx context.Context, sender, receiver, offeredGame, requestedGame string) (*domain.Trade, error)
	Get(ctx context.Context, tradeID, requester string) (*domain.Trade, error)
	ListFor(ctx context.Context, email string) (*domain.TradesForUser, error)

	// Transition resolves a PENDING trade to ACCEPTED or REJECTED on behalf
	// of the requesting account. Only the receiver may resolve a trade.
	Transition(ctx context.Context, tradeID string, target domain.TradeStatus, requester string) (*domain.Trade, error)
}

type service struct {
	trades    repository.Trade
	users     repository.User
	swapper   Swapper
	publisher notify.Publisher
	locks     *concurrency.LockManager
}

// NewService creates a new trade service
func NewService(trades repository.Trade, users repository.User, swapper Swapper, publisher notify.Publisher, locks *concurrency.LockManager) Service {
	return &service{
		trades:    trades,
		users:     users,
		swapper:   swapper,
		publisher: publisher,
		locks:     locks,
	}
}

// tradeLockKey namespaces trade locks away from the coordinator's account
// locks in the shared lock manager.
func tradeLockKey(tradeID string) string {
	return "trade:" + tradeID
}

// Create validates the offer against the current inventories and persists a
// PENDING trade. All checks are read-only: a failed creation mutates nothing.
func (s *service) Create(ctx context.Context, sender, receiver, offeredGame, requestedGame string) (*domain.Trade, error) {
	log := logger.FromContext(ctx)

	if sender == receiver {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, ReasonSelfTrade)
	}
	if offeredGame == requestedGame {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, ReasonSameGameName)
	}

	exists, err := s.users.UserExists(ctx, receiver)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, ReasonReceiverNotFound)
	}

	offered, err := s.users.FindGame(ctx, sender, offeredGame)
	if err != nil {
		return nil, err
	}
	if offered == nil {
		return nil, fmt.Errorf("%w: %s: %q", domain.ErrValidation, ReasonOfferedNotOwned, offeredGame)
	}

	requested, err := s.users.FindGame(ctx, receiver, requestedGame)
	if err != nil {
		return nil, err
	}
	if requested == nil {
		return nil, fmt.Errorf("%w: %s: %q", domain.ErrValidation, ReasonRequestedNotOwned, requestedGame)
	}

	trade := &domain.Trade{
		ID:            uuid.NewString(),
		Sender:        sender,
		Receiver:      receiver,
		OfferedGame:   offeredGame,
		RequestedGame: requestedGame,
		Status:        domain.TradeStatusPending,
	}
	if err := s.trades.CreateTrade(ctx, trade); err != nil {
		return nil, err
	}

	metrics.TradesCreated.Inc()
	log.Info(LogMsgTradeCreated, "trade_id", trade.ID, "sender", sender, "receiver", receiver)

	s.publishOfferEvent(ctx, notify.OfferCreated, trade)
	return trade, nil
}

// Get returns the trade if the requester is one of its parties.
func (s *service) Get(ctx context.Context, tradeID, requester string) (*domain.Trade, error) {
	trade, err := s.trades.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if requester != trade.Sender && requester != trade.Receiver {
		return nil, fmt.Errorf("%w: %s is not a party to trade %s", domain.ErrUnauthorized, requester, tradeID)
	}
	return trade, nil
}

// ListFor partitions the account's trades by role.
func (s *service) ListFor(ctx context.Context, email string) (*domain.TradesForUser, error) {
	outgoing, err := s.trades.ListBySender(ctx, email)
	if err != nil {
		return nil, err
	}
	incoming, err := s.trades.ListByReceiver(ctx, email)
	if err != nil {
		return nil, err
	}
	if outgoing == nil {
		outgoing = []domain.Trade{}
	}
	if incoming == nil {
		incoming = []domain.Trade{}
	}
	return &domain.TradesForUser{Incoming: incoming, Outgoing: outgoing}, nil
}

// Transition resolves a trade. Acceptance swaps the games before the status
// write, so a successful ACCEPTED status always means the exchange happened;
// if the swap fails the trade stays PENDING and the caller sees the swap's
// error. Transitions for one trade are serialized on a per-trade lock: the
// status is re-read under the lock, so of two racing resolutions the loser
// observes the terminal status before any swap is attempted and the exchange
// coordinator runs at most once per trade. The compare-and-set status write
// remains as a backstop against writers outside this process.
func (s *service) Transition(ctx context.Context, tradeID string, target domain.TradeStatus, requester string) (*domain.Trade, error) {
	log := logger.FromContext(ctx)

	if !target.IsTerminal() {
		return nil, fmt.Errorf("%w: %s: %q", domain.ErrValidation, ReasonInvalidTarget, target)
	}

	lock := s.locks.GetLock(tradeLockKey(tradeID))
	lock.Lock()
	defer lock.Unlock()

	trade, err := s.trades.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if requester != trade.Receiver {
		return nil, fmt.Errorf("%w: only the receiver may resolve trade %s", domain.ErrUnauthorized, tradeID)
	}
	if trade.Status != domain.TradeStatusPending {
		return nil, fmt.Errorf("%w: trade %s is %s", domain.ErrTradeNotPending, tradeID, trade.Status)
	}

	if target == domain.TradeStatusAccepted {
		if err := s.swapper.Swap(ctx, trade.Sender, trade.Receiver, trade.OfferedGame, trade.RequestedGame); err != nil {
			if errors.Is(err, domain.ErrTradeConflict) {
				metrics.TradeConflicts.Inc()
			}
			return nil, err
		}
	}

	won, err := s.trades.UpdateStatusIfPending(ctx, tradeID, target)
	if err != nil {
		return nil, err
	}
	if !won {
		// Unreachable through this service: the per-trade lock means no
		// concurrent transition can have claimed the row. A lost write
		// means something outside this process resolved the trade.
		log.Warn(LogMsgTransitionLost, "trade_id", tradeID, "target", target)
		if target == domain.TradeStatusAccepted {
			metrics.SwapInconsistencies.Inc()
			log.Error(LogMsgSwapOrphaned, "trade_id", tradeID)
		}
		return nil, fmt.Errorf("%w: trade %s was resolved concurrently", domain.ErrTradeNotPending, tradeID)
	}

	trade.Status = target
	metrics.TradesResolved.WithLabelValues(string(target)).Inc()
	log.Info(LogMsgTradeResolved, "trade_id", tradeID, "status", target)

	eventType := notify.OfferAccepted
	if target == domain.TradeStatusRejected {
		eventType = notify.OfferRejected
	}
	s.publishOfferEvent(ctx, eventType, trade)

	return trade, nil
}

// publishOfferEvent emits a lifecycle event, best-effort: enqueue failure is
// logged and never fails the triggering operation.
func (s *service) publishOfferEvent(ctx context.Context, eventType notify.Type, trade *domain.Trade) {
	log := logger.FromContext(ctx)

	sender, err := s.users.GetUser(ctx, trade.Sender)
	if err != nil {
		log.Error(LogMsgNotifyFailed, "trade_id", trade.ID, "type", eventType, "error", err)
		return
	}
	receiver, err := s.users.GetUser(ctx, trade.Receiver)
	if err != nil {
		log.Error(LogMsgNotifyFailed, "trade_id", trade.ID, "type", eventType, "error", err)
		return
	}

	payload := notify.OfferPayloadV1{
		TradeID:       trade.ID,
		Sender:        notify.Party{Name: sender.Name, Identity: sender.Email, Secret: sender.Password},
		Receiver:      notify.Party{Name: receiver.Name, Identity: receiver.Email, Secret: receiver.Password},
		OfferedItem:   trade.OfferedGame,
		RequestedItem: trade.RequestedGame,
	}
	event, err := notify.NewEvent(eventType, trade.ID, payload)
	if err != nil {
		log.Error(LogMsgNotifyFailed, "trade_id", trade.ID, "type", eventType, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error(LogMsgNotifyFailed, "trade_id", trade.ID, "type", eventType, "error", err)
	}
}
