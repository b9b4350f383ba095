// Package exchange moves games between two inventories atomically. The
// coordinator is the only code that mutates inventories on behalf of a trade;
// everything else observes either the pre-swap or post-swap state.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gameswap/exchange/internal/concurrency"
	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/metrics"
	"github.com/gameswap/exchange/internal/repository"
)

// swapPhase tracks how far a swap has progressed. Phase transitions are
// logged so a crash between phases leaves a reconstructible trail.
type swapPhase int

const (
	swapNone    swapPhase = iota // nothing mutated
	swapRemoved                  // both games removed, inserts outstanding
	swapDone                     // both games in their destination inventories
)

func (p swapPhase) String() string {
	switch p {
	case swapNone:
		return "none"
	case swapRemoved:
		return "removed"
	case swapDone:
		return "done"
	}
	return "unknown"
}

// Coordinator executes game swaps between two accounts.
type Coordinator struct {
	repo          repository.User
	locks         *concurrency.LockManager
	insertRetries int
	retryBackoff  time.Duration
}

// NewCoordinator creates a Coordinator. insertRetries bounds how many times a
// failed insert is retried before the swap is declared inconsistent;
// retryBackoff is the initial delay, doubled per attempt.
func NewCoordinator(repo repository.User, locks *concurrency.LockManager, insertRetries int, retryBackoff time.Duration) *Coordinator {
	return &Coordinator{
		repo:          repo,
		locks:         locks,
		insertRetries: insertRetries,
		retryBackoff:  retryBackoff,
	}
}

// Swap exchanges senderGame (owned by sender) for receiverGame (owned by
// receiver). Both accounts are locked in lexicographic order for the whole
// operation, and both inventories are re-read under the lock: presence at
// trade creation proves nothing at swap time.
//
// Returns domain.ErrTradeConflict when the swap is no longer satisfiable and
// nothing was mutated. Returns domain.ErrInventoryInconsistent when the swap
// removed games it could not place back anywhere; that error means the stores
// need operator attention and is logged at the highest severity.
func (c *Coordinator) Swap(ctx context.Context, sender, receiver, senderGame, receiverGame string) error {
	log := logger.FromContext(ctx).With(
		"sender", sender, "receiver", receiver,
		"offered", senderGame, "requested", receiverGame)

	unlock := c.locks.LockPair(sender, receiver)
	defer unlock()

	log.Debug(LogMsgSwapStarted, "phase", swapNone.String())

	// Check every precondition before mutating anything. A failure here
	// aborts with the inventories untouched.
	if err := c.checkSwappable(ctx, sender, receiver, senderGame, receiverGame); err != nil {
		log.Info(LogMsgSwapAborted, "reason", err)
		return err
	}

	removedFromSender, err := c.repo.RemoveGame(ctx, sender, senderGame)
	if err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			log.Info(LogMsgSwapAborted, "reason", err)
			return fmt.Errorf("%s: %w: %v", ErrMsgGameNoLongerPresent, domain.ErrTradeConflict, err)
		}
		return err
	}

	removedFromReceiver, err := c.repo.RemoveGame(ctx, receiver, receiverGame)
	if err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			// First removal already happened; put it back before reporting
			// the conflict so the abort is invisible.
			if restoreErr := c.insertWithRetry(ctx, sender, *removedFromSender); restoreErr != nil {
				metrics.SwapInconsistencies.Inc()
				log.Error(LogMsgSwapInconsistent, "phase", swapRemoved.String(), "error", restoreErr)
				return fmt.Errorf("%s: %w: %v", ErrMsgFailedToReinsert, domain.ErrInventoryInconsistent, restoreErr)
			}
			return fmt.Errorf("%s: %w: %v", ErrMsgGameNoLongerPresent, domain.ErrTradeConflict, err)
		}
		return err
	}

	log.Debug(LogMsgSwapItemsRemoved, "phase", swapRemoved.String())

	// Both games are in flight. From here every failure path must either
	// finish the inserts or escalate; returning the games to their previous
	// owners is no longer an option once one insert has landed.
	if err := c.insertWithRetry(ctx, receiver, *removedFromSender); err != nil {
		metrics.SwapInconsistencies.Inc()
		log.Error(LogMsgSwapInconsistent, "phase", swapRemoved.String(), "error", err)
		return fmt.Errorf("%s: %w: %v", ErrMsgFailedToInsertSwapped, domain.ErrInventoryInconsistent, err)
	}
	if err := c.insertWithRetry(ctx, sender, *removedFromReceiver); err != nil {
		metrics.SwapInconsistencies.Inc()
		log.Error(LogMsgSwapInconsistent, "phase", swapRemoved.String(), "error", err)
		return fmt.Errorf("%s: %w: %v", ErrMsgFailedToInsertSwapped, domain.ErrInventoryInconsistent, err)
	}

	log.Info(LogMsgSwapCompleted, "phase", swapDone.String())
	return nil
}

// checkSwappable re-reads both inventories under the pair lock: both games
// must still be present, and each destination must have the incoming name
// free. When the two games share a name the destination check is skipped,
// since the removals free both names before the inserts run.
func (c *Coordinator) checkSwappable(ctx context.Context, sender, receiver, senderGame, receiverGame string) error {
	offered, err := c.repo.FindGame(ctx, sender, senderGame)
	if err != nil {
		return err
	}
	if offered == nil {
		return fmt.Errorf("%s: %w: %q not owned by %s", ErrMsgGameNoLongerPresent, domain.ErrTradeConflict, senderGame, sender)
	}

	requested, err := c.repo.FindGame(ctx, receiver, receiverGame)
	if err != nil {
		return err
	}
	if requested == nil {
		return fmt.Errorf("%s: %w: %q not owned by %s", ErrMsgGameNoLongerPresent, domain.ErrTradeConflict, receiverGame, receiver)
	}

	if senderGame == receiverGame {
		return nil
	}

	collision, err := c.repo.FindGame(ctx, receiver, senderGame)
	if err != nil {
		return err
	}
	if collision != nil {
		return fmt.Errorf("%s: %w: %q already owned by %s", ErrMsgGameNameTaken, domain.ErrTradeConflict, senderGame, receiver)
	}

	collision, err = c.repo.FindGame(ctx, sender, receiverGame)
	if err != nil {
		return err
	}
	if collision != nil {
		return fmt.Errorf("%s: %w: %q already owned by %s", ErrMsgGameNameTaken, domain.ErrTradeConflict, receiverGame, sender)
	}

	return nil
}

// insertWithRetry attempts the insert with bounded exponential backoff.
// ErrGameExists is permanent and not retried.
func (c *Coordinator) insertWithRetry(ctx context.Context, email string, game domain.Game) error {
	var lastErr error
	delay := c.retryBackoff

	for attempt := 1; attempt <= c.insertRetries; attempt++ {
		lastErr = c.repo.InsertGame(ctx, email, game)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, domain.ErrGameExists) {
			return lastErr
		}

		logger.FromContext(ctx).Warn(LogMsgSwapInsertRetry,
			"email", email, "game", game.Name, "attempt", attempt, "error", lastErr)

		if attempt < c.insertRetries {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("insert retry interrupted: %w", errors.Join(ctx.Err(), lastErr))
			}
			delay *= 2
		}
	}
	return lastErr
}
