package repository

import (
	"context"

	"github.com/gameswap/exchange/internal/domain"
)

// Trade defines the interface for trade persistence
type Trade interface {
	CreateTrade(ctx context.Context, trade *domain.Trade) error
	GetTrade(ctx context.Context, tradeID string) (*domain.Trade, error)
	ListBySender(ctx context.Context, email string) ([]domain.Trade, error)
	ListByReceiver(ctx context.Context, email string) ([]domain.Trade, error)

	// UpdateStatusIfPending writes the new status only if the stored status
	// is still PENDING (compare-and-set). It reports whether the write won;
	// a false result with nil error means another transition got there first.
	UpdateStatusIfPending(ctx context.Context, tradeID string, status domain.TradeStatus) (bool, error)
}
