package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gameswap/exchange/internal/domain"
)

// TradeRepository implements the trade repository for PostgreSQL
type TradeRepository struct {
	db *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{db: db}
}

// CreateTrade records a new trade proposal
func (r *TradeRepository) CreateTrade(ctx context.Context, trade *domain.Trade) error {
	query := `
		INSERT INTO trades (trade_id, sender, receiver, offered_game, requested_game, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		trade.ID, trade.Sender, trade.Receiver, trade.OfferedGame, trade.RequestedGame, trade.Status)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// GetTrade fetches a single trade by ID
func (r *TradeRepository) GetTrade(ctx context.Context, tradeID string) (*domain.Trade, error) {
	query := `
		SELECT trade_id, sender, receiver, offered_game, requested_game, status
		FROM trades
		WHERE trade_id = $1
	`
	trade, err := scanTrade(r.db.QueryRow(ctx, query, tradeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTradeNotFound, tradeID)
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// ListBySender returns all trades proposed by the given account
func (r *TradeRepository) ListBySender(ctx context.Context, email string) ([]domain.Trade, error) {
	return r.list(ctx, "sender", email)
}

// ListByReceiver returns all trades addressed to the given account
func (r *TradeRepository) ListByReceiver(ctx context.Context, email string) ([]domain.Trade, error) {
	return r.list(ctx, "receiver", email)
}

func (r *TradeRepository) list(ctx context.Context, column, email string) ([]domain.Trade, error) {
	query := fmt.Sprintf(`
		SELECT trade_id, sender, receiver, offered_game, requested_game, status
		FROM trades
		WHERE %s = $1
		ORDER BY created_at
	`, column)

	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// UpdateStatusIfPending moves a trade out of PENDING, but only if it is still
// there. The status predicate makes the transition a compare-and-set, so of
// two racing resolutions exactly one observes true.
func (r *TradeRepository) UpdateStatusIfPending(ctx context.Context, tradeID string, status domain.TradeStatus) (bool, error) {
	query := `
		UPDATE trades
		SET status = $2, updated_at = NOW()
		WHERE trade_id = $1 AND status = 'PENDING'
	`
	tag, err := r.db.Exec(ctx, query, tradeID, status)
	if err != nil {
		return false, fmt.Errorf("failed to update trade status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var trade domain.Trade
	err := row.Scan(
		&trade.ID, &trade.Sender, &trade.Receiver,
		&trade.OfferedGame, &trade.RequestedGame, &trade.Status)
	if err != nil {
		return nil, err
	}
	if !trade.Status.Valid() {
		return nil, fmt.Errorf("trade %s has unknown status %q", trade.ID, trade.Status)
	}
	return &trade, nil
}
