package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gameswap/exchange/internal/domain"
)

// UserRepository implements the user repository for PostgreSQL.
// Each account row carries its game inventory in a JSONB column keyed by game
// name, so every inventory operation is an atomic single-row update.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user with an empty inventory
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, name, password, street_address, games)
		VALUES ($1, $2, $3, $4, '{}'::jsonb)
		ON CONFLICT (email) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, user.Email, user.Name, user.Password, user.StreetAddress)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserExists, user.Email)
	}
	return nil
}

// GetUser fetches a user and their full inventory by email
func (r *UserRepository) GetUser(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT email, name, password, street_address, games
		FROM users
		WHERE email = $1
	`
	var user domain.User
	var gamesJSON []byte
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.Email, &user.Name, &user.Password, &user.StreetAddress, &gamesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := json.Unmarshal(gamesJSON, &user.Games); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}
	if user.Games == nil {
		user.Games = map[string]domain.Game{}
	}
	return &user, nil
}

// UserExists reports whether an account with the given email is registered
func (r *UserRepository) UserExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// UpdateUser updates the mutable profile fields; nil fields are left unchanged
func (r *UserRepository) UpdateUser(ctx context.Context, email string, name, streetAddress *string) error {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    street_address = COALESCE($3, street_address),
		    updated_at = NOW()
		WHERE email = $1
	`
	tag, err := r.db.Exec(ctx, query, email, name, streetAddress)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	return nil
}

// UpdatePassword replaces the stored secret and returns the prior one.
// The subselect in RETURNING runs against the statement's snapshot, so it
// yields the value the row held before the update.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, password string) (string, error) {
	query := `
		UPDATE users
		SET password = $2, updated_at = NOW()
		WHERE email = $1
		RETURNING (SELECT password FROM users u WHERE u.email = users.email)
	`
	var prior string
	err := r.db.QueryRow(ctx, query, email, password).Scan(&prior)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
		}
		return "", fmt.Errorf("failed to update password: %w", err)
	}
	return prior, nil
}

// FindGame returns the named game from the user's inventory, or nil when absent
func (r *UserRepository) FindGame(ctx context.Context, email, name string) (*domain.Game, error) {
	query := `SELECT games -> $2 FROM users WHERE email = $1`
	var gameJSON []byte
	err := r.db.QueryRow(ctx, query, email, name).Scan(&gameJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("failed to find game: %w", err)
	}
	if gameJSON == nil {
		return nil, nil
	}

	var game domain.Game
	if err := json.Unmarshal(gameJSON, &game); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}
	return &game, nil
}

// InsertGame adds a game to the user's inventory; the `NOT games ? $2` guard
// makes the insert atomic with the duplicate check
func (r *UserRepository) InsertGame(ctx context.Context, email string, game domain.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}

	query := `
		UPDATE users
		SET games = jsonb_set(games, ARRAY[$2::text], $3::jsonb), updated_at = NOW()
		WHERE email = $1 AND NOT games ? $2
	`
	tag, err := r.db.Exec(ctx, query, email, game.Name, gameJSON)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.UserExists(ctx, email)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
		}
		return fmt.Errorf("%w: %s", domain.ErrGameExists, game.Name)
	}
	return nil
}

// RemoveGame deletes a game from the user's inventory and returns the removed
// record for transplantation into another inventory
func (r *UserRepository) RemoveGame(ctx context.Context, email, name string) (*domain.Game, error) {
	query := `
		UPDATE users
		SET games = games - $2, updated_at = NOW()
		WHERE email = $1 AND games ? $2
		RETURNING (SELECT games -> $2 FROM users u WHERE u.email = users.email)
	`
	var gameJSON []byte
	err := r.db.QueryRow(ctx, query, email, name).Scan(&gameJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q for %s", domain.ErrGameNotFound, name, email)
		}
		return nil, fmt.Errorf("failed to remove game: %w", err)
	}

	var game domain.Game
	if err := json.Unmarshal(gameJSON, &game); err != nil {
		return nil, fmt.Errorf("failed to decode removed game: %w", err)
	}
	return &game, nil
}

// RenameGame changes a game's identity within one inventory in a single
// atomic update, guarding against both a missing source and a taken target
func (r *UserRepository) RenameGame(ctx context.Context, email, oldName, newName string) error {
	query := `
		UPDATE users
		SET games = (games - $2) ||
		            jsonb_build_object($3::text, jsonb_set(games -> $2, '{name}', to_jsonb($3::text))),
		    updated_at = NOW()
		WHERE email = $1 AND games ? $2 AND NOT games ? $3
	`
	tag, err := r.db.Exec(ctx, query, email, oldName, newName)
	if err != nil {
		return fmt.Errorf("failed to rename game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		game, err := r.FindGame(ctx, email, oldName)
		if err != nil {
			return err
		}
		if game == nil {
			return fmt.Errorf("%w: %q for %s", domain.ErrGameNotFound, oldName, email)
		}
		return fmt.Errorf("%w: %s", domain.ErrGameExists, newName)
	}
	return nil
}

// UpdateGameCondition updates the condition field of one game
func (r *UserRepository) UpdateGameCondition(ctx context.Context, email, name, condition string) error {
	query := `
		UPDATE users
		SET games = jsonb_set(games, ARRAY[$2::text, 'condition'], to_jsonb($3::text)),
		    updated_at = NOW()
		WHERE email = $1 AND games ? $2
	`
	tag, err := r.db.Exec(ctx, query, email, name, condition)
	if err != nil {
		return fmt.Errorf("failed to update game condition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q for %s", domain.ErrGameNotFound, name, email)
	}
	return nil
}
