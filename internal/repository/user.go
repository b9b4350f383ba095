package repository

import (
	"context"

	"github.com/gameswap/exchange/internal/domain"
)

// User defines the interface for user and inventory persistence.
//
// The game operations are the inventory-store capability consumed by the
// exchange coordinator: each is an atomic single-record operation against one
// account's inventory.
type User interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, email string) (*domain.User, error)
	UserExists(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, email string, name, streetAddress *string) error

	// UpdatePassword replaces the stored secret and returns the prior one,
	// which the credential-changed notification carries.
	UpdatePassword(ctx context.Context, email, password string) (string, error)

	// FindGame returns nil (no error) when the game is absent.
	FindGame(ctx context.Context, email, name string) (*domain.Game, error)

	// InsertGame fails with domain.ErrGameExists if the name is already taken
	// in the target inventory.
	InsertGame(ctx context.Context, email string, game domain.Game) error

	// RemoveGame fails with domain.ErrGameNotFound if absent, and returns the
	// removed record so it can be transplanted into another inventory.
	RemoveGame(ctx context.Context, email, name string) (*domain.Game, error)

	RenameGame(ctx context.Context, email, oldName, newName string) error
	UpdateGameCondition(ctx context.Context, email, name, condition string) error
}
