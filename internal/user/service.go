// Package user implements account and inventory operations: registration,
// authentication, profile and password maintenance, and the add/update/delete
// side of game ownership. Game movement between accounts belongs to the
// exchange coordinator, not here.
package user

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/notify"
	"github.com/gameswap/exchange/internal/repository"
)

// TokenIssuer mints bearer tokens for authenticated accounts.
type TokenIssuer interface {
	GenerateToken(email string) (string, error)
}

// GameUpdate carries the mutable game fields; nil means leave unchanged.
type GameUpdate struct {
	NewName   *string
	Condition *string
}

// Service defines the interface for user operations
type Service interface {
	Register(ctx context.Context, user domain.User) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	GetSelf(ctx context.Context, email string) (*domain.User, error)
	UpdateSelf(ctx context.Context, email string, name, streetAddress *string) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, newPassword string) error

	AddGame(ctx context.Context, email string, game domain.Game) error
	GetGame(ctx context.Context, email, name string) (*domain.Game, error)
	UpdateGame(ctx context.Context, email, name string, update GameUpdate) (*domain.Game, error)
	DeleteGame(ctx context.Context, email, name string) error
}

type service struct {
	repo      repository.User
	tokens    TokenIssuer
	publisher notify.Publisher
}

// NewService creates a new user service
func NewService(repo repository.User, tokens TokenIssuer, publisher notify.Publisher) Service {
	return &service{repo: repo, tokens: tokens, publisher: publisher}
}

// Register creates a new account with an empty inventory.
func (s *service) Register(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.Games == nil {
		user.Games = map[string]domain.Game{}
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgUserRegistered, "email", user.Email)
	return &user, nil
}

// Authenticate checks the supplied secret against the stored one and mints a
// bearer token. Lookup failure and secret mismatch both report
// ErrInvalidCredentials so the response does not reveal which accounts exist.
func (s *service) Authenticate(ctx context.Context, email, password string) (string, error) {
	log := logger.FromContext(ctx)

	user, err := s.repo.GetUser(ctx, email)
	if err != nil {
		log.Warn(LogMsgAuthenticationFailed, "email", email)
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, email)
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		log.Warn(LogMsgAuthenticationFailed, "email", email)
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, email)
	}

	token, err := s.tokens.GenerateToken(email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	log.Info(LogMsgUserAuthenticated, "email", email)
	return token, nil
}

// GetSelf returns the account and its full inventory.
func (s *service) GetSelf(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetUser(ctx, email)
}

// UpdateSelf updates the mutable profile fields.
func (s *service) UpdateSelf(ctx context.Context, email string, name, streetAddress *string) (*domain.User, error) {
	if err := s.repo.UpdateUser(ctx, email, name, streetAddress); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgProfileUpdated, "email", email)
	return s.repo.GetUser(ctx, email)
}

// UpdatePassword rotates the account secret and emits a credential-changed
// event carrying the prior secret, best-effort: a publish failure is logged
// and never fails the rotation.
func (s *service) UpdatePassword(ctx context.Context, email, newPassword string) error {
	log := logger.FromContext(ctx)

	prior, err := s.repo.UpdatePassword(ctx, email, newPassword)
	if err != nil {
		return err
	}
	log.Info(LogMsgPasswordUpdated, "email", email)

	user, err := s.repo.GetUser(ctx, email)
	if err != nil {
		log.Error(LogMsgCredentialNotifFailed, "email", email, "error", err)
		return nil
	}

	event, err := notify.NewEvent(notify.CredentialChanged, email, notify.CredentialChangedPayloadV1{
		AccountName:     user.Name,
		AccountIdentity: email,
		PriorSecret:     prior,
	})
	if err != nil {
		log.Error(LogMsgCredentialNotifFailed, "email", email, "error", err)
		return nil
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error(LogMsgCredentialNotifFailed, "email", email, "error", err)
	}
	return nil
}

// AddGame inserts a new game into the account's inventory.
func (s *service) AddGame(ctx context.Context, email string, game domain.Game) error {
	if err := s.repo.InsertGame(ctx, email, game); err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgGameAdded, "email", email, "game", game.Name)
	return nil
}

// GetGame returns one game; absence is an error here, unlike the repository's
// find which reports nil for the exchange coordinator's re-reads.
func (s *service) GetGame(ctx context.Context, email, name string) (*domain.Game, error) {
	game, err := s.repo.FindGame(ctx, email, name)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("%w: %q for %s", domain.ErrGameNotFound, name, email)
	}
	return game, nil
}

// UpdateGame applies a rename and/or condition change. The rename runs first
// so the condition write targets the game's new identity.
func (s *service) UpdateGame(ctx context.Context, email, name string, update GameUpdate) (*domain.Game, error) {
	current := name
	if update.NewName != nil && *update.NewName != name {
		if err := s.repo.RenameGame(ctx, email, name, *update.NewName); err != nil {
			return nil, err
		}
		current = *update.NewName
	}
	if update.Condition != nil {
		if err := s.repo.UpdateGameCondition(ctx, email, current, *update.Condition); err != nil {
			return nil, err
		}
	}

	logger.FromContext(ctx).Info(LogMsgGameUpdated, "email", email, "game", current)
	return s.GetGame(ctx, email, current)
}

// DeleteGame removes a game from the inventory.
func (s *service) DeleteGame(ctx context.Context, email, name string) error {
	if _, err := s.repo.RemoveGame(ctx, email, name); err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgGameRemoved, "email", email, "game", name)
	return nil
}
