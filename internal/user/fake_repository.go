package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/gameswap/exchange/internal/domain"
)

// FakeRepository is a stateful in-memory repository.User for tests. It
// mirrors the real store's semantics: atomic per-account operations, sentinel
// errors, and a returned record on removal.
type FakeRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewFakeRepository creates an empty fake repository
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{users: make(map[string]*domain.User)}
}

func (f *FakeRepository) CreateUser(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.Email]; exists {
		return fmt.Errorf("%w: %s", domain.ErrUserExists, user.Email)
	}
	copied := *user
	copied.Games = make(map[string]domain.Game, len(user.Games))
	for k, v := range user.Games {
		copied.Games[k] = v
	}
	f.users[user.Email] = &copied
	return nil
}

func (f *FakeRepository) GetUser(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	copied := *user
	copied.Games = make(map[string]domain.Game, len(user.Games))
	for k, v := range user.Games {
		copied.Games[k] = v
	}
	return &copied, nil
}

func (f *FakeRepository) UserExists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[email]
	return ok, nil
}

func (f *FakeRepository) UpdateUser(ctx context.Context, email string, name, streetAddress *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	if name != nil {
		user.Name = *name
	}
	if streetAddress != nil {
		user.StreetAddress = *streetAddress
	}
	return nil
}

func (f *FakeRepository) UpdatePassword(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	prior := user.Password
	user.Password = password
	return prior, nil
}

func (f *FakeRepository) FindGame(ctx context.Context, email, name string) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	game, ok := user.Games[name]
	if !ok {
		return nil, nil
	}
	return &game, nil
}

func (f *FakeRepository) InsertGame(ctx context.Context, email string, game domain.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	if _, exists := user.Games[game.Name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrGameExists, game.Name)
	}
	user.Games[game.Name] = game
	return nil
}

func (f *FakeRepository) RemoveGame(ctx context.Context, email, name string) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	game, ok := user.Games[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, name)
	}
	delete(user.Games, name)
	return &game, nil
}

func (f *FakeRepository) RenameGame(ctx context.Context, email, oldName, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	game, ok := user.Games[oldName]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrGameNotFound, oldName)
	}
	if _, taken := user.Games[newName]; taken {
		return fmt.Errorf("%w: %s", domain.ErrGameExists, newName)
	}
	delete(user.Games, oldName)
	game.Name = newName
	user.Games[newName] = game
	return nil
}

func (f *FakeRepository) UpdateGameCondition(ctx context.Context, email, name, condition string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	game, ok := user.Games[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrGameNotFound, name)
	}
	game.Condition = condition
	user.Games[name] = game
	return nil
}
