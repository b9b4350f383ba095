package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameswap/exchange/internal/concurrency"
	"github.com/gameswap/exchange/internal/domain"
)

// fakeInventory is a stateful in-memory repository.User covering the
// inventory-store capability. failInsert injects transient insert failures
// per account.
type fakeInventory struct {
	mu         sync.Mutex
	games      map[string]map[string]domain.Game // email -> name -> game
	failInsert map[string]int                    // email -> remaining failures
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		games:      make(map[string]map[string]domain.Game),
		failInsert: make(map[string]int),
	}
}

func (f *fakeInventory) addUser(email string, games ...domain.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := make(map[string]domain.Game)
	for _, g := range games {
		inv[g.Name] = g
	}
	f.games[email] = inv
}

func (f *fakeInventory) gameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, inv := range f.games {
		total += len(inv)
	}
	return total
}

func (f *fakeInventory) FindGame(ctx context.Context, email, name string) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.games[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	game, ok := inv[name]
	if !ok {
		return nil, nil
	}
	return &game, nil
}

func (f *fakeInventory) InsertGame(ctx context.Context, email string, game domain.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert[email] > 0 {
		f.failInsert[email]--
		return errors.New("store unavailable")
	}
	inv, ok := f.games[email]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	if _, exists := inv[game.Name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrGameExists, game.Name)
	}
	inv[game.Name] = game
	return nil
}

func (f *fakeInventory) RemoveGame(ctx context.Context, email, name string) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.games[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
	}
	game, ok := inv[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, name)
	}
	delete(inv, name)
	return &game, nil
}

// Unused repository.User methods.
func (f *fakeInventory) CreateUser(ctx context.Context, user *domain.User) error { return nil }
func (f *fakeInventory) GetUser(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}
func (f *fakeInventory) UserExists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.games[email]
	return ok, nil
}
func (f *fakeInventory) UpdateUser(ctx context.Context, email string, name, streetAddress *string) error {
	return nil
}
func (f *fakeInventory) UpdatePassword(ctx context.Context, email, password string) (string, error) {
	return "", nil
}
func (f *fakeInventory) RenameGame(ctx context.Context, email, oldName, newName string) error {
	return nil
}
func (f *fakeInventory) UpdateGameCondition(ctx context.Context, email, name, condition string) error {
	return nil
}

func newTestCoordinator(repo *fakeInventory) *Coordinator {
	return NewCoordinator(repo, concurrency.NewLockManager(), 3, time.Millisecond)
}

func TestSwap_MovesBothGames(t *testing.T) {
	repo := newFakeInventory()
	repo.addUser("alice@example.com", domain.Game{Name: "Chrono Drift", Condition: "good"})
	repo.addUser("bob@example.com", domain.Game{Name: "Star Courier", Condition: "worn"})

	coord := newTestCoordinator(repo)
	err := coord.Swap(context.Background(), "alice@example.com", "bob@example.com", "Chrono Drift", "Star Courier")
	require.NoError(t, err)

	got, err := repo.FindGame(context.Background(), "alice@example.com", "Star Courier")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "worn", got.Condition, "the game record should travel intact")

	got, err = repo.FindGame(context.Background(), "bob@example.com", "Chrono Drift")
	require.NoError(t, err)
	require.NotNil(t, got)

	gone, err := repo.FindGame(context.Background(), "alice@example.com", "Chrono Drift")
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Equal(t, 2, repo.gameCount())
}

func TestSwap_MissingOfferedGameIsConflict(t *testing.T) {
	repo := newFakeInventory()
	repo.addUser("alice@example.com")
	repo.addUser("bob@example.com", domain.Game{Name: "Star Courier"})

	coord := newTestCoordinator(repo)
	err := coord.Swap(context.Background(), "alice@example.com", "bob@example.com", "Chrono Drift", "Star Courier")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTradeConflict)

	// Nothing mutated.
	got, err := repo.FindGame(context.Background(), "bob@example.com", "Star Courier")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSwap_DestinationNameCollisionIsConflict(t *testing.T) {
	repo := newFakeInventory()
	repo.addUser("alice@example.com", domain.Game{Name: "Chrono Drift"})
	repo.addUser("bob@example.com",
		domain.Game{Name: "Star Courier"},
		domain.Game{Name: "Chrono Drift"}) // receiver already owns the incoming name

	coord := newTestCoordinator(repo)
	err := coord.Swap(context.Background(), "alice@example.com", "bob@example.com", "Chrono Drift", "Star Courier")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTradeConflict)
	assert.Equal(t, 3, repo.gameCount(), "conflict must not mutate inventories")
}

func TestSwap_SameNameGames(t *testing.T) {
	repo := newFakeInventory()
	repo.addUser("alice@example.com", domain.Game{Name: "Chrono Drift", Condition: "good"})
	repo.addUser("bob@example.com", domain.Game{Name: "Chrono Drift", Condition: "worn"})

	coord := newTestCoordinator(repo)
	err := coord.Swap(context.Background(), "alice@example.com", "bob@example.com", "Chrono Drift", "Chrono Drift")
	require.NoError(t, err)

	got, err := repo.FindGame(context.Background(), "alice@example.com", "Chrono Drift")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "worn", got.Condition)
}

func TestSwap_TransientInsertFailureIsRetried(t *testing.T) {
	repo := newFakeInventory()
	repo.addUser("alice@example.com", domain.Game{Name: "Chrono Drift"})
	repo.addUser("bob@example.com", domain.Game{Name: "Star Courier"})
	repo.failInsert["bob@example.com"] = 2 // fewer than the retry budget

	coord := newTestCoordinator(repo)
	err := coord.Swap(context.Background(), "alice@example.com", "bob@example.com", "Chrono Drift", "Star Courier")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.gameCount())
}

func TestSwap_ExhaustedRetriesEscalate(t *testing.T) {
	repo := newFakeInventory()
	repo.addUser("alice@example.com", domain.Game{Name: "Chrono Drift"})
	repo.addUser("bob@example.com", domain.Game{Name: "Star Courier"})
	repo.failInsert["bob@example.com"] = 100

	coord := newTestCoordinator(repo)
	err := coord.Swap(context.Background(), "alice@example.com", "bob@example.com", "Chrono Drift", "Star Courier")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInventoryInconsistent)
}

func TestSwap_ConcurrentSwapsConserveGames(t *testing.T) {
	repo := newFakeInventory()
	repo.addUser("alice@example.com",
		domain.Game{Name: "Chrono Drift"},
		domain.Game{Name: "Mushroom Run"})
	repo.addUser("bob@example.com",
		domain.Game{Name: "Star Courier"},
		domain.Game{Name: "Night Circuit"})

	coord := newTestCoordinator(repo)

	var wg sync.WaitGroup
	swaps := [][2]string{
		{"Chrono Drift", "Star Courier"},
		{"Mushroom Run", "Night Circuit"},
		{"Chrono Drift", "Star Courier"}, // loses: games already moved
	}
	for _, pair := range swaps {
		wg.Add(1)
		go func(offered, requested string) {
			defer wg.Done()
			err := coord.Swap(context.Background(), "alice@example.com", "bob@example.com", offered, requested)
			if err != nil && !errors.Is(err, domain.ErrTradeConflict) {
				t.Errorf("unexpected swap error: %v", err)
			}
		}(pair[0], pair[1])
	}
	wg.Wait()

	assert.Equal(t, 4, repo.gameCount(), "no game may be duplicated or lost")
}
