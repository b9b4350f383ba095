package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gameswap/exchange/internal/database"
	"github.com/gameswap/exchange/internal/domain"
)

// setupTestDB starts a throwaway Postgres container, applies the embedded
// migrations, and returns a connected pool. Skips when Docker is unavailable.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	var pgContainer *tcpostgres.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = tcpostgres.Run(ctx,
			"postgres:15-alpine",
			tcpostgres.WithDatabase("testdb"),
			tcpostgres.WithUsername("testuser"),
			tcpostgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(5*time.Second)),
		)
	}()

	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	if pgContainer == nil {
		t.Skip("postgres container unavailable")
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.NewPool(connStr, 10, 5*time.Minute, 30*time.Minute)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(pool); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	return pool
}

func TestUserRepository_Integration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	t.Run("CreateUser and GetUser", func(t *testing.T) {
		user := &domain.User{
			Email:         "alice@example.com",
			Name:          "Alice",
			Password:      "hunter2",
			StreetAddress: "1 Main St",
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		retrieved, err := repo.GetUser(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if retrieved.Name != "Alice" {
			t.Errorf("expected name Alice, got %s", retrieved.Name)
		}
		if len(retrieved.Games) != 0 {
			t.Errorf("expected empty inventory, got %d games", len(retrieved.Games))
		}

		// Duplicate registration must be rejected
		if err := repo.CreateUser(ctx, user); !errors.Is(err, domain.ErrUserExists) {
			t.Errorf("expected ErrUserExists, got %v", err)
		}
	})

	t.Run("GetUser - Not Found", func(t *testing.T) {
		_, err := repo.GetUser(ctx, "nobody@example.com")
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("UpdateUser partial fields", func(t *testing.T) {
		user := &domain.User{Email: "bob@example.com", Name: "Bob", Password: "pw", StreetAddress: "2 Oak Ave"}
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		newName := "Robert"
		if err := repo.UpdateUser(ctx, "bob@example.com", &newName, nil); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		retrieved, err := repo.GetUser(ctx, "bob@example.com")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if retrieved.Name != "Robert" {
			t.Errorf("expected name Robert, got %s", retrieved.Name)
		}
		if retrieved.StreetAddress != "2 Oak Ave" {
			t.Errorf("expected address unchanged, got %s", retrieved.StreetAddress)
		}
	})

	t.Run("UpdatePassword returns prior secret", func(t *testing.T) {
		user := &domain.User{Email: "carol@example.com", Name: "Carol", Password: "oldpw"}
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		prior, err := repo.UpdatePassword(ctx, "carol@example.com", "newpw")
		if err != nil {
			t.Fatalf("UpdatePassword failed: %v", err)
		}
		if prior != "oldpw" {
			t.Errorf("expected prior secret oldpw, got %s", prior)
		}

		retrieved, err := repo.GetUser(ctx, "carol@example.com")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if retrieved.Password != "newpw" {
			t.Errorf("expected stored secret newpw, got %s", retrieved.Password)
		}
	})

	t.Run("Inventory Operations", func(t *testing.T) {
		user := &domain.User{Email: "dave@example.com", Name: "Dave", Password: "pw"}
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		game := domain.Game{
			Name:      "Chrono Drift",
			Publisher: "Nightfall",
			Year:      2019,
			Platform:  "Switch",
			Condition: "good",
		}
		if err := repo.InsertGame(ctx, "dave@example.com", game); err != nil {
			t.Fatalf("InsertGame failed: %v", err)
		}
		if err := repo.InsertGame(ctx, "dave@example.com", game); !errors.Is(err, domain.ErrGameExists) {
			t.Errorf("expected ErrGameExists, got %v", err)
		}

		found, err := repo.FindGame(ctx, "dave@example.com", "Chrono Drift")
		if err != nil {
			t.Fatalf("FindGame failed: %v", err)
		}
		if found == nil || found.Publisher != "Nightfall" {
			t.Fatalf("expected game from Nightfall, got %+v", found)
		}

		missing, err := repo.FindGame(ctx, "dave@example.com", "Nonexistent")
		if err != nil {
			t.Fatalf("FindGame failed: %v", err)
		}
		if missing != nil {
			t.Errorf("expected nil for absent game, got %+v", missing)
		}

		if err := repo.UpdateGameCondition(ctx, "dave@example.com", "Chrono Drift", "worn"); err != nil {
			t.Fatalf("UpdateGameCondition failed: %v", err)
		}

		if err := repo.RenameGame(ctx, "dave@example.com", "Chrono Drift", "Chrono Drift DX"); err != nil {
			t.Fatalf("RenameGame failed: %v", err)
		}
		renamed, err := repo.FindGame(ctx, "dave@example.com", "Chrono Drift DX")
		if err != nil {
			t.Fatalf("FindGame failed: %v", err)
		}
		if renamed == nil || renamed.Name != "Chrono Drift DX" || renamed.Condition != "worn" {
			t.Fatalf("expected renamed game with worn condition, got %+v", renamed)
		}

		removed, err := repo.RemoveGame(ctx, "dave@example.com", "Chrono Drift DX")
		if err != nil {
			t.Fatalf("RemoveGame failed: %v", err)
		}
		if removed.Publisher != "Nightfall" {
			t.Errorf("expected removed game to carry its record, got %+v", removed)
		}
		if _, err := repo.RemoveGame(ctx, "dave@example.com", "Chrono Drift DX"); !errors.Is(err, domain.ErrGameNotFound) {
			t.Errorf("expected ErrGameNotFound, got %v", err)
		}
	})
}

func TestTradeRepository_Integration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	repo := NewTradeRepository(pool)

	for _, u := range []*domain.User{
		{Email: "sender@example.com", Name: "Sender", Password: "pw"},
		{Email: "receiver@example.com", Name: "Receiver", Password: "pw"},
	} {
		if err := users.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	newTrade := func() *domain.Trade {
		return &domain.Trade{
			ID:            uuid.NewString(),
			Sender:        "sender@example.com",
			Receiver:      "receiver@example.com",
			OfferedGame:   "Chrono Drift",
			RequestedGame: "Star Courier",
			Status:        domain.TradeStatusPending,
		}
	}

	t.Run("CreateTrade and GetTrade", func(t *testing.T) {
		trade := newTrade()
		if err := repo.CreateTrade(ctx, trade); err != nil {
			t.Fatalf("CreateTrade failed: %v", err)
		}

		retrieved, err := repo.GetTrade(ctx, trade.ID)
		if err != nil {
			t.Fatalf("GetTrade failed: %v", err)
		}
		if retrieved.Status != domain.TradeStatusPending {
			t.Errorf("expected PENDING, got %s", retrieved.Status)
		}

		_, err = repo.GetTrade(ctx, uuid.NewString())
		if !errors.Is(err, domain.ErrTradeNotFound) {
			t.Errorf("expected ErrTradeNotFound, got %v", err)
		}
	})

	t.Run("ListBySender and ListByReceiver", func(t *testing.T) {
		outgoing, err := repo.ListBySender(ctx, "sender@example.com")
		if err != nil {
			t.Fatalf("ListBySender failed: %v", err)
		}
		if len(outgoing) == 0 {
			t.Error("expected at least one outgoing trade")
		}

		incoming, err := repo.ListByReceiver(ctx, "receiver@example.com")
		if err != nil {
			t.Fatalf("ListByReceiver failed: %v", err)
		}
		if len(incoming) == 0 {
			t.Error("expected at least one incoming trade")
		}
	})

	t.Run("UpdateStatusIfPending resolves exactly once", func(t *testing.T) {
		trade := newTrade()
		if err := repo.CreateTrade(ctx, trade); err != nil {
			t.Fatalf("CreateTrade failed: %v", err)
		}

		won, err := repo.UpdateStatusIfPending(ctx, trade.ID, domain.TradeStatusAccepted)
		if err != nil {
			t.Fatalf("UpdateStatusIfPending failed: %v", err)
		}
		if !won {
			t.Fatal("expected first transition to win")
		}

		won, err = repo.UpdateStatusIfPending(ctx, trade.ID, domain.TradeStatusRejected)
		if err != nil {
			t.Fatalf("UpdateStatusIfPending failed: %v", err)
		}
		if won {
			t.Error("expected second transition to lose")
		}

		retrieved, err := repo.GetTrade(ctx, trade.ID)
		if err != nil {
			t.Fatalf("GetTrade failed: %v", err)
		}
		if retrieved.Status != domain.TradeStatusAccepted {
			t.Errorf("expected ACCEPTED to stick, got %s", retrieved.Status)
		}
	})

	t.Run("Concurrent resolutions race", func(t *testing.T) {
		trade := newTrade()
		if err := repo.CreateTrade(ctx, trade); err != nil {
			t.Fatalf("CreateTrade failed: %v", err)
		}

		const attempts = 10
		var wg sync.WaitGroup
		wins := make(chan domain.TradeStatus, attempts)

		for i := 0; i < attempts; i++ {
			status := domain.TradeStatusAccepted
			if i%2 == 1 {
				status = domain.TradeStatusRejected
			}
			wg.Add(1)
			go func(s domain.TradeStatus) {
				defer wg.Done()
				won, err := repo.UpdateStatusIfPending(ctx, trade.ID, s)
				if err != nil {
					t.Errorf("UpdateStatusIfPending failed: %v", err)
					return
				}
				if won {
					wins <- s
				}
			}(status)
		}
		wg.Wait()
		close(wins)

		var winners []domain.TradeStatus
		for s := range wins {
			winners = append(winners, s)
		}
		if len(winners) != 1 {
			t.Fatalf("expected exactly one winning transition, got %d", len(winners))
		}

		retrieved, err := repo.GetTrade(ctx, trade.ID)
		if err != nil {
			t.Fatalf("GetTrade failed: %v", err)
		}
		if retrieved.Status != winners[0] {
			t.Errorf("stored status %s does not match winner %s", retrieved.Status, winners[0])
		}
	})
}
