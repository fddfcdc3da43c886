package database

import (
	"context"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvasilev/concord/internal/models"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// testIDCounter provides unique ids across all tests in the package.
// Starts well above zero to avoid conflicts with any existing data.
var testIDCounter int64 = 500000

func nextID() int64 {
	return atomic.AddInt64(&testIDCounter, 1)
}

// createTestUser inserts a user and returns its id.
func createTestUser(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	id := nextID()
	users := NewUserRepository(pool)
	err := users.Create(context.Background(), &models.User{
		ID:           id,
		Username:     "user-" + strconv.FormatInt(id, 10),
		DisplayName:  "Test User",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

// createTestServer inserts a server owned by ownerID and returns its id.
func createTestServer(t *testing.T, pool *pgxpool.Pool, ownerID int64) int64 {
	t.Helper()
	id := nextID()
	servers := NewServerRepository(pool)
	err := servers.Create(context.Background(), &models.Server{
		ID:        id,
		Name:      "test server",
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("creating test server: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM servers WHERE id = $1`, id)
	})
	return id
}
