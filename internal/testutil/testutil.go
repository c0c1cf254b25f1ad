package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pawhome/pawhome/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// MigrationsDir returns the directory holding the SQL migrations.
func MigrationsDir() (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "internal", "repository", "migrations"), nil
}

// ResetSchema drops every table and reapplies all up migrations on a clean
// schema.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := DropSchema(ctx, pool); err != nil {
		return err
	}

	dir, err := MigrationsDir()
	if err != nil {
		return err
	}
	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("glob up migrations: %w", err)
	}
	sort.Strings(ups)
	for _, path := range ups {
		if err := execFile(ctx, pool, path); err != nil {
			return err
		}
	}
	return nil
}

// DropSchema applies every down migration, leaving an empty database.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	dir, err := MigrationsDir()
	if err != nil {
		return err
	}
	downs, err := filepath.Glob(filepath.Join(dir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("glob down migrations: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(downs)))
	for _, path := range downs {
		if err := execFile(ctx, pool, path); err != nil {
			return err
		}
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}
	return nil
}

func execFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(body)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates an active identity with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	return &model.User{
		ID:           uuid.New(),
		Email:        model.NormalizeEmail(email),
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		IsActive:     true,
		DateJoined:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestShelter creates a shelter profile with a unique name.
func NewTestShelter(t testing.TB) *model.Shelter {
	t.Helper()
	return &model.Shelter{
		Name:        UniqueName("Refugio"),
		Address:     "Calle Falsa 123",
		PhoneNumber: "+34912345678",
		Responsible: "Ana Pérez",
		Logo:        "https://example.com/logo.png",
	}
}

// NewTestAdmin creates an admin profile with a unique name.
func NewTestAdmin(t testing.TB) *model.Admin {
	t.Helper()
	return &model.Admin{Name: UniqueName("admin")}
}

// NewTestPet creates a pet owned by shelterID.
func NewTestPet(t testing.TB, shelterID uuid.UUID, name string) *model.Pet {
	t.Helper()
	pet := &model.Pet{
		ID:        uuid.New(),
		ShelterID: shelterID,
		Name:      name,
		Race:      "mestizo",
		Age:       2,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	pet.ApplyDefaults()
	return pet
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s%d@example.com", strings.ToLower(prefix), time.Now().UnixNano())
}

// UniqueName generates a unique name that fits a 50 character column.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
