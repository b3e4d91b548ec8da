// Package testutil builds a migrated SQLite-backed store for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Epoch is the starting point of fake clocks in tests.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// NewDB opens a fresh database file in the test's temp dir. A single
// connection keeps concurrent tests honest: writers queue up instead of
// failing with SQLITE_BUSY.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.Migrate(db))
	require.NoError(t, repository.NewRoleRepository(db).EnsureDefaults())
	return db
}

func NewStore(t *testing.T) repository.Store {
	t.Helper()
	return repository.NewStore(NewDB(t))
}

// CreateUser inserts a user with the given phone and verification status.
func CreateUser(t *testing.T, store repository.Store, phone string, status domain.VerificationStatus) *domain.User {
	t.Helper()

	r := store.Repos(context.Background())
	user, _, err := r.Users.FindOrCreateByPhone(phone)
	require.NoError(t, err)
	if status != "" && status != user.VerificationStatus {
		user.VerificationStatus = status
		require.NoError(t, r.Users.Save(user))
	}
	return user
}

// SetRole gives user the named seeded role.
func SetRole(t *testing.T, store repository.Store, user *domain.User, roleName string) {
	t.Helper()

	r := store.Repos(context.Background())
	role, err := r.Roles.FindByName(roleName)
	require.NoError(t, err)
	require.NoError(t, r.Users.SetRole(user.ID, &role.ID))
	user.RoleID = &role.ID
}
