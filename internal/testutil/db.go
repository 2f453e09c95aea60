// Package testutil provides an isolated, migrated SQLite database and
// fixture helpers for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/franciscosanchezn/store-ratings-api/internal/database"
	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory database with foreign keys on and the schema migrated.
// A single connection is used so the memory database lives exactly as long as the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// HashPassword hashes with the minimum bcrypt cost to keep tests fast
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// CreateUser inserts a user with the given role and password
func CreateUser(t *testing.T, db *gorm.DB, name, email, password string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: HashPassword(t, password),
		Address:  "1 Test Road",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateStore inserts a store owned by ownerID
func CreateStore(t *testing.T, db *gorm.DB, name, email string, ownerID uint) *models.Store {
	t.Helper()
	store := &models.Store{
		Name:    name,
		Email:   email,
		Address: "2 Market Street",
		OwnerID: ownerID,
	}
	require.NoError(t, db.Create(store).Error)
	return store
}

// CreateRating inserts a rating row directly, bypassing the upsert
func CreateRating(t *testing.T, db *gorm.DB, userID, storeID uint, value int) *models.Rating {
	t.Helper()
	rating := &models.Rating{UserID: userID, StoreID: storeID, Rating: value}
	require.NoError(t, db.Create(rating).Error)
	return rating
}
