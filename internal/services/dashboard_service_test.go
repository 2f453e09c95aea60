package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/franciscosanchezn/store-ratings-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDashboardService(db)
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{}, *stats)

	owner := testutil.CreateUser(t, db, "Olive Owner", "olive@example.com", "Owner@123", models.RoleStoreOwner)
	alice := testutil.CreateUser(t, db, "Alice Shopper", "alice@example.com", "Alice@123", models.RoleUser)
	deli := testutil.CreateStore(t, db, "Olive's Deli", "deli@example.com", owner.ID)
	testutil.CreateRating(t, db, alice.ID, deli.ID, 4)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{TotalUsers: 2, TotalStores: 1, TotalRatings: 1}, *stats)
}
