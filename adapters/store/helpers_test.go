package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"commerce/adapters/store"
	"commerce/models"
)

// newTestStore 建立使用獨立記憶體資料庫的 Store
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(store.Config{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s, err := store.New(db)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func createUser(t *testing.T, s *store.Store, username string) (*models.User, *models.Profile) {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", Email: username + "@a.io"}
	profile, err := s.CreateUserWithProfile(context.Background(), user)
	require.NoError(t, err)
	return user, profile
}

func createAuction(t *testing.T, s *store.Store, owner uuid.UUID, price float64, createdAt time.Time) *models.Auction {
	t.Helper()
	auction := &models.Auction{
		Name:      fmt.Sprintf("item-%.0f", price),
		Price:     price,
		OwnerID:   owner,
		CreatedAt: createdAt,
	}
	require.NoError(t, s.CreateAuction(context.Background(), auction))
	return auction
}
