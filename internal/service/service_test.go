package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Victorious-hub/Open-Graph/internal/config"
	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/models"
)

type enricherMock struct {
	mock.Mock
}

func (m *enricherMock) Enrich(ctx context.Context, url string) (*models.LinkMetadata, error) {
	args := m.Called(ctx, url)
	meta, _ := args.Get(0).(*models.LinkMetadata)
	return meta, args.Error(1)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(&config.Config{
		DBType:         config.DBTypeSQLite,
		DBName:         ":memory:",
		DBMaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, email string) *db.User {
	t.Helper()
	user := db.User{Email: email, Password: "x", IsActive: true}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func strPtr(s string) *string {
	return &s
}
