package config

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mmdatafocus/gallon_backend/appctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type historyRow struct {
	ID       int
	Quantity int
}

func (historyRow) TableName() string { return HistoryTable }

type otherRow struct {
	ID   int
	Name string
}

func openGuardedDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.Use(NewHistoryGuardPlugin()))
	require.NoError(t, conn.AutoMigrate(&historyRow{}, &otherRow{}))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestHistoryGuardBlocksUpdates(t *testing.T) {
	conn := openGuardedDB(t)

	row := historyRow{Quantity: 3}
	require.NoError(t, conn.Create(&row).Error)

	assert.ErrorIs(t, conn.Model(&row).Update("quantity", 1).Error, ErrHistoryImmutable)
	assert.ErrorIs(t, conn.Table(HistoryTable).Where("id = ?", row.ID).Update("quantity", 1).Error, ErrHistoryImmutable)

	var stored historyRow
	require.NoError(t, conn.First(&stored, row.ID).Error)
	assert.Equal(t, 3, stored.Quantity)
}

func TestHistoryGuardDeletesNeedContextFlag(t *testing.T) {
	conn := openGuardedDB(t)

	row := historyRow{Quantity: 3}
	require.NoError(t, conn.Create(&row).Error)

	assert.ErrorIs(t, conn.Delete(&row).Error, ErrHistoryImmutable)

	ctx := appctx.Set(context.Background(), appctx.ContextKeyAllowHistoryDelete, true)
	require.NoError(t, conn.WithContext(ctx).Delete(&row).Error)

	var count int64
	require.NoError(t, conn.Model(&historyRow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHistoryGuardIgnoresOtherTables(t *testing.T) {
	conn := openGuardedDB(t)

	row := otherRow{Name: "a"}
	require.NoError(t, conn.Create(&row).Error)
	require.NoError(t, conn.Model(&row).Update("name", "b").Error)
	require.NoError(t, conn.Delete(&row).Error)
}
