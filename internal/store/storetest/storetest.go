// Package storetest opens in-memory POS stores for tests.
package storetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/redis"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB opens an isolated in-memory sqlite database without any schema.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Migrated opens a database with every POS table and index.
func Migrated(t *testing.T) *gorm.DB {
	t.Helper()
	conn := OpenDB(t)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

// Accessor wraps conn with the given scan ceiling.
func Accessor(conn *gorm.DB, limit int) *store.Accessor {
	return store.New(conn, store.Options{ScanLimit: limit})
}

// Blobs returns a blob reader over an in-memory redis double, plus the client
// so tests can seed keys.
func Blobs(t *testing.T) (*store.Blobs, *redis.Client) {
	t.Helper()
	client := redis.NewWithCmdable(redis.NewMockCmdable())
	return store.NewBlobs(client, nil, nil), client
}
