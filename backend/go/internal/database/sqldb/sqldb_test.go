package sqldb

import (
	"context"
	"testing"

	"ecofix/backend/go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "custom", DSN(config.SQLConfig{Driver: "mysql", DSN: "custom"}))
	assert.Equal(t,
		"eco:secret@tcp(db:3306)/ecofix?charset=utf8mb4&parseTime=True&loc=UTC",
		DSN(config.SQLConfig{Driver: "mysql", Username: "eco", Password: "secret", Address: "db:3306", Database: "ecofix"}))
	assert.Equal(t, "ecofix.db", DSN(config.SQLConfig{Driver: "sqlite", Database: "ecofix.db"}))
}

func TestOpenMigrateSQLite(t *testing.T) {
	db, err := Open(config.SQLConfig{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent", MaxOpenConns: 1})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	require.NoError(t, HealthCheck(context.Background(), db))

	for _, table := range []string{"users", "user_activities", "environmental_observations", "sustainability_scores"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.SQLConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, logLevel("SILENT"))
	assert.Equal(t, gormlogger.Info, logLevel("info"))
	assert.Equal(t, gormlogger.Warn, logLevel(""))
}
