package database

import (
	"testing"

	"quest_reward_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"", "mysql", "postgres", "sqlite"} {
		d, err := Dialector(&config.DatabaseConfig{Driver: driver, Path: ":memory:"})
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}

	_, err := Dialector(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitDBMigratesSQLite(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: "file:initdb?mode=memory&cache=shared"},
	}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	for _, table := range []string{"student_balances", "claim_records", "mastery_records", "mastery_events", "assignment_attempts", "challenges"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestRedisDisabledAndOptions(t *testing.T) {
	rdb, err := InitRedis(&config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	opts := RedisOptions(&config.RedisConfig{Host: "cache", Port: 6380, DB: 2})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, redisPingTimeout, opts.DialTimeout)
}
