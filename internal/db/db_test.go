package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/portfolio/internal/config"
)

func TestOpenSqliteAppliesMigrations(t *testing.T) {
	conn, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, ApplyMigrations(conn.DB, "sqlite"))
	// idempotent
	require.NoError(t, ApplyMigrations(conn.DB, "sqlite"))

	for _, table := range []string{"users", "verification_codes"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err)
		require.Equal(t, table, name)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
}
