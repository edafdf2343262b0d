package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &DB{Driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM events WHERE id = $1 AND venue_id = $2",
		pg.Rebind("SELECT * FROM events WHERE id = ? AND venue_id = ?"))

	lite := &DB{Driver: DriverSQLite}
	assert.Equal(t, "SELECT ? ", lite.Rebind("SELECT ? "))
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "nested", "test.db")}

	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	// idempotent
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM venues`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "mysql"})
	require.Error(t, err)
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	_, err := Open(Config{Driver: DriverPostgres})
	require.Error(t, err)
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("EVENTHUB_DB_DRIVER", "")
	t.Setenv("EVENTHUB_DB_PATH", "/tmp/x.db")
	cfg := DefaultConfig()
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Path)

	t.Setenv("EVENTHUB_DB_DRIVER", "postgres")
	t.Setenv("EVENTHUB_DB_DSN", "postgres://u:p@localhost/db")
	cfg = DefaultConfig()
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "postgres", cfg.String())
}
