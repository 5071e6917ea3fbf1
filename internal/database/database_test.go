package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNew_AppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "timeclock.db")
	db, err := New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	version, err := db.Version()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	for _, table := range []string{"clock_events", "settings", "pending_submissions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestNew_ReopenIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeclock.db")
	db, err := New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO settings (key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	var value string
	require.NoError(t, db.QueryRow(`SELECT value FROM settings WHERE key='k'`).Scan(&value))
	assert.Equal(t, "v", value)

	require.NoError(t, db.migrate())
}
