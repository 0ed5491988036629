package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slippi.db")

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"leaderboard_snapshots", "snapshot_entries"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slippi.db")

	first, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestOpenPathWithURICharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd?name#1%2.db")

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDSNEscapesPath(t *testing.T) {
	assert.Equal(t,
		"file:/data/a%3fb%23c%25d.db?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on",
		dsn("/data/a?b#c%d.db"))
}
