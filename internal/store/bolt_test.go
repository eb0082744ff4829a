package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBolt(t *testing.T) (*BoltStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")

	db, err := NewBoltStore(path)
	require.NoError(t, err)

	return db, path
}

func TestBoltStore_GetSetDelete(t *testing.T) {
	db, _ := setupBolt(t)
	defer func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	}()

	_, err := db.Get(KeyAPIKey)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, db.Set(KeyAPIKey, "abc123"))

	got, err := db.Get(KeyAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	require.NoError(t, db.Delete(KeyAPIKey))

	_, err = db.Get(KeyAPIKey)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	db, path := setupBolt(t)

	require.NoError(t, db.Set(KeyLastCity, "Lisbon"))
	require.NoError(t, db.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(KeyLastCity)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got)
}
