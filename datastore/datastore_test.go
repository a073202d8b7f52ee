package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string   `json:"name"`
	Notes []string `json:"notes"`
}

func openTemp(t *testing.T) (*DataStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	ds, err := NewWithConfig(&Config{FilePath: path, BackupCount: 2})
	require.NoError(t, err)
	return ds, path
}

func TestPutDecodeAndReopen(t *testing.T) {
	ds, path := openTemp(t)

	require.NoError(t, ds.Put("self", doc{Name: "wiggly", Notes: []string{"a", "b"}}))
	require.NoError(t, ds.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	var got doc
	found, err := reopened.Decode("self", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, doc{Name: "wiggly", Notes: []string{"a", "b"}}, got)

	found, err = reopened.Decode("missing", &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestFlushKeepsBoundedBackups(t *testing.T) {
	ds, path := openTemp(t)
	defer ds.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Put("n", i))
		require.NoError(t, ds.Flush())
	}

	backups, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(backups), 2)
	assert.Equal(t, []string{"n"}, ds.Keys())
}

func TestCorruptFileFailsToOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(path)
	assert.Error(t, err)
}

func TestWritesAfterClose(t *testing.T) {
	ds, _ := openTemp(t)
	require.NoError(t, ds.Close())

	assert.ErrorIs(t, ds.Put("k", 1), ErrClosed)
	assert.ErrorIs(t, ds.Flush(), ErrClosed)
	assert.NoError(t, ds.Close())
}
