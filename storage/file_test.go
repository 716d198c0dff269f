package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sonson0910/Moderntensor/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, testStorageLogger())
	require.NoError(t, err)

	data := []byte("encrypted snapshot bytes")
	id, err := backend.Store(context.Background(), data, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.True(t, interfaces.ComputeID(data).Equal(id))

	fetched, err := backend.Fetch(context.Background(), id, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.Equal(t, data, fetched)

	// Content types live in separate namespaces
	_, err = backend.Fetch(context.Background(), id, interfaces.MetadataType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestFileBackendFetchMissing(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), testStorageLogger())
	require.NoError(t, err)

	_, err = backend.Fetch(context.Background(), interfaces.ContentID{1}, interfaces.SnapshotType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestFileBackendSnapshotPermissions(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, testStorageLogger())
	require.NoError(t, err)

	data := []byte("secret material")
	id, err := backend.Store(context.Background(), data, interfaces.SnapshotType)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "snapshots", id.String()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileBackendAvailable(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, testStorageLogger())
	require.NoError(t, err)
	assert.True(t, backend.Available(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.False(t, backend.Available(context.Background()))
}

func TestBackendFactorySchemes(t *testing.T) {
	factory := NewBackendFactory(testStorageLogger())

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		backend, err := factory.StorageBackendFor(interfaces.StorageBackendLocation("file://" + dir))
		require.NoError(t, err)
		assert.Contains(t, backend.Name(), "file-")
	})

	t.Run("vault requires token", func(t *testing.T) {
		_, err := factory.StorageBackendFor("vault://vault.example.com:8200/secret/backups")
		assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := factory.StorageBackendFor("ftp://example.com/backups")
		assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
	})

	t.Run("multi backend", func(t *testing.T) {
		dir1 := t.TempDir()
		dir2 := t.TempDir()
		backend, err := factory.CreateMultiBackend([]interfaces.StorageBackendLocation{
			interfaces.StorageBackendLocation("file://" + dir1),
			interfaces.StorageBackendLocation("file://" + dir2),
		})
		require.NoError(t, err)

		data := []byte("replicated snapshot")
		id, err := backend.Store(context.Background(), data, interfaces.SnapshotType)
		require.NoError(t, err)

		// Both file backends must hold the content
		for _, dir := range []string{dir1, dir2} {
			_, statErr := os.Stat(filepath.Join(dir, "snapshots", id.String()))
			assert.NoError(t, statErr)
		}
	})

	t.Run("multi backend with no valid locations", func(t *testing.T) {
		_, err := factory.CreateMultiBackend([]interfaces.StorageBackendLocation{"ftp://nope"})
		assert.Error(t, err)
	})
}
