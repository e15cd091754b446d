package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, sessionID string) error
}

func exerciseStore(t *testing.T, s store) {
	t.Helper()
	ctx := context.Background()

	value, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, value, "fresh store should be empty")

	require.NoError(t, s.Save(ctx, "token-1"))
	value, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", value)

	require.NoError(t, s.Save(ctx, "token-2"))
	value, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", value)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("")
	exerciseStore(t, s)
	assert.Equal(t, 2, s.Saves())

	seeded := NewMemoryStore("seed")
	value, err := seeded.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "seed", value)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session_id")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "token-2\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_id")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(context.Background(), "persisted"))
	require.NoError(t, first.Close())

	second, err := NewFileStore(path)
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "persisted", value)
}

func TestFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	require.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", value)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, "redis://"+mr.Addr()+"/0", "transmission:")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	stored, err := mr.Get("transmission:" + Key)
	require.NoError(t, err)
	assert.Equal(t, "token-2", stored)
}

func TestRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url", "")
	require.Error(t, err)
}
