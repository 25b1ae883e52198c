package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	_, err := s.Get(KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(KeyToken, "abc"))
	v, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Set(KeyToken, "def"))
	v, err = s.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "def", v)

	require.NoError(t, s.Delete(KeyToken))
	_, err = s.Get(KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(KeyToken), "deleting a missing key")
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "veterimap")
	s := NewFileStorage(dir)
	exerciseStorage(t, s)

	require.NoError(t, s.Set(KeyPendingEmail, "a@b.c"))
	info, err := os.Stat(filepath.Join(dir, KeyPendingEmail))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestFileStorage_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyToken), []byte("tok\n"), 0600))
	v, err := NewFileStorage(dir).Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)
}

func TestRedisStorage(t *testing.T) {
	url := os.Getenv("VETERIMAP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("VETERIMAP_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := NewRedisStorage(ctx, url, "veterimap-test:"+uuid.NewString()+":", time.Minute)
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck
	exerciseStorage(t, s)
}

func TestNewRedisStorage_BadURL(t *testing.T) {
	_, err := NewRedisStorage(context.Background(), "not a url", "", 0)
	assert.Error(t, err)
}
