package storage

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.SaveStream("abc123.pdf", strings.NewReader("%PDF-1.4")))
	require.True(t, store.Exists("abc123.pdf"))

	file, err := store.Open("abc123.pdf")
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(data))
}

func TestLocalStorageRejectsPathKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", ".", "..", "../escape.pdf", "a/b.pdf", `a\b.pdf`} {
		require.Error(t, store.SaveStream(key, strings.NewReader("x")), "key %q", key)
		require.False(t, store.Exists(key), "key %q", key)
		_, err := store.Open(key)
		require.Error(t, err, "key %q", key)
	}
}

func TestLocalStorageDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.SaveStream("gone.txt", strings.NewReader("bye")))
	require.NoError(t, store.Delete("gone.txt"))
	require.False(t, store.Exists("gone.txt"))

	err = store.Delete("gone.txt")
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
