package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutGet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "users/1/avatar/a.png", "image/png", []byte("png")))

	got, err := store.Get(ctx, "users/1/avatar/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got)

	assert.Error(t, store.Put(ctx, "users/1/avatar/a.png", "image/png", []byte("again")))
}

func TestLocalStoreRejectsEscapes(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../x.png", "/etc/passwd", ""} {
		assert.Error(t, store.Put(context.Background(), p, "image/png", []byte("x")), p)
	}
}
