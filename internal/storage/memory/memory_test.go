package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bookstore/internal/storage"
)

func TestStore_LoadMissing(t *testing.T) {
	s := New()

	_, err := s.Load(context.Background(), "bookstore-cart:x")
	require.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := New()

	data := []byte(`{"items":[],"total":"0"}`)
	require.NoError(t, s.Save(ctx, "k", data))
	data[0] = 'X'

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[],"total":"0"}`, string(got))
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	require.ErrorIs(t, s.Save(ctx, "k", nil), context.Canceled)
	_, err := s.Load(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}
