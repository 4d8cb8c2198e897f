package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s, err := NewMemoryStore(time.Minute)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "snapshot", []byte(`{"jobs":[]}`)))

	got, err := s.Load(ctx, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"jobs":[]}`), got)

	require.NoError(t, s.Delete(ctx, "snapshot"))
	_, err = s.Load(ctx, "snapshot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteMissingIsNoop(t *testing.T) {
	s, err := NewMemoryStore(time.Minute)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Delete(context.Background(), "nothing"))
}
