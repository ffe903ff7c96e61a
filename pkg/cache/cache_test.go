package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Set(ctx, "branding", map[string]string{"siteName": "Hub"}, time.Minute))

	var got map[string]string
	assert.True(t, s.Get(ctx, "branding", &got))
	assert.Equal(t, "Hub", got["siteName"])

	require.NoError(t, s.Del(ctx, "branding"))
	assert.False(t, s.Get(ctx, "branding", &got))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "k", 1, time.Nanosecond))
	time.Sleep(time.Millisecond)

	var n int
	assert.False(t, s.Get(ctx, "k", &n))
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"blazers"}, nil
	}

	v, err := Remember(ctx, s, "tree", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"blazers"}, v)

	_, err = Remember(ctx, s, "tree", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = Remember(ctx, s, "other", time.Minute, func() (int, error) { return 0, errors.New("db down") })
	assert.Error(t, err)
}
