package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemember_CachesUntilExpiry(t *testing.T) {
	driver := NewMemoryDriver()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	driver.now = func() time.Time { return clock }
	c := New(driver, "test")
	ctx := context.Background()

	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	got, err := Remember(ctx, c, "letters", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	_, _ = Remember(ctx, c, "letters", time.Minute, load)
	assert.Equal(t, 1, calls)

	clock = clock.Add(2 * time.Minute)
	_, _ = Remember(ctx, c, "letters", time.Minute, load)
	assert.Equal(t, 2, calls)
}

func TestRemember_ErrorsAreNotCached(t *testing.T) {
	c := New(NewMemoryDriver(), "")
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := Remember(ctx, c, "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	n, err := Remember(ctx, c, "k", time.Minute, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestBump_ChangesVersion(t *testing.T) {
	c := New(NewMemoryDriver(), "test")
	ctx := context.Background()

	assert.EqualValues(t, 0, c.Version(ctx, "products"))
	require.NoError(t, c.Bump(ctx, "products"))
	require.NoError(t, c.Bump(ctx, "products"))
	assert.EqualValues(t, 2, c.Version(ctx, "products"))
}

func TestNilCache_IsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.False(t, c.Get(ctx, "k", new(string)))
	assert.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	assert.NoError(t, c.Bump(ctx, "ns"))
	assert.NoError(t, c.Forget(ctx, "k"))

	calls := 0
	for i := 0; i < 2; i++ {
		_, _ = Remember(ctx, c, "k", time.Minute, func() (int, error) { calls++; return 1, nil })
	}
	assert.Equal(t, 2, calls)
}

func TestForget(t *testing.T) {
	c := New(NewMemoryDriver(), "p")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, 0))
	require.NoError(t, c.Forget(ctx, "k"))
	var n int
	assert.False(t, c.Get(ctx, "k", &n))
}
