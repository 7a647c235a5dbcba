package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFire_RunsInOrderAndJoinsErrors(t *testing.T) {
	d := NewDispatcher(1)
	defer d.Close()

	var seen []string
	boom := errors.New("boom")
	d.Listen("order.materialized", "first", func(_ context.Context, p any) error {
		seen = append(seen, "first:"+p.(string))
		return boom
	})
	d.Listen("order.materialized", "second", func(_ context.Context, p any) error {
		seen = append(seen, "second:"+p.(string))
		return nil
	})
	d.Listen("other", "x", func(context.Context, any) error {
		t.Fatal("wrong event")
		return nil
	})

	err := d.Fire(context.Background(), "order.materialized", "o1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:o1", "second:o1"}, seen)
}

func TestFireAsync_SurvivesCancelledContext(t *testing.T) {
	d := NewDispatcher(2)

	var calls atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		d.Listen("e", "l", func(ctx context.Context, _ any) error {
			defer wg.Done()
			if ctx.Err() == nil {
				calls.Add(1)
			}
			return errors.New("ignored")
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.FireAsync(ctx, "e", nil)

	wg.Wait()
	d.Close()
	assert.EqualValues(t, 3, calls.Load())
}

func TestFireAsync_AfterCloseSkips(t *testing.T) {
	d := NewDispatcher(1)
	d.Close()

	var calls atomic.Int32
	d.Listen("e", "l", func(context.Context, any) error { calls.Add(1); return nil })
	d.FireAsync(context.Background(), "e", nil)

	require.EqualValues(t, 0, calls.Load())
}
