package event

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	b := New()
	var got []string
	b.Listen("user.approved", func(_ context.Context, p any) error {
		got = append(got, "first:"+p.(string))
		return nil
	})
	b.Listen("user.approved", func(_ context.Context, p any) error {
		got = append(got, "second:"+p.(string))
		return errors.New("ignored")
	})

	b.Fire(context.Background(), "user.approved", "ada")
	b.Fire(context.Background(), "user.rejected", "nobody")

	assert.Equal(t, []string{"first:ada", "second:ada"}, got)
}

func TestFireAsyncDetachesContext(t *testing.T) {
	b := New()
	var live atomic.Bool
	b.Listen("user.rejected", func(ctx context.Context, _ any) error {
		live.Store(ctx.Err() == nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.FireAsync(ctx, "user.rejected", nil)
	b.Wait()

	assert.True(t, live.Load())
}

func TestFlush(t *testing.T) {
	b := New()
	calls := 0
	b.Listen("x", func(context.Context, any) error { calls++; return nil })
	b.Flush()
	b.Fire(context.Background(), "x", nil)
	assert.Zero(t, calls)
}
