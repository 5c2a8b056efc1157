package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/astdiff/domain"
)

func TestNewParallelExecutor(t *testing.T) {
	executor := NewParallelExecutor()

	require.NotNil(t, executor)
	assert.Equal(t, 0, executor.maxConcurrency)
	assert.Equal(t, domain.DefaultTimeout, executor.timeout)
}

func TestParallelExecutor_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("no tasks", func(t *testing.T) {
		assert.NoError(t, NewParallelExecutor().Execute(ctx, nil))
	})

	t.Run("runs enabled tasks only", func(t *testing.T) {
		var ran int32
		inc := func(context.Context) (interface{}, error) {
			atomic.AddInt32(&ran, 1)
			return nil, nil
		}
		tasks := []domain.ExecutableTask{
			NewSimpleTask("a", true, inc),
			NewSimpleTask("b", false, inc),
			NewSimpleTask("c", true, inc),
		}
		require.NoError(t, NewParallelExecutor().Execute(ctx, tasks))
		assert.Equal(t, int32(2), atomic.LoadInt32(&ran))
	})

	t.Run("joins task errors", func(t *testing.T) {
		errA := errors.New("boom a")
		errB := errors.New("boom b")
		tasks := []domain.ExecutableTask{
			NewSimpleTask("a", true, func(context.Context) (interface{}, error) { return nil, errA }),
			NewSimpleTask("b", true, func(context.Context) (interface{}, error) { return nil, errB }),
			NewSimpleTask("c", true, func(context.Context) (interface{}, error) { return "ok", nil }),
		}
		err := NewParallelExecutor().Execute(ctx, tasks)
		require.Error(t, err)
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
		assert.Contains(t, err.Error(), "2 errors")
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		var current, peak int32
		task := func(context.Context) (interface{}, error) {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil, nil
		}
		var tasks []domain.ExecutableTask
		for i := 0; i < 8; i++ {
			tasks = append(tasks, NewSimpleTask("t", true, task))
		}

		executor := NewParallelExecutor()
		executor.SetMaxConcurrency(2)
		require.NoError(t, executor.Execute(ctx, tasks))
		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	})

	t.Run("timeout", func(t *testing.T) {
		executor := NewParallelExecutor()
		executor.SetTimeout(20 * time.Millisecond)
		tasks := []domain.ExecutableTask{
			NewSimpleTask("slow", true, func(ctx context.Context) (interface{}, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}),
		}
		err := executor.Execute(ctx, tasks)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("nil execute function", func(t *testing.T) {
		err := NewParallelExecutor().Execute(ctx, []domain.ExecutableTask{NewSimpleTask("empty", true, nil)})
		assert.ErrorContains(t, err, "has no execute function")
	})
}
