package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/churchconnect/realtime/internal/infrastructure/logging"
	"github.com/stretchr/testify/require"
)

func TestDispatch_Returns_Op_Result(t *testing.T) {
	req := require.New(t)
	p := NewPool(2, 4, logging.NewNopLogger())
	defer p.Close()

	got, err := Dispatch(context.Background(), p, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	req.NoError(err)
	req.Equal(42, got)
}

func TestDispatch_Propagates_Op_Error(t *testing.T) {
	req := require.New(t)
	p := NewPool(1, 1, logging.NewNopLogger())
	defer p.Close()

	boom := errors.New("boom")
	_, err := Dispatch(context.Background(), p, func(ctx context.Context) (string, error) {
		return "", boom
	})

	req.ErrorIs(err, boom)
}

func TestDispatch_Caller_Cancellation_Does_Not_Cancel_Op(t *testing.T) {
	req := require.New(t)
	p := NewPool(1, 1, logging.NewNopLogger())
	defer p.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	var completed atomic.Bool

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		_, err := Dispatch(ctx, p, func(opCtx context.Context) (struct{}, error) {
			close(started)
			<-release

			// The op's context stays live after the caller gives up.
			if opCtx.Err() == nil {
				completed.Store(true)
			}
			return struct{}{}, nil
		})
		req.ErrorIs(err, context.Canceled)
	}()

	<-started
	cancel()
	wg.Wait()

	close(release)
	p.Close()
	req.True(completed.Load())
}

func TestDispatch_Queue_Full(t *testing.T) {
	req := require.New(t)
	p := NewPool(1, 1, logging.NewNopLogger())
	defer p.Close()

	block := make(chan struct{})
	defer close(block)

	// Occupy the single worker.
	go func() {
		_, _ = Dispatch(context.Background(), p, func(ctx context.Context) (struct{}, error) {
			<-block
			return struct{}{}, nil
		})
	}()

	// Fill the single queue slot, then the next submit must be refused.
	req.Eventually(func() bool {
		err := p.submit(func() {})
		if err == nil {
			_, err = Dispatch(context.Background(), p, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, nil
			})
		}
		return errors.Is(err, ErrQueueFull)
	}, time.Second, 5*time.Millisecond)
}

func TestPool_Recovers_From_Panicking_Job(t *testing.T) {
	req := require.New(t)
	p := NewPool(1, 2, logging.NewNopLogger())
	defer p.Close()

	req.NoError(p.submit(func() { panic("job gone wrong") }))

	// The worker survives and keeps serving.
	got, err := Dispatch(context.Background(), p, func(ctx context.Context) (string, error) {
		return "alive", nil
	})
	req.NoError(err)
	req.Equal("alive", got)
}

func TestPool_Close_Waits_For_Queued_Jobs(t *testing.T) {
	req := require.New(t)
	p := NewPool(1, 4, logging.NewNopLogger())

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		req.NoError(p.submit(func() { ran.Add(1) }))
	}

	p.Close()
	req.EqualValues(3, ran.Load())
}

func TestDispatch_After_Close_Reports_Closed(t *testing.T) {
	req := require.New(t)
	p := NewPool(1, 4, logging.NewNopLogger())
	p.Close()

	// Connections can still be draining during shutdown; a late store
	// call must fail cleanly, not panic on the closed queue.
	_, err := Dispatch(context.Background(), p, func(ctx context.Context) (string, error) {
		return "late", nil
	})
	req.ErrorIs(err, ErrPoolClosed)
}
