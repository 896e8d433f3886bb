package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStarted(t *testing.T) *Serializer {
	t.Helper()
	s := NewSerializer(zerolog.Nop())
	s.Start(context.Background())
	t.Cleanup(s.Stop)
	return s
}

func TestSerializer_ReturnsCommandError(t *testing.T) {
	s := newStarted(t)
	boom := errors.New("boom")

	assert.NoError(t, s.Do(context.Background(), func(context.Context) error { return nil }))
	assert.ErrorIs(t, s.Do(context.Background(), func(context.Context) error { return boom }), boom)
}

func TestSerializer_RunsOneAtATime(t *testing.T) {
	s := newStarted(t)

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		total   int
		wg      sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(context.Background(), func(context.Context) error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				total++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 50, total)
}

func TestSerializer_PreservesSubmissionOrder(t *testing.T) {
	s := newStarted(t)

	var order []int
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Do(context.Background(), func(context.Context) error {
			order = append(order, i)
			return nil
		}))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestSerializer_CancelledBeforeSubmit(t *testing.T) {
	s := newStarted(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := s.Do(ctx, func(context.Context) error { ran = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestSerializer_StartedCommandIgnoresCancellation(t *testing.T) {
	s := newStarted(t)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	result := make(chan error, 1)
	go func() {
		result <- s.Do(ctx, func(ctx context.Context) error {
			close(started)
			<-release
			return ctx.Err()
		})
	}()

	<-started
	cancel()
	close(release)
	assert.NoError(t, <-result)
}

func TestSerializer_QueuedCommandDroppedWhenCancelled(t *testing.T) {
	s := newStarted(t)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	result := make(chan error, 1)
	go func() {
		result <- s.Do(ctx, func(context.Context) error { ran = true; return nil })
	}()

	// Give the second command time to be queued behind the first.
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)

	assert.ErrorIs(t, <-result, context.Canceled)
	assert.False(t, ran)
}

func TestSerializer_StoppedRefusesCommands(t *testing.T) {
	s := NewSerializer(zerolog.Nop())
	s.Start(context.Background())
	s.Stop()

	err := s.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestSerializer_SurvivesPanic(t *testing.T) {
	s := newStarted(t)

	err := s.Do(context.Background(), func(context.Context) error { panic("bad") })
	assert.Error(t, err)
	assert.NoError(t, s.Do(context.Background(), func(context.Context) error { return nil }))
}
