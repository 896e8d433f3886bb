package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/api/metrics"
	"github.com/campusshelf/library-system/internal/core/ports"
)

const channelBuffer = 256

// ErrStopped is returned for commands submitted to, or still queued in, a
// stopped Serializer.
var ErrStopped = errors.New("command queue stopped")

type command struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// Serializer runs mutations one at a time on a single worker goroutine, in
// submission order. It is the only writer of the store.
type Serializer struct {
	commands chan command
	stopped  chan struct{}
	finished chan struct{}
	stopOnce sync.Once
	log      zerolog.Logger
}

// NewSerializer creates a Serializer. Call Start before submitting commands.
func NewSerializer(log zerolog.Logger) *Serializer {
	return &Serializer{
		commands: make(chan command, channelBuffer),
		stopped:  make(chan struct{}),
		finished: make(chan struct{}),
		log:      log,
	}
}

// Start launches the worker goroutine. The worker stops when ctx is
// cancelled or Stop is called.
func (s *Serializer) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop refuses new commands, fails the queued ones with ErrStopped and waits
// for the command in progress to finish.
func (s *Serializer) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
	<-s.finished
}

// Do submits fn and blocks until it has run, returning its error. A command
// whose ctx is cancelled before it starts is dropped with ctx.Err(); once
// started, fn runs to completion with cancellation detached from its context.
func (s *Serializer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := command{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case s.commands <- cmd:
		metrics.CommandQueueDepth.Inc()
	}

	select {
	case err := <-cmd.done:
		return err
	case <-s.finished:
		// A send can win the race against Stop after the final drain.
		select {
		case err := <-cmd.done:
			return err
		default:
			return ErrStopped
		}
	}
}

func (s *Serializer) run(ctx context.Context) {
	defer close(s.finished)
	defer s.drain()

	for {
		select {
		case <-ctx.Done():
			s.stopOnce.Do(func() { close(s.stopped) })
			return
		case <-s.stopped:
			return
		case cmd := <-s.commands:
			metrics.CommandQueueDepth.Dec()
			s.execute(cmd)
		}
	}
}

func (s *Serializer) execute(cmd command) {
	if err := cmd.ctx.Err(); err != nil {
		metrics.CommandDuration.WithLabelValues("dropped").Observe(0)
		cmd.done <- err
		return
	}

	start := time.Now()
	err := s.safeRun(cmd)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CommandDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	cmd.done <- err
}

// safeRun keeps the worker alive when a command panics.
func (s *Serializer) safeRun(cmd command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("command panicked")
			err = errors.New("command panicked")
		}
	}()
	return cmd.fn(context.WithoutCancel(cmd.ctx))
}

func (s *Serializer) drain() {
	for {
		select {
		case cmd := <-s.commands:
			metrics.CommandQueueDepth.Dec()
			cmd.done <- ErrStopped
		default:
			return
		}
	}
}

var _ ports.Executor = (*Serializer)(nil)
