// Package sequence provides a single goroutine task runner. Every mutation of
// shared engine state is submitted to one Sequence so no two of them ever
// interleave.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned for tasks submitted after Close.
var ErrClosed = errors.New("sequence closed")

type ctxKey struct{}

type task struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// Sequence runs submitted tasks one at a time, in submission order, on its
// own goroutine.
type Sequence struct {
	tasks   chan task
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// New starts a sequence. Call Close to stop it.
func New() *Sequence {
	s := &Sequence{
		tasks:   make(chan task),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Sequence) loop() {
	defer close(s.stopped)
	for {
		select {
		case t := <-s.tasks:
			t.result <- s.exec(t)
		case <-s.done:
			return
		}
	}
}

func (s *Sequence) exec(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sequence: task panicked: %v", r)
		}
	}()
	return t.fn(context.WithValue(t.ctx, ctxKey{}, s))
}

// Run executes fn on the sequence and returns its result. A call made from a
// task already running on s executes inline. Once fn has started Run waits
// for it to finish even if ctx is cancelled; fn observes the cancellation
// through its own context.
func (s *Sequence) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.IsCurrent(ctx) {
		return fn(ctx)
	}
	t := task{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case s.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
	return <-t.result
}

// IsCurrent reports whether ctx belongs to a task running on s.
func (s *Sequence) IsCurrent(ctx context.Context) bool {
	cur, _ := ctx.Value(ctxKey{}).(*Sequence)
	return cur == s
}

// Close stops accepting tasks and waits for the running one to finish.
func (s *Sequence) Close() {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
}

// Do is Run for tasks that produce a value.
func Do[T any](ctx context.Context, s *Sequence, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := s.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
