// Package calculation runs move searches that can be stopped early and
// still deliver a best-effort result.
package calculation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"multigame/meta"

	"github.com/rs/zerolog/log"
)

// Calculation is the handle of a running or finished computation.
type Calculation[T any] interface {
	// Done reports whether the result is available.
	Done() bool
	// Get blocks until the result is available.
	Get() T
	// Stop requests early termination. The chunk currently running is
	// finished first.
	Stop()
}

// Chunked is a computation that can be split into chunks of work.
type Chunked[T any] interface {
	// Chunk does one unit of work within roughly the remaining budget and
	// reports whether the computation has converged.
	Chunk(remaining time.Duration) bool
	// Result returns the result of the chunks done so far.
	Result() T
}

type Option func(*options)

type options struct {
	ctx     context.Context
	reserve time.Duration
}

// WithContext stops the calculation when ctx is done.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

func WithReserve(reserve time.Duration) Option {
	return func(o *options) {
		if reserve >= 0 {
			o.reserve = reserve
		}
	}
}

// Timed runs a Chunked computation on its own goroutine, one chunk after the
// other, until it converges, is stopped or the budget minus the reserve is
// used up. At least one chunk is always run.
type Timed[T any] struct {
	work    Chunked[T]
	budget  time.Duration
	reserve time.Duration
	ctx     context.Context

	stop   atomic.Bool
	chunks atomic.Int64
	done   chan struct{}

	result    T
	recovered any
}

// Start begins running work in the background.
func Start[T any](budget time.Duration, work Chunked[T], opts ...Option) *Timed[T] {
	o := &options{
		ctx:     context.Background(),
		reserve: meta.RESERVE_TIME,
	}
	for _, opt := range opts {
		opt(o)
	}

	t := &Timed[T]{
		work:    work,
		budget:  budget,
		reserve: o.reserve,
		ctx:     o.ctx,
		done:    make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Timed[T]) run() {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("calculation failed after %d chunks: %v", t.chunks.Load(), r)
			t.recovered = r
		}
	}()

	remaining := t.budget
	for {
		start := time.Now()
		converged := t.work.Chunk(remaining)
		t.chunks.Add(1)
		remaining -= time.Since(start)

		if converged || t.stopped() || remaining < t.reserve {
			break
		}
	}
	t.result = t.work.Result()
}

func (t *Timed[T]) stopped() bool {
	select {
	case <-t.ctx.Done():
		t.stop.Store(true)
	default:
	}
	return t.stop.Load()
}

func (t *Timed[T]) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Get waits for the result. A panic of the computation is raised again in
// every caller of Get.
func (t *Timed[T]) Get() T {
	<-t.done
	if t.recovered != nil {
		panic(fmt.Errorf("calculation failed: %v", t.recovered))
	}
	return t.result
}

func (t *Timed[T]) Stop() {
	t.stop.Store(true)
}

// Wait is like Get but gives up when ctx is done.
func (t *Timed[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.Get(), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Chunks returns the number of chunks run so far.
func (t *Timed[T]) Chunks() int {
	return int(t.chunks.Load())
}

// Trivial is a calculation that is done from the start. The supplier is
// called once, by the first Get.
type Trivial[T any] struct {
	once     sync.Once
	supplier func() T
	result   T
}

func NewTrivial[T any](supplier func() T) *Trivial[T] {
	return &Trivial[T]{supplier: supplier}
}

// Value returns a Trivial calculation of a known result.
func Value[T any](v T) *Trivial[T] {
	return NewTrivial(func() T { return v })
}

func (t *Trivial[T]) Done() bool {
	return true
}

func (t *Trivial[T]) Get() T {
	t.once.Do(func() {
		t.result = t.supplier()
	})
	return t.result
}

func (t *Trivial[T]) Stop() {}
