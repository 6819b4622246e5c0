package store

import "sync"

// Dispatcher runs queries in the background and drops superseded results: a
// result is delivered only when no newer dispatch has started since. There
// is no cancellation of in-flight work; stale results are discarded at the
// delivery boundary instead.
type Dispatcher[T any] struct {
	mu  sync.Mutex
	gen uint64
	wg  sync.WaitGroup
}

// NewDispatcher creates a dispatcher for one result stream.
func NewDispatcher[T any]() *Dispatcher[T] {
	return &Dispatcher[T]{}
}

// Dispatch starts run in the background and hands its result to deliver,
// unless a later Dispatch supersedes it first. deliver calls are serialized.
func (d *Dispatcher[T]) Dispatch(run func() T, deliver func(T)) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		result := run()

		d.mu.Lock()
		defer d.mu.Unlock()
		if gen != d.gen {
			return
		}
		deliver(result)
	}()
}

// Wait blocks until every dispatched query has finished, delivered or not.
func (d *Dispatcher[T]) Wait() {
	d.wg.Wait()
}
