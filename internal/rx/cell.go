// Package rx is a small observable-cell runtime: writable cells notify
// registered watchers on change, and effects re-run when any cell they
// read during their last run changes, releasing resources from the
// previous run first.
package rx

import "sync"

// Signal is the read side of a cell. Only cells defined in this package
// satisfy it; holders of a Signal can read and observe but never write.
type Signal[T any] interface {
	// Get returns the current value. When called through Read inside an
	// effect it also registers the cell as a dependency of that run.
	Get() T

	watch(fn func()) (off func())
}

// Cell is a writable observable value.
type Cell[T any] struct {
	mu       sync.Mutex
	val      T
	eq       func(a, b T) bool
	nextID   int
	watchers map[int]func()
}

// NewCell returns a cell holding initial. Comparable values are
// deduplicated on Set; writes of an equal value do not notify.
func NewCell[T comparable](initial T) *Cell[T] {
	return &Cell[T]{
		val:      initial,
		eq:       func(a, b T) bool { return a == b },
		watchers: make(map[int]func()),
	}
}

// NewCellFunc returns a cell for non-comparable values. eq may be nil,
// in which case every Set notifies.
func NewCellFunc[T any](initial T, eq func(a, b T) bool) *Cell[T] {
	return &Cell[T]{
		val:      initial,
		eq:       eq,
		watchers: make(map[int]func()),
	}
}

// Get returns the current value without registering a dependency.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}

// Set replaces the value and notifies watchers if it changed.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	if c.eq != nil && c.eq(c.val, v) {
		c.mu.Unlock()
		return
	}
	c.val = v
	fns := make([]func(), 0, len(c.watchers))
	for _, fn := range c.watchers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (c *Cell[T]) watch(fn func()) (off func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

// Watch registers fn to run on every value change. The returned
// function removes the registration.
func Watch[T any](s Signal[T], fn func(T)) (off func()) {
	return s.watch(func() { fn(s.Get()) })
}
