// Package locks serializes operations per worktree path.
//
// The Table is the coordinator's only shared mutable state: one entry per
// worktree path ever touched, each holding a FIFO ticket queue so operations
// against the same path run in request order while operations against
// different paths never block each other. It guards only against concurrent
// calls within this process; external git usage is handled separately by
// repository state checks.
package locks

import "sync"

// Table maps worktree paths to their locks. Entries are created lazily on
// first acquisition and never removed; the map is bounded by the number of
// distinct worktrees touched over the process lifetime. Nothing is
// persisted: a restart implies no in-flight operations.
type Table struct {
	mu    sync.Mutex
	paths map[string]*pathLock
}

// NewTable creates an empty lock table.
func NewTable() *Table {
	return &Table{paths: make(map[string]*pathLock)}
}

// pathLock is a FIFO mutex: waiters take a ticket and run in ticket order.
type pathLock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64 // next ticket to hand out
	serving uint64 // ticket currently allowed to run
}

func newPathLock() *pathLock {
	pl := &pathLock{}
	pl.cond = sync.NewCond(&pl.mu)
	return pl
}

func (pl *pathLock) acquire() {
	pl.mu.Lock()
	ticket := pl.next
	pl.next++
	for pl.serving != ticket {
		pl.cond.Wait()
	}
	pl.mu.Unlock()
}

func (pl *pathLock) release() {
	pl.mu.Lock()
	pl.serving++
	pl.cond.Broadcast()
	pl.mu.Unlock()
}

// lockFor returns the lock for path, creating it on first use.
func (t *Table) lockFor(path string) *pathLock {
	t.mu.Lock()
	defer t.mu.Unlock()
	pl, ok := t.paths[path]
	if !ok {
		pl = newPathLock()
		t.paths[path] = pl
	}
	return pl
}

// WithLock runs fn with exclusive ownership of the path's lock. Callers
// waiting on the same path proceed in FIFO order. The lock is released on
// every exit path, including panics propagating through fn.
//
// Not reentrant: calling WithLock for a path while already holding that
// path's lock deadlocks. Handlers must never nest acquisition for the same
// path.
func (t *Table) WithLock(path string, fn func() error) error {
	pl := t.lockFor(path)
	pl.acquire()
	defer pl.release()
	return fn()
}
