package pipeline

import "sync/atomic"

// CrawlLock provides non-blocking lock semantics using atomic operations.
// It keeps two crawls of the same store from interleaving their writes.
type CrawlLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *CrawlLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *CrawlLock) Release() {
	l.state.Store(0)
}
