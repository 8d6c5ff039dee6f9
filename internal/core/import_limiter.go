package core

// import_limiter.go bounds how many imports run at once.
//
// Each import makes a handful of sequential Sheets calls, and Google applies
// per-user quotas. The limiter caps parallel imports across the process with
// a semaphore and allows at most one running import per user, so a
// double-submitted form cannot race itself into duplicate rows.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyImports is returned when all import slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// ErrImportInProgress is returned when the same user already has an import running.
var ErrImportInProgress = errors.New("too many concurrent imports: an import is already running for this account")

// DefaultMaxConcurrentImports is the default limit for parallel imports.
const DefaultMaxConcurrentImports = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ImportLimiter controls concurrent import processing.
type ImportLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.Mutex
	owners map[string]struct{}
	active int
}

// NewImportLimiter creates a limiter that allows at most maxConcurrent simultaneous imports.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &ImportLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
		owners:    make(map[string]struct{}),
	}
}

// Acquire reserves a slot for owner (usually the user's email; "" skips the
// per-user check). The returned release func must be called exactly once.
func (l *ImportLimiter) Acquire(ctx context.Context, owner string) (release func(), err error) {
	if owner != "" {
		l.mu.Lock()
		if _, busy := l.owners[owner]; busy {
			l.mu.Unlock()
			return nil, ErrImportInProgress
		}
		l.owners[owner] = struct{}{}
		l.mu.Unlock()
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
	case <-waitCtx.Done():
		l.forget(owner)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTooManyImports
	}

	l.mu.Lock()
	l.active++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.active--
			l.mu.Unlock()
			l.forget(owner)
			<-l.semaphore
		})
	}, nil
}

func (l *ImportLimiter) forget(owner string) {
	if owner == "" {
		return
	}
	l.mu.Lock()
	delete(l.owners, owner)
	l.mu.Unlock()
}

// ActiveCount returns the number of currently running imports.
func (l *ImportLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Available returns the number of free slots.
func (l *ImportLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until all running imports complete or ctx is done.
// Used during graceful shutdown.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ImportLimiterStatus is a snapshot of the limiter's state.
type ImportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for the health endpoint.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	return ImportLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
