// Package ratelimit enforces a minimum spacing between successful fetches
// against the same host, with a bounded wait and randomized jitter so
// concurrently woken workers don't all retry in lockstep.
package ratelimit

import (
	"math/rand"
	"sync"
	"time"

	"github.com/kowhai-tools/nzcrawl/pkg/timeutil"
)

// HostLimiter tracks, per host, the timestamp of its last granted fetch.
// Acquire blocks the caller until minInterval has elapsed since that
// timestamp, up to maxWait; past maxWait it reports failure rather than
// block indefinitely.
type HostLimiter struct {
	mu          sync.Mutex
	rngMu       sync.Mutex
	lastFetchAt map[string]time.Time
	rng         *rand.Rand
	sleeper     timeutil.Sleeper
}

// NewHostLimiter returns a HostLimiter whose jitter is seeded from
// randomSeed and whose waits are performed through sleeper.
func NewHostLimiter(randomSeed int64, sleeper timeutil.Sleeper) *HostLimiter {
	return &HostLimiter{
		lastFetchAt: make(map[string]time.Time),
		rng:         rand.New(rand.NewSource(randomSeed)),
		sleeper:     sleeper,
	}
}

// Acquire blocks the calling goroutine until host may be fetched again
// under minInterval, then records the grant as the new lastFetchAt. It
// returns false, without waiting, if doing so would require waiting longer
// than maxWait; in that case no grant is recorded.
//
// The wait-decision read and the lastFetchAt write happen under the same
// lock, so two goroutines racing for the same host cannot both observe a
// stale timestamp and both proceed.
func (l *HostLimiter) Acquire(host string, minInterval, maxWait time.Duration) bool {
	l.mu.Lock()

	last, seen := l.lastFetchAt[host]
	now := time.Now()

	var wait time.Duration
	if seen {
		elapsed := now.Sub(last)
		if elapsed < minInterval {
			wait = minInterval - elapsed
		}
	}

	if wait > maxWait {
		l.mu.Unlock()
		return false
	}

	l.lastFetchAt[host] = now.Add(wait)
	l.mu.Unlock()

	if wait > 0 {
		wait += l.jitter(wait)
		l.sleeper.Sleep(wait)
	}
	return true
}

// jitter returns a pseudo-random duration in [0, max/4), keeping concurrent
// waiters for the same host from waking in lockstep without meaningfully
// extending the wait.
func (l *HostLimiter) jitter(max time.Duration) time.Duration {
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return timeutil.JitterWithin(max/4, l.rng)
}
