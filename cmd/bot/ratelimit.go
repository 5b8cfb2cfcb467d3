package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// openLimiter limits how often each member of a guild may open tickets.
type openLimiter struct {
	mut     sync.Mutex
	limit   rate.Limit
	burst   int
	now     func() time.Time
	members map[string]*limiterEntry
}

// newOpenLimiter allows burst tickets back to back and one more every interval after that.
// A zero interval disables the limit.
func newOpenLimiter(interval time.Duration, burst int) *openLimiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if burst < 1 {
		burst = 1
	}
	return &openLimiter{
		limit:   limit,
		burst:   burst,
		now:     time.Now,
		members: make(map[string]*limiterEntry),
	}
}

// Allow reports whether the member may open a ticket now, spending a token if so.
func (o *openLimiter) Allow(guildID, userID string) bool {
	o.mut.Lock()
	defer o.mut.Unlock()

	now := o.now()
	key := guildID + "/" + userID
	entry, ok := o.members[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(o.limit, o.burst)}
		o.members[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Prune forgets members that have not asked for a ticket within idle and returns how many were dropped.
func (o *openLimiter) Prune(idle time.Duration) int {
	o.mut.Lock()
	defer o.mut.Unlock()

	cutoff := o.now().Add(-idle)
	pruned := 0
	for key, entry := range o.members {
		if entry.lastSeen.Before(cutoff) {
			delete(o.members, key)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of members being tracked.
func (o *openLimiter) Len() int {
	o.mut.Lock()
	defer o.mut.Unlock()
	return len(o.members)
}
