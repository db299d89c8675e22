// Package stats keeps process-wide counters of admitted calls, in total and
// grouped by endpoint key.
package stats

import "sync"

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalEvents      int64            `json:"totalEvents"`
	EventsByEndpoint map[string]int64 `json:"eventsByEndpoint"`
}

// Counters counts admitted calls. One Record call per admitted call keeps
// TotalEvents equal to the sum over EventsByEndpoint. Safe for concurrent use.
type Counters struct {
	mu         sync.Mutex
	total      int64
	byEndpoint map[string]int64
}

// New creates zeroed Counters.
func New() *Counters {
	return &Counters{byEndpoint: make(map[string]int64)}
}

// Record counts one admitted call against the given endpoint key.
func (c *Counters) Record(endpoint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.byEndpoint[endpoint]++
}

// Total returns the number of admitted calls recorded so far.
func (c *Counters) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Snapshot returns a copy of the current counters. The returned map is owned
// by the caller.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	by := make(map[string]int64, len(c.byEndpoint))
	for k, v := range c.byEndpoint {
		by[k] = v
	}
	return Snapshot{TotalEvents: c.total, EventsByEndpoint: by}
}

// Reset zeroes all counters.
func (c *Counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = 0
	c.byEndpoint = make(map[string]int64)
}
