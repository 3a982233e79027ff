package carttest

import (
	"sort"
	"sync"
	"time"
)

// Clock is a manual scheduler with the signature of ui.AfterFunc. Nothing runs
// until Advance is called.
type Clock struct {
	mu      sync.Mutex
	elapsed time.Duration
	queue   []timer
}

type timer struct {
	at time.Duration
	f  func()
}

func (c *Clock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, timer{at: c.elapsed + d, f: f})
}

// Pending is the number of callbacks not yet run.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Advance moves time forward by d and runs every callback that became due,
// in due order, outside the lock.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.elapsed += d
	sort.SliceStable(c.queue, func(i, j int) bool { return c.queue[i].at < c.queue[j].at })
	var due []timer
	rest := c.queue[:0]
	for _, t := range c.queue {
		if t.at <= c.elapsed {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	c.queue = rest
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}
