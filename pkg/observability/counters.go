package observability

import (
	"context"
	"time"

	"go.uber.org/atomic"
)

// Counters is a NavigationHooks and ExecutorHooks implementation that keeps
// running totals. It backs the inspector's /stats endpoint.
type Counters struct {
	Pushes   atomic.Uint64
	Pops     atomic.Uint64
	Rewinds  atomic.Uint64
	Rejected atomic.Uint64 // requests refused by the graph mutator
	Trimmed  atomic.Uint64 // nodes removed by pops and rewinds

	JobsStarted  atomic.Uint64
	JobsFailed   atomic.Uint64
	JobsDuration atomic.Duration
}

// CountersSnapshot is a point-in-time copy of [Counters].
type CountersSnapshot struct {
	Pushes       uint64        `json:"pushes"`
	Pops         uint64        `json:"pops"`
	Rewinds      uint64        `json:"rewinds"`
	Rejected     uint64        `json:"rejected"`
	Trimmed      uint64        `json:"trimmed"`
	JobsStarted  uint64        `json:"jobs_started"`
	JobsFailed   uint64        `json:"jobs_failed"`
	JobsDuration time.Duration `json:"jobs_duration_ns"`
}

// Snapshot returns the current totals.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		Pushes:       c.Pushes.Load(),
		Pops:         c.Pops.Load(),
		Rewinds:      c.Rewinds.Load(),
		Rejected:     c.Rejected.Load(),
		Trimmed:      c.Trimmed.Load(),
		JobsStarted:  c.JobsStarted.Load(),
		JobsFailed:   c.JobsFailed.Load(),
		JobsDuration: c.JobsDuration.Load(),
	}
}

func (c *Counters) OnPush(_ context.Context, _, _, _ string, err error) {
	if err != nil {
		c.Rejected.Inc()
		return
	}
	c.Pushes.Inc()
}

func (c *Counters) OnPop(_ context.Context, _ string, trimmed int, err error) {
	if err != nil {
		c.Rejected.Inc()
		return
	}
	c.Pops.Inc()
	c.Trimmed.Add(uint64(trimmed))
}

func (c *Counters) OnRewind(_ context.Context, _ string, trimmed int, err error) {
	if err != nil {
		c.Rejected.Inc()
		return
	}
	c.Rewinds.Inc()
	c.Trimmed.Add(uint64(trimmed))
}

func (c *Counters) OnJobStart(context.Context, uint64, string) {
	c.JobsStarted.Inc()
}

func (c *Counters) OnJobComplete(_ context.Context, _ uint64, _ string, d time.Duration, err error) {
	c.JobsDuration.Add(d)
	if err != nil {
		c.JobsFailed.Inc()
	}
}

var (
	_ NavigationHooks = (*Counters)(nil)
	_ ExecutorHooks   = (*Counters)(nil)
)
