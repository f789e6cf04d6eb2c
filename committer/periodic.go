package committer

import (
	"time"
)

var _ Committer = (*PeriodicCommitter)(nil)

type PeriodicCommitterConfig struct {
	MaxInterval time.Duration
	MaxCount    int

	now func() time.Time
}

type PeriodicCommitterOption func(*PeriodicCommitterConfig)

// WithMaxInterval checkpoints pending progress once d has passed since the last
// checkpoint. Zero disables the interval trigger.
func WithMaxInterval(d time.Duration) PeriodicCommitterOption {
	return func(cfg *PeriodicCommitterConfig) {
		cfg.MaxInterval = d
	}
}

// WithMaxCount checkpoints once c items are pending. Zero disables the count trigger.
func WithMaxCount(c int) PeriodicCommitterOption {
	return func(cfg *PeriodicCommitterConfig) {
		cfg.MaxCount = c
	}
}

func WithClock(now func() time.Time) PeriodicCommitterOption {
	return func(cfg *PeriodicCommitterConfig) {
		cfg.now = now
	}
}

// PeriodicCommitter is due when enough items are pending or enough time has
// passed with at least one item pending. It is not safe for concurrent use.
type PeriodicCommitter struct {
	c          PeriodicCommitterConfig
	count      int
	lastCommit time.Time
}

func NewPeriodicCommitter(opts ...PeriodicCommitterOption) *PeriodicCommitter {
	cfg := PeriodicCommitterConfig{
		MaxInterval: 5 * time.Second,
		MaxCount:    100,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &PeriodicCommitter{
		c:          cfg,
		count:      0,
		lastCommit: cfg.now(),
	}
}

func (p *PeriodicCommitter) RecordProcessed(count int) {
	p.count += count
}

func (p *PeriodicCommitter) Due() bool {
	if p.count <= 0 {
		return false
	}
	if p.c.MaxCount > 0 && p.count >= p.c.MaxCount {
		return true
	}
	return p.c.MaxInterval > 0 && p.c.now().Sub(p.lastCommit) >= p.c.MaxInterval
}

func (p *PeriodicCommitter) Committed() {
	p.count = 0
	p.lastCommit = p.c.now()
}

// Pending returns the items recorded since the last checkpoint.
func (p *PeriodicCommitter) Pending() int {
	return p.count
}
