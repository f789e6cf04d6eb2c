//go:build unit

package committer_test

import (
	"testing"
	"time"

	"github.com/hugolhafner/kreader/committer"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestPeriodicCommitter_Count(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := committer.NewPeriodicCommitter(
		committer.WithMaxCount(10),
		committer.WithMaxInterval(time.Hour),
		committer.WithClock(clock.now),
	)

	p.RecordProcessed(9)
	assert.False(t, p.Due())

	p.RecordProcessed(1)
	assert.True(t, p.Due())
	assert.Equal(t, 10, p.Pending())

	p.Committed()
	assert.False(t, p.Due())
	assert.Zero(t, p.Pending())
}

func TestPeriodicCommitter_Interval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := committer.NewPeriodicCommitter(
		committer.WithMaxCount(1000),
		committer.WithMaxInterval(time.Second),
		committer.WithClock(clock.now),
	)

	clock.advance(2 * time.Second)
	assert.False(t, p.Due(), "nothing pending")

	p.RecordProcessed(1)
	assert.True(t, p.Due())

	p.Committed()
	p.RecordProcessed(1)
	clock.advance(500 * time.Millisecond)
	assert.False(t, p.Due())

	clock.advance(500 * time.Millisecond)
	assert.True(t, p.Due())
}

func TestPeriodicCommitter_DisabledTriggers(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := committer.NewPeriodicCommitter(
		committer.WithMaxCount(0),
		committer.WithMaxInterval(0),
		committer.WithClock(clock.now),
	)

	p.RecordProcessed(1_000_000)
	clock.advance(24 * time.Hour)
	assert.False(t, p.Due())
}
