package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func TestReaperSweepsOnlyStaleEmptyRooms(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c, _ := newTestCoordinator(Options{Now: clock.Now})

	// an orphan left behind by an abnormal path, plus a live room
	orphan := c.store.Create(2, clock.now)
	live := c.CreateRoom("A", 2).RoomID

	r := NewReaper(c, time.Minute, 5*time.Minute)
	defer r.Stop()

	clock.now = clock.now.Add(4 * time.Minute)
	assert.Zero(t, r.Sweep())

	clock.now = clock.now.Add(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, ok := c.RoomInfo(orphan.ID)
	assert.False(t, ok)
	_, ok = c.RoomInfo(live)
	assert.True(t, ok, "non-empty rooms are never reaped")
}

func TestReaperStartAndStop(t *testing.T) {
	c, _ := newTestCoordinator(Options{Now: func() time.Time { return time.Now().Add(time.Hour) }})
	c.store.Create(2, time.Now())

	r := NewReaper(c, 10*time.Millisecond, time.Minute)
	r.Start(context.Background())

	require.Eventually(t, func() bool { return c.RoomCount() == 0 }, time.Second, 5*time.Millisecond)
	r.Stop()
}

func TestReaperStopsOnContext(t *testing.T) {
	c, _ := newTestCoordinator(Options{})
	r := NewReaper(c, time.Hour, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on context cancellation")
	}
}

func TestReaperStopRightAfterStart(t *testing.T) {
	c, _ := newTestCoordinator(Options{Now: func() time.Time { return time.Now().Add(time.Hour) }})

	for i := 0; i < 50; i++ {
		r := NewReaper(c, time.Millisecond, time.Minute)
		r.Start(context.Background())
		r.Stop()
	}

	// every loop has returned, so nothing sweeps this orphan anymore
	orphan := c.store.Create(2, time.Now())
	time.Sleep(20 * time.Millisecond)
	_, ok := c.RoomInfo(orphan.ID)
	assert.True(t, ok)
}

func TestNewReaperDefaults(t *testing.T) {
	c, _ := newTestCoordinator(Options{})
	r := NewReaper(c, 0, -1)
	assert.Equal(t, DefaultReaperInterval, r.interval)
	assert.Equal(t, DefaultReaperRetention, r.retention)
}
