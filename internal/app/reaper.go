package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultReaperInterval  = 5 * time.Minute
	DefaultReaperRetention = 5 * time.Minute
)

// Reaper periodically removes rooms that are empty but were never cleaned up
// synchronously. Under normal operation it finds nothing to do.
type Reaper struct {
	coord     *Coordinator
	interval  time.Duration
	retention time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReaper creates a reaper sweeping coord every interval for empty rooms
// older than retention.
//
// Example:
//
//	reaper := NewReaper(coord, 5*time.Minute, 5*time.Minute)
//	reaper.Start(ctx)
//	defer reaper.Stop()
func NewReaper(coord *Coordinator, interval, retention time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultReaperInterval
	}
	if retention < 0 {
		retention = DefaultReaperRetention
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reaper{
		coord:     coord,
		interval:  interval,
		retention: retention,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the sweep loop on its own goroutine. The loop ends when
// ctx or the reaper itself is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop(ctx)
	}()
}

func (r *Reaper) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Info().Str("module", "app.reaper").Dur("interval", r.interval).Dur("retention", r.retention).Msg("reaper started")

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-ctx.Done():
			log.Info().Str("module", "app.reaper").Msg("reaper stopping: context cancelled")
			return
		case <-r.ctx.Done():
			log.Info().Str("module", "app.reaper").Msg("reaper stopping")
			return
		}
	}
}

// Sweep performs one pass and returns the number of rooms removed.
func (r *Reaper) Sweep() int {
	removed := r.coord.SweepEmpty(r.coord.now(), r.retention)
	if removed > 0 {
		log.Info().Str("module", "app.reaper").Int("removed", removed).Msg("sweep finished")
	}
	return removed
}

// Stop cancels the loop and waits for it to return.
func (r *Reaper) Stop() {
	r.cancel()
	r.wg.Wait()
}
