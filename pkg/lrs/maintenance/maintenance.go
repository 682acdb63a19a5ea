// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package maintenance runs the scheduler's periodic upkeep: a cache
// refresh and a stale-intent reap, on a gocron interval job, grounded
// on the teacher's disk manager's own periodic-task scheduler.
package maintenance

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/pkg/lrs/scheduler"
)

// Options configures the periodic maintenance job.
type Options struct {
	// RefreshInterval is how often the Device Cache is refreshed outside
	// of a *_prepare call.
	RefreshInterval time.Duration
	// IntentTTL is how long an intent may stay outstanding before the
	// maintenance job reaps its locks.
	IntentTTL time.Duration
}

// DefaultOptions returns sane defaults: refresh every 5 minutes, reap
// intents outstanding longer than 30 minutes.
func DefaultOptions() Options {
	return Options{
		RefreshInterval: 5 * time.Minute,
		IntentTTL:       30 * time.Minute,
	}
}

// Runner drives the periodic maintenance job against a Scheduler.
type Runner struct {
	log       logger.Logger
	sched     *scheduler.Scheduler
	opts      Options
	gocronSch gocron.Scheduler
}

// New builds a Runner. The gocron scheduler itself is created here but
// not started until Start is called.
func New(log logger.Logger, sched *scheduler.Scheduler, opts Options) (*Runner, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Runner{log: log, sched: sched, opts: opts, gocronSch: gs}, nil
}

// Start registers the periodic job and starts the gocron scheduler.
func (r *Runner) Start(ctx context.Context) error {
	_, err := r.gocronSch.NewJob(
		gocron.DurationJob(r.opts.RefreshInterval),
		gocron.NewTask(func() {
			r.tick(ctx)
		}),
		gocron.WithName("lrs_maintenance"),
	)
	if err != nil {
		return err
	}
	r.gocronSch.Start()
	r.log.Info("maintenance job started", "refresh_interval", r.opts.RefreshInterval, "intent_ttl", r.opts.IntentTTL)
	return nil
}

func (r *Runner) tick(ctx context.Context) {
	if err := r.sched.Cache().Refresh(ctx); err != nil {
		r.log.Warn("maintenance: cache refresh failed", "err", err)
	}
	if n := r.sched.ReapStaleIntents(ctx, r.opts.IntentTTL); n > 0 {
		r.log.Warn("maintenance: reaped stale intents", "count", n)
	}
}

// Stop shuts the gocron scheduler down.
func (r *Runner) Stop() error {
	return r.gocronSch.Shutdown()
}
