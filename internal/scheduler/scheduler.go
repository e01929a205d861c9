// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic rescan and housekeeping jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/ocms-formtrans/internal/model"
)

// Job names.
const (
	JobRescan      = "rescan"
	JobPruneScans  = "prune_scan_log"
	JobPruneEvents = "prune_events"
)

// PruneSchedule runs the housekeeping jobs once a day.
const PruneSchedule = "30 3 * * *"

// jobTimeout bounds a single job run.
const jobTimeout = 30 * time.Minute

// Scanner is the part of the catalog the jobs drive.
type Scanner interface {
	ScanAll(ctx context.Context, scanType string) (scanned, failed int, err error)
	PruneScanLog(ctx context.Context, retention time.Duration) (int64, error)
}

// EventPruner deletes persisted log events.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error)
}

// Config selects which jobs run.
type Config struct {
	// RescanSchedule is a five field cron spec. Empty disables rescans.
	RescanSchedule string
	// Retention is how long scan log rows and events are kept. Zero disables pruning.
	Retention time.Duration
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	LastRun  time.Time `json:"last_run,omitzero"`
	NextRun  time.Time `json:"next_run,omitzero"`
}

type job struct {
	name     string
	schedule string
	entryID  cron.EntryID
	run      func(ctx context.Context) error
	lastRun  time.Time
}

// Scheduler owns the cron instance and the registered jobs.
type Scheduler struct {
	cron    *cron.Cron
	scanner Scanner
	events  EventPruner
	cfg     Config
	logger  *slog.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a scheduler. events may be nil.
func New(scanner Scanner, events EventPruner, cfg Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		scanner: scanner,
		events:  events,
		cfg:     cfg,
		logger:  logger,
		jobs:    make(map[string]*job),
	}
}

// Start registers the configured jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.cfg.RescanSchedule != "" {
		if err := s.add(JobRescan, s.cfg.RescanSchedule, s.rescan); err != nil {
			return err
		}
	}
	if s.cfg.Retention > 0 {
		if err := s.add(JobPruneScans, PruneSchedule, s.pruneScans); err != nil {
			return err
		}
		if s.events != nil {
			if err := s.add(JobPruneEvents, PruneSchedule, s.pruneEvents); err != nil {
				return err
			}
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Jobs lists the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, JobInfo{
			Name:     j.name,
			Schedule: j.schedule,
			LastRun:  j.lastRun,
			NextRun:  s.cron.Entry(j.entryID).Next,
		})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// RunNow runs a registered job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.execute(ctx, j)
}

func (s *Scheduler) add(name, schedule string, run func(ctx context.Context) error) error {
	j := &job{name: name, schedule: schedule, run: run}
	id, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_ = s.execute(ctx, j)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, name, err)
	}
	j.entryID = id

	s.mu.Lock()
	s.jobs[name] = j
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	err := j.run(ctx)

	s.mu.Lock()
	j.lastRun = time.Now()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "job", j.name, "error", err, "category", model.EventCategorySystem)
	}
	return err
}

func (s *Scheduler) rescan(ctx context.Context) error {
	scanned, failed, err := s.scanner.ScanAll(ctx, model.ScanTypeScheduled)
	if err != nil {
		return err
	}
	s.logger.Info("scheduled rescan finished", "scanned", scanned, "failed", failed)
	if failed > 0 {
		s.logger.Warn("scheduled rescan had failures", "failed", failed, "category", model.EventCategoryScan)
	}
	return nil
}

func (s *Scheduler) pruneScans(ctx context.Context) error {
	n, err := s.scanner.PruneScanLog(ctx, s.cfg.Retention)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned scan log", "deleted", n)
	}
	return nil
}

func (s *Scheduler) pruneEvents(ctx context.Context) error {
	n, err := s.events.DeleteEventsBefore(ctx, time.Now().UTC().Add(-s.cfg.Retention))
	if err != nil {
		return fmt.Errorf("pruning events: %w", err)
	}
	if n > 0 {
		s.logger.Info("pruned events", "deleted", n)
	}
	return nil
}
