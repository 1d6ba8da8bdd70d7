// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package worker implements the four background pipeline stages — Discovery,
Hydration, Conversion, Delivery (spec.md §4) — as independently scheduled,
independently supervised tasks (spec.md §5).

Each stage is a Task: a named, restartable loop. Supervisor owns the
respawn contract described in spec.md §5 — "a supervisor awaits task
completion and respawns any task that terminates (successfully or via
panic) with an identical fresh task; only an explicit cancellation signal
breaks the supervisor loop" — by recovering a panicking task's goroutine
and relaunching it, rather than letting one bad tick take the whole
process down.
*/
package worker

import (
	"context"
	"log/slog"
	"time"
)

// Task is one independently-scheduled background stage.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Supervisor runs a set of [Task]s, respawning any that return or panic,
// until ctx is cancelled (spec.md §5).
type Supervisor struct {
	tasks []Task
	log   *slog.Logger
}

// NewSupervisor constructs a [Supervisor] over tasks.
func NewSupervisor(log *slog.Logger, tasks ...Task) *Supervisor {
	return &Supervisor{tasks: tasks, log: log}
}

// respawnBackoff bounds how fast a crash-looping task is retried.
const respawnBackoff = time.Second

// Run blocks until ctx is cancelled, supervising every task concurrently.
func (s *Supervisor) Run(ctx context.Context) {
	for _, t := range s.tasks {
		go s.supervise(ctx, t)
	}
	<-ctx.Done()
}

// supervise runs task in a loop, relaunching it on return or panic, until
// ctx is cancelled.
func (s *Supervisor) supervise(ctx context.Context, task Task) {
	for {
		if ctx.Err() != nil {
			return
		}
		s.runOnce(ctx, task)
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(respawnBackoff):
		}
	}
}

// runOnce executes task.Run once, converting a panic into a logged error
// so the supervisor loop can respawn rather than crash the process.
func (s *Supervisor) runOnce(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("worker_task_panicked",
				slog.String("task", task.Name),
				slog.Any("panic", r),
			)
		}
	}()

	s.log.Info("worker_task_starting", slog.String("task", task.Name))
	if err := task.Run(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("worker_task_exited",
			slog.String("task", task.Name),
			slog.Any("error", err),
		)
	}
}

// tick runs fn on every period, using skip-missed-tick semantics (a slow
// fn never causes a backlog of queued ticks to fire back-to-back) — the
// Go analogue of the original source's `tokio::time::interval` combined
// with `MissedTickBehavior::Skip`. It blocks until ctx is cancelled.
func tick(ctx context.Context, period time.Duration, log *slog.Logger, taskName string, fn func(ctx context.Context)) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Error("worker_tick_panicked",
							slog.String("task", taskName),
							slog.Any("panic", r),
						)
					}
				}()
				fn(ctx)
			}()
		}
	}
}
