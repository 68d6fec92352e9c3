/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package scheduler is the shared worker pool. It runs immediate, delayed and
// fixed-rate tasks with a bound on how many execute at once.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/carverauto/sdwn/pkg/logger"
)

const DefaultWorkerLimit = 64

// ErrStopTimeout is returned by Stop when running tasks outlive its context.
var ErrStopTimeout = errors.New("timed out waiting for tasks to finish")

// Task is a handle on a scheduled task. Cancel is idempotent and safe to call
// from inside the task itself.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops future runs. A run already in progress completes.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed once the task will not run again.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Scheduler runs tasks on goroutines bounded by a weighted semaphore.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	clock  Clock
	logger logger.Logger
	wg     sync.WaitGroup

	// mu orders wg.Add against Stop so no task is added once Wait may run.
	mu      sync.Mutex
	stopped bool
}

// New creates a Scheduler allowing at most limit tasks to run concurrently.
func New(limit int64, clock Clock, log logger.Logger) *Scheduler {
	if limit <= 0 {
		limit = DefaultWorkerLimit
	}

	if clock == nil {
		clock = RealClock{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(limit),
		clock:  clock,
		logger: log,
	}
}

// Clock returns the clock driving delayed and periodic tasks.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Execute runs fn as soon as a worker slot is free. Tasks submitted after
// Stop are dropped.
func (s *Scheduler) Execute(fn func()) {
	if !s.track() {
		return
	}

	go func() {
		defer s.wg.Done()

		s.run(s.ctx, fn)
	}()
}

// Schedule runs fn once after delay unless the returned task is cancelled first.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) *Task {
	task, ctx := s.newTask()

	if !s.track() {
		close(task.done)

		return task
	}

	go func() {
		defer s.wg.Done()
		defer close(task.done)

		ticker := s.clock.Ticker(delay)
		defer ticker.Stop()

		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		s.run(ctx, fn)
	}()

	return task
}

// ScheduleAtFixedRate runs fn every period, starting one period from now,
// until the task is cancelled. Runs never overlap. fn receives its own task
// so it can cancel itself.
func (s *Scheduler) ScheduleAtFixedRate(period time.Duration, fn func(*Task)) *Task {
	task, ctx := s.newTask()

	if !s.track() {
		close(task.done)

		return task
	}

	go func() {
		defer s.wg.Done()
		defer close(task.done)

		ticker := s.clock.Ticker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				s.run(ctx, func() { fn(task) })
			}
		}
	}()

	return task
}

// Stop cancels all pending tasks and waits for running ones until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrStopTimeout
	}
}

// track registers one more goroutine unless the scheduler is stopped.
func (s *Scheduler) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}

	s.wg.Add(1)

	return true
}

func (s *Scheduler) newTask() (*Task, context.Context) {
	ctx, cancel := context.WithCancel(s.ctx)

	return &Task{cancel: cancel, done: make(chan struct{})}, ctx
}

func (s *Scheduler) run(ctx context.Context, fn func()) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer s.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("Scheduled task panicked")
		}
	}()

	fn()
}
