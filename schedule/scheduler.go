// Package schedule drives the engine's periodic tasks. Each task runs on its
// own fixed interval in its own goroutine, so a slow task never delays an
// unrelated one. Failures are contained per tick: an error or panic inside
// one run is reported and the task keeps its schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
)

// Task is one scheduled job.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error

	running int32
}

// Scheduler owns a set of tasks and runs them until its context is
// cancelled.
type Scheduler struct {
	clock clock.Clock
	log   *logrus.Logger
	tasks []*Task
	wg    sync.WaitGroup

	// OnFailure, when set, is called with every failed tick. Used to
	// escalate systemic failures to the operator alert channel.
	OnFailure func(task string, err error)
}

func New(clk clock.Clock, log *logrus.Logger) *Scheduler {
	if clk == nil {
		clk = clock.WallClock
	}
	if log == nil {
		log = logrus.New()
	}
	return &Scheduler{clock: clk, log: log}
}

// Add registers a task. Must be called before Start.
func (s *Scheduler) Add(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, &Task{Name: name, Interval: interval, Run: run})
}

// Start launches every task loop. It returns immediately; use Wait to block
// until all loops have stopped after the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, t := range s.tasks {
		t := t
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-s.clock.After(t.Interval):
					s.RunTask(ctx, t)
				}
			}
		}()
	}
}

// Wait blocks until all task loops have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// RunTask executes one tick of a task. If the same task is already running
// (a previous tick overran, or a manual trigger is in progress) the tick is
// a no-op rather than queueing behind it.
func (s *Scheduler) RunTask(ctx context.Context, t *Task) {
	if !atomic.CompareAndSwapInt32(&t.running, 0, 1) {
		s.log.Debugf("task '%v' is still running, skipping tick", t.Name)
		return
	}
	defer atomic.StoreInt32(&t.running, 0)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("task '%v' panicked: %v", t.Name, r)
			s.log.Error(err)
			if s.OnFailure != nil {
				s.OnFailure(t.Name, err)
			}
		}
	}()

	if err := t.Run(ctx); err != nil {
		s.log.Errorf("task '%v' failed: %v", t.Name, err)
		if s.OnFailure != nil {
			s.OnFailure(t.Name, err)
		}
	}
}

// Trigger runs the named task once, outside its schedule. Returns false if
// no task has that name.
func (s *Scheduler) Trigger(ctx context.Context, name string) bool {
	for _, t := range s.tasks {
		if t.Name == name {
			s.RunTask(ctx, t)
			return true
		}
	}
	return false
}
