package schedule

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
)

func TestScheduler_RunTaskReportsFailures(t *testing.T) {
	s := New(testclock.NewClock(time.Now()), nil)
	var failedTask string
	s.OnFailure = func(task string, err error) { failedTask = task }

	task := &Task{Name: "broken", Run: func(ctx context.Context) error {
		return fmt.Errorf("tick failed")
	}}
	s.RunTask(context.Background(), task)

	if failedTask != "broken" {
		t.Fatalf("the failure was not reported, got %q", failedTask)
	}
}

func TestScheduler_RunTaskContainsPanics(t *testing.T) {
	s := New(testclock.NewClock(time.Now()), nil)
	var failedTask string
	s.OnFailure = func(task string, err error) { failedTask = task }

	task := &Task{Name: "panicky", Run: func(ctx context.Context) error {
		panic("boom")
	}}
	s.RunTask(context.Background(), task) // must not propagate

	if failedTask != "panicky" {
		t.Fatalf("the panic was not reported, got %q", failedTask)
	}
}

func TestScheduler_ContestedTickIsANoOp(t *testing.T) {
	s := New(testclock.NewClock(time.Now()), nil)

	started := make(chan struct{})
	release := make(chan struct{})
	runs := 0
	task := &Task{Name: "slow", Run: func(ctx context.Context) error {
		runs++
		close(started)
		<-release
		return nil
	}}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.RunTask(context.Background(), task)
	}()
	<-started

	// a second tick while the first is still running must not queue
	s.RunTask(context.Background(), task)

	close(release)
	wg.Wait()

	if runs != 1 {
		t.Fatalf("expected the contested tick to no-op, got %v runs", runs)
	}
}

func TestScheduler_TriggerRunsNamedTask(t *testing.T) {
	s := New(testclock.NewClock(time.Now()), nil)
	ran := false
	s.Add("manual", time.Hour, func(ctx context.Context) error {
		ran = true
		return nil
	})

	if !s.Trigger(context.Background(), "manual") {
		t.Fatalf("Trigger did not find the task")
	}
	if !ran {
		t.Fatalf("Trigger did not run the task")
	}
	if s.Trigger(context.Background(), "missing") {
		t.Fatalf("Trigger found a task that doesn't exist")
	}
}

func TestScheduler_TasksRunOnTheirOwnCadence(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	s := New(clk, nil)

	var mu sync.Mutex
	fastRuns, slowRuns := 0, 0
	s.Add("fast", time.Second, func(ctx context.Context) error {
		mu.Lock()
		fastRuns++
		mu.Unlock()
		return nil
	})
	s.Add("slow", time.Minute, func(ctx context.Context) error {
		mu.Lock()
		slowRuns++
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	// both loops must be waiting before time advances
	if err := clk.WaitAdvance(time.Second, time.Second, 2); err != nil {
		t.Fatalf("task loops did not start: %v", err)
	}

	// give the fast task's goroutine a moment to run and re-arm
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		f := fastRuns
		mu.Unlock()
		if f == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	f, sl := fastRuns, slowRuns
	mu.Unlock()
	if f != 1 {
		t.Fatalf("expected the fast task to have run once, got %v", f)
	}
	if sl != 0 {
		t.Fatalf("the slow task ran before its interval elapsed")
	}

	cancel()
	s.Wait()
}
