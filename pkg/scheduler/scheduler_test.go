package scheduler

import (
	"context"
	"errors"
	"staybook/pkg/logger"
	"sync/atomic"
	"testing"
	"time"
)

func newTestScheduler() *Scheduler {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return New(log, nil)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestScheduler()
	run := func(ctx context.Context) error { return nil }

	tests := []struct {
		name    string
		job     Job
		wantErr error
	}{
		{"missing name", Job{Interval: time.Second, Run: run}, ErrInvalidJob},
		{"zero interval", Job{Name: "a", Run: run}, ErrInvalidJob},
		{"missing run", Job{Name: "a", Interval: time.Second}, ErrInvalidJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Register(tt.job); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := s.Register(Job{Name: "sweep", Interval: time.Second, Run: run}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Register(Job{Name: "sweep", Interval: time.Second, Run: run}); !errors.Is(err, ErrDuplicateJob) {
		t.Errorf("expected ErrDuplicateJob, got %v", err)
	}
}

func TestScheduler_RunsOnStartAndOnTick(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int32

	err := s.Register(Job{
		Name:       "counter",
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if runs.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", runs.Load())
	}

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Errorf("job kept running after Stop: %d -> %d", after, runs.Load())
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	s := newTestScheduler()
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	if err := s.Register(Job{Name: "late", Interval: time.Second, Run: func(context.Context) error { return nil }}); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted on late register, got %v", err)
	}
}

func TestRunNow_RecoversPanic(t *testing.T) {
	s := newTestScheduler()

	err := s.RunNow(context.Background(), Job{
		Name: "explode",
		Run: func(ctx context.Context) error {
			panic("boom")
		},
	})

	if err == nil {
		t.Fatal("expected error from panicking job")
	}
}

func TestRunNow_AppliesTimeout(t *testing.T) {
	s := newTestScheduler()

	err := s.RunNow(context.Background(), Job{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestStop_CancelsInFlightRun(t *testing.T) {
	s := newTestScheduler()
	started := make(chan struct{})
	var cancelled atomic.Bool

	_ = s.Register(Job{
		Name:       "blocking",
		Interval:   time.Hour,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			cancelled.Store(true)
			return ctx.Err()
		},
	})
	_ = s.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}

	s.Stop()
	if !cancelled.Load() {
		t.Error("Stop() returned before the in-flight run observed cancellation")
	}
}
