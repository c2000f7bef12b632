package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
	"sync"
	"time"
)

var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrDuplicateJob   = errors.New("job already registered")
	ErrInvalidJob     = errors.New("invalid job")
)

// Job is a unit of periodic background work. Run receives a context that is
// cancelled when the run exceeds Timeout or the scheduler stops.
type Job struct {
	Name       string
	Interval   time.Duration
	Timeout    time.Duration
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// Scheduler runs each registered job on its own ticker. Runs of the same job
// never overlap; a tick that arrives while the previous run is still going is
// dropped.
type Scheduler struct {
	log     *logger.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	jobs    []Job
	started bool

	stopCh   chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(log *logger.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		log:     log.WithComponent("scheduler"),
		metrics: m,
		stopCh:  make(chan struct{}),
	}
}

func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Interval <= 0 || job.Run == nil {
		return fmt.Errorf("%w: name, positive interval and run func are required", ErrInvalidJob)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	for _, existing := range s.jobs {
		if existing.Name == job.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
		}
	}

	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
		s.log.Info("Scheduled job registered", "job", job.Name, "interval", job.Interval)
	}
	return nil
}

// Stop signals every loop to exit, cancels in-flight runs and waits for them
// to return. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()
	})
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	if job.RunOnStart {
		s.runOnce(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx, job)
		case <-s.stopCh:
			return
		}
	}
}

// RunNow executes job synchronously with the same panic and timeout
// handling as a scheduled run.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	return s.execute(ctx, job)
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	_ = s.execute(ctx, job)
}

func (s *Scheduler) execute(ctx context.Context, job Job) (err error) {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
			s.log.Error("Scheduled job panicked",
				"job", job.Name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}

		duration := time.Since(start)
		s.metrics.JobRun(job.Name, duration, err)
		if err != nil {
			s.log.Error("Scheduled job failed", "job", job.Name, "duration_ms", duration.Milliseconds(), "error", err)
			return
		}
		s.log.Debug("Scheduled job finished", "job", job.Name, "duration_ms", duration.Milliseconds())
	}()

	return job.Run(ctx)
}
