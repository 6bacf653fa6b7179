// Package scheduler drives the two capture timers: a repeating interval loop
// that the user starts and stops, and a daily job that always runs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/offlinefirst/screenshotter/pkg/config"
	"github.com/offlinefirst/screenshotter/pkg/metrics"
	"github.com/offlinefirst/screenshotter/pkg/screenshots"
)

// Trigger names what caused a capture.
type Trigger string

const (
	TriggerInterval Trigger = "interval"
	TriggerDaily    Trigger = "daily"
	TriggerManual   Trigger = "manual"
)

const dailyJobName = "daily-capture"

// Sink performs one capture.
type Sink interface {
	Capture(ctx context.Context) (screenshots.Result, error)
}

// Status is a human-readable notification for the control surface.
type Status struct {
	Message string
	Trigger Trigger
	Path    string
	Err     error
	At      time.Time
}

// Options configure a Scheduler.
type Options struct {
	Sink     Sink
	Clock    clockwork.Clock
	Interval func() time.Duration
	Status   func(Status)
	Logger   *slog.Logger
	Recorder metrics.Recorder
	Location *time.Location
}

// Scheduler owns the interval loop and the daily job.
type Scheduler struct {
	sink     Sink
	clock    clockwork.Clock
	interval func() time.Duration
	status   func(Status)
	logger   *slog.Logger
	recorder metrics.Recorder

	ctrl *Controller
	cron gocron.Scheduler

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
	dailyID uuid.UUID
	dailyAt string
}

// New validates options and constructs a stopped scheduler.
func New(opts Options) (*Scheduler, error) {
	if opts.Sink == nil {
		return nil, errors.New("sink must be provided")
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := opts.Interval
	if interval == nil {
		interval = func() time.Duration { return config.DefaultIntervalSeconds * time.Second }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	cron, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(logger.With("component", "gocron")),
	)
	if err != nil {
		return nil, fmt.Errorf("create daily scheduler: %w", err)
	}

	return &Scheduler{
		sink:     opts.Sink,
		clock:    clock,
		interval: interval,
		status:   opts.Status,
		logger:   logger,
		recorder: recorder,
		ctrl:     NewController(),
		cron:     cron,
	}, nil
}

// Open starts the interval loop goroutine and the daily executor.
func (s *Scheduler) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil || s.closed {
		return errors.New("scheduler already open")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.cron.Start()
	go s.loop(s.ctx, s.done)
	return nil
}

// Close stops both timers and waits for the interval loop to exit.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	if s.ctrl.Stop() {
		s.recorder.SetIntervalRunning(false)
	}
	if err := s.cron.Shutdown(); err != nil && !errors.Is(err, gocron.ErrStopSchedulerTimedOut) {
		return fmt.Errorf("shutdown daily scheduler: %w", err)
	}
	return nil
}

// Start enables interval capture. The first capture happens immediately.
// Calling Start while running has no effect.
func (s *Scheduler) Start() {
	if !s.ctrl.Start() {
		return
	}
	s.recorder.SetIntervalRunning(true)
	s.logger.Info("interval capture started", "interval", s.interval())
	s.emit(Status{Message: "Automatic screenshots started"})
}

// Stop disables interval capture. A pending firing becomes a no-op.
func (s *Scheduler) Stop() {
	if !s.ctrl.Stop() {
		return
	}
	s.recorder.SetIntervalRunning(false)
	s.logger.Info("interval capture stopped")
	s.emit(Status{Message: "Automatic screenshots stopped"})
}

// Running reports whether interval capture is enabled.
func (s *Scheduler) Running() bool {
	return s.ctrl.Running()
}

// TriggerOnce captures synchronously, independent of both timers.
func (s *Scheduler) TriggerOnce(ctx context.Context) (screenshots.Result, error) {
	return s.fire(ctx, TriggerManual)
}

// ScheduleDaily registers the daily capture at hhmm local time, replacing any
// previous registration.
func (s *Scheduler) ScheduleDaily(hhmm string) error {
	hour, minute, err := config.ParseDailyTime(hhmm)
	if err != nil {
		return err
	}
	label := fmt.Sprintf("%02d:%02d", hour, minute)

	id, err := s.registerDaily(hour, minute, label)
	if err != nil {
		return err
	}
	s.recorder.IncDailyReschedule()
	s.logger.Info("daily capture scheduled", "at", label, "job_id", id)
	s.emit(Status{Message: "Daily screenshot scheduled at " + label})
	return nil
}

func (s *Scheduler) registerDaily(hour, minute int, label string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	definition := gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0)))
	task := gocron.NewTask(s.runDaily)
	jobOpts := []gocron.JobOption{
		gocron.WithName(dailyJobName),
		gocron.WithTags(label),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}

	var (
		job gocron.Job
		err error
	)
	if s.dailyID != uuid.Nil {
		job, err = s.cron.Update(s.dailyID, definition, task, jobOpts...)
	} else {
		job, err = s.cron.NewJob(definition, task, jobOpts...)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("schedule daily capture at %s: %w", label, err)
	}
	s.dailyID = job.ID()
	s.dailyAt = label
	return s.dailyID, nil
}

// DailyAt reports the registered daily time, or "" when none is registered.
func (s *Scheduler) DailyAt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyAt
}

// NextDaily reports when the daily job fires next.
func (s *Scheduler) NextDaily() (time.Time, error) {
	s.mu.Lock()
	id := s.dailyID
	s.mu.Unlock()
	if id == uuid.Nil {
		return time.Time{}, errors.New("no daily capture scheduled")
	}
	for _, job := range s.cron.Jobs() {
		if job.ID() == id {
			return job.NextRun()
		}
	}
	return time.Time{}, gocron.ErrJobNotFound
}

func (s *Scheduler) runDaily() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	_, _ = s.fire(ctx, TriggerDaily)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		epoch, err := s.ctrl.Wait(ctx)
		if err != nil {
			return
		}
		if s.ctrl.Current(epoch) {
			_, _ = s.fire(ctx, TriggerInterval)
		}
		if err := s.runEpoch(ctx, epoch); err != nil {
			return
		}
	}
}

// runEpoch fires on every interval until epoch stops being current.
func (s *Scheduler) runEpoch(ctx context.Context, epoch uint64) error {
	timer := s.clock.NewTimer(s.nextInterval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctrl.Changed():
			if !s.ctrl.Current(epoch) {
				return nil
			}
		case <-timer.Chan():
			if !s.ctrl.Current(epoch) {
				return nil
			}
			_, _ = s.fire(ctx, TriggerInterval)
			timer.Reset(s.nextInterval())
		}
	}
}

func (s *Scheduler) nextInterval() time.Duration {
	d := s.interval()
	if d <= 0 {
		d = config.DefaultIntervalSeconds * time.Second
	}
	return d
}

func (s *Scheduler) fire(ctx context.Context, trigger Trigger) (res screenshots.Result, err error) {
	start := s.clock.Now()
	res, err = s.capture(ctx)
	s.recorder.ObserveCaptureDuration(string(trigger), s.clock.Since(start))

	if err != nil {
		s.recorder.IncCapture(string(trigger), metrics.OutcomeFailure)
		s.logger.Warn("screenshot failed", "trigger", trigger, "error", err)
		s.emit(Status{Message: "Screenshot failed: " + err.Error(), Trigger: trigger, Err: err})
		return res, err
	}
	s.recorder.IncCapture(string(trigger), metrics.OutcomeSuccess)
	s.logger.Info("screenshot saved", "trigger", trigger, "path", res.Path)
	s.emit(Status{Message: "Screenshot saved to " + res.Path, Trigger: trigger, Path: res.Path})
	return res, nil
}

func (s *Scheduler) capture(ctx context.Context) (res screenshots.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = screenshots.Result{}
			err = &screenshots.CaptureError{Op: "capture", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.sink.Capture(ctx)
}

func (s *Scheduler) emit(status Status) {
	if s.status == nil {
		return
	}
	if status.At.IsZero() {
		status.At = s.clock.Now()
	}
	s.status(status)
}
