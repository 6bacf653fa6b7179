// Package control is the application context shared by the desktop window,
// the tray and the CLI. It owns the configuration store and the scheduler and
// fans status updates out to subscribers.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/offlinefirst/screenshotter/pkg/config"
	"github.com/offlinefirst/screenshotter/pkg/metrics"
	"github.com/offlinefirst/screenshotter/pkg/scheduler"
	"github.com/offlinefirst/screenshotter/pkg/screenshots"
)

// Status is delivered to subscribers on every capture attempt and state change.
type Status = scheduler.Status

// Options configure a Service.
type Options struct {
	Store    *config.Store
	Sink     scheduler.Sink
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// WatchConfig reloads settings when the user file changes on disk.
	WatchConfig bool
}

// Service implements the commands a control surface can issue.
type Service struct {
	store  *config.Store
	sched  *scheduler.Scheduler
	logger *slog.Logger
	watch  bool

	mu      sync.Mutex
	subs    []func(Status)
	watcher *config.Watcher
}

// New wires a scheduler to the store. When Sink is nil a screenshots.Sink for
// the configured backend is used.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("config store must be provided")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sink := opts.Sink
	if sink == nil {
		s, err := screenshots.NewSink(screenshots.SinkOptions{
			Clock:    clock,
			Settings: opts.Store.Current,
			Logger:   logger.With("component", "sink"),
		})
		if err != nil {
			return nil, fmt.Errorf("create capture sink: %w", err)
		}
		sink = s
	}

	svc := &Service{store: opts.Store, logger: logger, watch: opts.WatchConfig}
	sched, err := scheduler.New(scheduler.Options{
		Sink:     sink,
		Clock:    clock,
		Interval: func() time.Duration { return opts.Store.Current().Interval() },
		Status:   svc.publish,
		Logger:   logger.With("component", "scheduler"),
		Recorder: opts.Recorder,
	})
	if err != nil {
		return nil, err
	}
	svc.sched = sched
	return svc, nil
}

// Open starts the timers and registers the daily capture from the current settings.
func (s *Service) Open(ctx context.Context) error {
	if err := s.sched.Open(ctx); err != nil {
		return err
	}
	if err := s.sched.ScheduleDaily(s.store.Current().DailyTime); err != nil {
		return err
	}
	if !s.watch {
		return nil
	}

	watcher, err := config.NewWatcher(s.store.Paths().User, config.DefaultWatchDebounce, s.logger, func() {
		if err := s.Reload(); err != nil {
			s.logger.Warn("reload configuration", "error", err)
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Close()
		return err
	}
	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()
	return nil
}

// Close stops the watcher and both timers.
func (s *Service) Close() error {
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	var errs []error
	if watcher != nil {
		errs = append(errs, watcher.Close())
	}
	errs = append(errs, s.sched.Close())
	return errors.Join(errs...)
}

// Config returns the committed settings.
func (s *Service) Config() config.Settings {
	return s.store.Current()
}

// SetInterval persists a new interval; it applies from the next wait.
func (s *Service) SetInterval(seconds int) error {
	if err := s.store.SetInterval(seconds); err != nil {
		return err
	}
	s.logger.Info("interval updated", "interval_seconds", seconds)
	return nil
}

// SetIntervalInput parses raw user input and persists it.
func (s *Service) SetIntervalInput(raw string) (int, error) {
	seconds, err := config.ParseInterval(raw)
	if err != nil {
		return 0, err
	}
	return seconds, s.SetInterval(seconds)
}

// SetDailyTime persists a new daily time and reschedules the daily job.
// Invalid input is rejected and the previous time stays in effect.
func (s *Service) SetDailyTime(value string) (string, error) {
	if err := s.store.SetDailyTime(value); err != nil {
		return "", err
	}
	daily := s.store.Current().DailyTime
	if err := s.sched.ScheduleDaily(daily); err != nil {
		return "", err
	}
	return daily, nil
}

// Start enables interval capture.
func (s *Service) Start() {
	s.sched.Start()
}

// Stop disables interval capture.
func (s *Service) Stop() {
	s.sched.Stop()
}

// Running reports whether interval capture is enabled.
func (s *Service) Running() bool {
	return s.sched.Running()
}

// TriggerOnce takes one screenshot now.
func (s *Service) TriggerOnce(ctx context.Context) (screenshots.Result, error) {
	return s.sched.TriggerOnce(ctx)
}

// DailyAt reports the registered daily capture time.
func (s *Service) DailyAt() string {
	return s.sched.DailyAt()
}

// Reload re-reads the configuration files. The daily job is only replaced
// when its time changed.
func (s *Service) Reload() error {
	settings, err := s.store.Load()
	if err != nil {
		return err
	}
	if settings.DailyTime == s.sched.DailyAt() {
		return nil
	}
	return s.sched.ScheduleDaily(settings.DailyTime)
}

// Subscribe registers fn for status updates. The returned func unsubscribes.
func (s *Service) Subscribe(fn func(Status)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.subs) {
			s.subs[idx] = nil
		}
	}
}

func (s *Service) publish(status Status) {
	s.mu.Lock()
	subs := make([]func(Status), 0, len(s.subs))
	for _, fn := range s.subs {
		if fn != nil {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(status)
	}
}

// UserMessage turns an edit-time validation error into text for a dialog.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, config.ErrInvalidInterval):
		return "Please enter a valid number"
	case errors.Is(err, config.ErrInvalidTimeFormat):
		return "Please enter a valid time format (HH:MM)"
	default:
		return err.Error()
	}
}
