package control

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/screenshotter/pkg/config"
	"github.com/offlinefirst/screenshotter/pkg/screenshots"
)

type stubSink struct {
	mu    sync.Mutex
	calls int
}

func (s *stubSink) Capture(context.Context) (screenshots.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return screenshots.Result{Path: fmt.Sprintf("shot-%d.png", s.calls)}, nil
}

func writeDefaults(t *testing.T, dir string, backend string) config.Paths {
	t.Helper()
	paths := config.PathsIn(dir)
	body := fmt.Sprintf("interval: 60\nsave_path: %q\nspecific_time: \"14:00\"\ncapture_backend: %s\n",
		filepath.Join(dir, "shots"), backend)
	require.NoError(t, os.WriteFile(paths.Defaults, []byte(body), 0o644))
	return paths
}

func newService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Store == nil {
		paths := writeDefaults(t, t.TempDir(), config.BackendSynthetic)
		opts.Store = config.NewStore(paths, nil)
		_, err := opts.Store.Load()
		require.NoError(t, err)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewFakeClock()
	}
	svc, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, svc.Open(t.Context()))
	t.Cleanup(func() { require.NoError(t, svc.Close()) })
	return svc
}

func TestSetIntervalSurvivesReload(t *testing.T) {
	paths := writeDefaults(t, t.TempDir(), config.BackendSynthetic)
	store := config.NewStore(paths, nil)
	_, err := store.Load()
	require.NoError(t, err)
	svc := newService(t, Options{Store: store, Sink: &stubSink{}})

	require.NoError(t, svc.SetInterval(30))
	require.Equal(t, 30, svc.Config().IntervalSeconds)

	reloaded, err := config.NewStore(paths, nil).Load()
	require.NoError(t, err)
	require.Equal(t, 30, reloaded.IntervalSeconds)
	require.Equal(t, "14:00", reloaded.DailyTime)
}

func TestSetIntervalInputRejectsGarbage(t *testing.T) {
	svc := newService(t, Options{Sink: &stubSink{}})

	_, err := svc.SetIntervalInput("soon")
	require.ErrorIs(t, err, config.ErrInvalidInterval)
	require.Equal(t, "Please enter a valid number", UserMessage(err))
	require.Equal(t, 60, svc.Config().IntervalSeconds)

	seconds, err := svc.SetIntervalInput(" 45 ")
	require.NoError(t, err)
	require.Equal(t, 45, seconds)
	require.Equal(t, 45, svc.Config().IntervalSeconds)
}

func TestSetDailyTimeRejectsInvalidAndKeepsPrior(t *testing.T) {
	svc := newService(t, Options{Sink: &stubSink{}})
	require.Equal(t, "14:00", svc.DailyAt())

	_, err := svc.SetDailyTime("25:99")
	require.ErrorIs(t, err, config.ErrInvalidTimeFormat)
	require.Equal(t, "Please enter a valid time format (HH:MM)", UserMessage(err))
	require.Equal(t, "14:00", svc.Config().DailyTime)
	require.Equal(t, "14:00", svc.DailyAt())
}

func TestSetDailyTimeReschedules(t *testing.T) {
	svc := newService(t, Options{Sink: &stubSink{}})

	daily, err := svc.SetDailyTime("9:05")
	require.NoError(t, err)
	require.Equal(t, "09:05", daily)
	require.Equal(t, "09:05", svc.DailyAt())
	require.Equal(t, "09:05", svc.Config().DailyTime)
}

func TestSubscribersReceiveStatus(t *testing.T) {
	svc := newService(t, Options{Sink: &stubSink{}})

	var (
		mu       sync.Mutex
		messages []string
	)
	unsubscribe := svc.Subscribe(func(s Status) {
		mu.Lock()
		defer mu.Unlock()
		messages = append(messages, s.Message)
	})

	res, err := svc.TriggerOnce(t.Context())
	require.NoError(t, err)
	require.Equal(t, "shot-1.png", res.Path)
	require.False(t, svc.Running())

	svc.Start()
	require.True(t, svc.Running())
	svc.Stop()
	require.False(t, svc.Running())

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, messages, "Screenshot saved to shot-1.png")
	require.Contains(t, messages, "Automatic screenshots started")
	require.Contains(t, messages, "Automatic screenshots stopped")
	unsubscribe()
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	svc := newService(t, Options{Sink: &stubSink{}})

	var count int
	unsubscribe := svc.Subscribe(func(Status) { count++ })
	_, err := svc.TriggerOnce(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, count)

	unsubscribe()
	_, err = svc.TriggerOnce(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestReloadReschedulesOnlyOnChange(t *testing.T) {
	paths := writeDefaults(t, t.TempDir(), config.BackendSynthetic)
	store := config.NewStore(paths, nil)
	_, err := store.Load()
	require.NoError(t, err)
	svc := newService(t, Options{Store: store, Sink: &stubSink{}})

	var scheduled []string
	svc.Subscribe(func(s Status) { scheduled = append(scheduled, s.Message) })

	require.NoError(t, svc.Reload())
	require.Empty(t, scheduled)

	require.NoError(t, os.WriteFile(paths.User, []byte("specific_time: \"16:30\"\n"), 0o644))
	require.NoError(t, svc.Reload())
	require.Equal(t, "16:30", svc.DailyAt())
	require.Equal(t, []string{"Daily screenshot scheduled at 16:30"}, scheduled)
}

func TestWatcherReloadsEditedUserFile(t *testing.T) {
	paths := writeDefaults(t, t.TempDir(), config.BackendSynthetic)
	store := config.NewStore(paths, nil)
	_, err := store.Load()
	require.NoError(t, err)
	svc := newService(t, Options{Store: store, Sink: &stubSink{}, WatchConfig: true})

	require.NoError(t, os.WriteFile(paths.User, []byte("specific_time: \"07:15\"\ninterval: 5\n"), 0o644))

	require.Eventually(t, func() bool { return svc.DailyAt() == "07:15" }, 5*time.Second, 20*time.Millisecond)
	require.Equal(t, 5, svc.Config().IntervalSeconds)
}

func TestDefaultSinkWritesIntoSavePath(t *testing.T) {
	dir := t.TempDir()
	paths := writeDefaults(t, dir, config.BackendSynthetic)
	store := config.NewStore(paths, nil)
	_, err := store.Load()
	require.NoError(t, err)
	svc := newService(t, Options{Store: store})

	res, err := svc.TriggerOnce(t.Context())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "shots"), filepath.Dir(res.Path))
	require.FileExists(t, res.Path)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
