package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestStore(t *testing.T, defaults string) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	paths := PathsIn(dir)
	if defaults != "" {
		writeFile(t, paths.Defaults, defaults)
	}
	return NewStore(paths, nil), dir
}

func defaultsDoc(savePath string) string {
	return "interval: 60\nsave_path: " + savePath + "\nspecific_time: \"14:00\"\n"
}

func TestValidateTime(t *testing.T) {
	valid := []string{"00:00", "09:30", "9:30", "12:00", "14:00", "23:59"}
	for _, v := range valid {
		require.Truef(t, ValidateTime(v), "expected %q to be valid", v)
	}

	invalid := []string{"", "25:99", "24:00", "12:60", "12-30", "12.30", "1230", "ab:cd", "12:3", " 12:30", "12:30:00", "-1:30"}
	for _, v := range invalid {
		require.Falsef(t, ValidateTime(v), "expected %q to be invalid", v)
	}
}

func TestParseInterval(t *testing.T) {
	n, err := ParseInterval(" 30 ")
	require.NoError(t, err)
	require.Equal(t, 30, n)

	for _, raw := range []string{"", "0", "-5", "abc", "1.5"} {
		_, err := ParseInterval(raw)
		require.ErrorIsf(t, err, ErrInvalidInterval, "input %q", raw)
	}
}

func TestLoadMissingDefaultsIsFatal(t *testing.T) {
	store, _ := newTestStore(t, "")

	_, err := store.Load()
	require.ErrorIs(t, err, ErrMissingDefaults)

	var missing *MissingDefaultsError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, store.Paths().Defaults, missing.Path)
}

func TestLoadWithoutUserFileYieldsDefaults(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, defaultsDoc(save))

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 60, cfg.IntervalSeconds)
	require.Equal(t, save, cfg.SavePath)
	require.Equal(t, "14:00", cfg.DailyTime)
	require.Equal(t, cfg, store.Current())
}

func TestLoadMergesPartialUserOverride(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, defaultsDoc(save))
	writeFile(t, store.Paths().User, "specific_time: \"08:15\"\n")

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 60, cfg.IntervalSeconds)
	require.Equal(t, save, cfg.SavePath)
	require.Equal(t, "08:15", cfg.DailyTime)
}

func TestLoadFallsBackOnInvalidDailyTime(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, "interval: 10\nsave_path: "+save+"\nspecific_time: \"25:99\"\n")

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, FallbackDailyTime, cfg.DailyTime)
	require.Equal(t, 10, cfg.IntervalSeconds)
}

func TestLoadFillsKeysMissingFromDefaults(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, "save_path: "+save+"\ninterval: -3\n")

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, DefaultIntervalSeconds, cfg.IntervalSeconds)
	require.Equal(t, FallbackDailyTime, cfg.DailyTime)
	require.Equal(t, BackendDisplay, cfg.CaptureBackend)
}

func TestLoadIgnoresMalformedUserFile(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, defaultsDoc(save))
	writeFile(t, store.Paths().User, "interval: [not, a, number\n")

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 60, cfg.IntervalSeconds)
}

func TestLoadRejectsMalformedDefaults(t *testing.T) {
	store, _ := newTestStore(t, "interval: {\n")

	_, err := store.Load()
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMissingDefaults)
}

func TestLoadCreatesSavePath(t *testing.T) {
	save := filepath.Join(t.TempDir(), "nested", "shots")
	store, _ := newTestStore(t, defaultsDoc(save))

	_, err := os.Stat(save)
	require.True(t, os.IsNotExist(err))

	_, err = store.Load()
	require.NoError(t, err)

	info, err := os.Stat(save)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, defaultsDoc(save))
	_, err := store.Load()
	require.NoError(t, err)

	other := filepath.Join(t.TempDir(), "elsewhere")
	next := store.Current()
	next.IntervalSeconds = 45
	next.SavePath = other
	next.DailyTime = "07:05"
	require.NoError(t, store.Save(next))

	reloaded, err := NewStore(store.Paths(), nil).Load()
	require.NoError(t, err)
	require.Equal(t, next, reloaded)
}

func TestSetIntervalPersistsAcrossRestart(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, defaultsDoc(save))
	_, err := store.Load()
	require.NoError(t, err)

	require.NoError(t, store.SetInterval(30))
	require.Equal(t, 30, store.Current().IntervalSeconds)

	restarted, err := NewStore(store.Paths(), nil).Load()
	require.NoError(t, err)
	require.Equal(t, 30, restarted.IntervalSeconds)
	require.Equal(t, "14:00", restarted.DailyTime)
}

func TestSetIntervalRejectsNonPositive(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, defaultsDoc(save))
	_, err := store.Load()
	require.NoError(t, err)

	err = store.SetInterval(0)
	require.ErrorIs(t, err, ErrInvalidInterval)
	require.Equal(t, 60, store.Current().IntervalSeconds)

	_, err = os.Stat(store.Paths().User)
	require.True(t, os.IsNotExist(err), "rejected edits must not write the user file")
}

func TestSetDailyTimeRejectsInvalidAndKeepsPrior(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, defaultsDoc(save))
	_, err := store.Load()
	require.NoError(t, err)

	err = store.SetDailyTime("25:99")
	require.ErrorIs(t, err, ErrInvalidTimeFormat)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "specific_time", verr.Field)
	require.Equal(t, "14:00", store.Current().DailyTime)
}

func TestSetDailyTimeCanonicalizes(t *testing.T) {
	save := filepath.Join(t.TempDir(), "shots")
	store, _ := newTestStore(t, defaultsDoc(save))
	_, err := store.Load()
	require.NoError(t, err)

	require.NoError(t, store.SetDailyTime("9:05"))
	require.Equal(t, "09:05", store.Current().DailyTime)
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.Equal(t, filepath.Join(home, "pics"), ExpandPath("~/pics"))
	require.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

func TestWriteDefaultsRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", DefaultFileName)
	require.NoError(t, WriteDefaults(path, false))
	require.Error(t, WriteDefaults(path, false))
	require.NoError(t, WriteDefaults(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultTemplate(), data)
}

func TestBundledTemplateLoads(t *testing.T) {
	dir := t.TempDir()
	paths := PathsIn(dir)
	require.NoError(t, WriteDefaults(paths.Defaults, false))

	t.Chdir(dir)

	cfg, err := NewStore(paths, nil).Load()
	require.NoError(t, err)
	require.Equal(t, Settings{
		IntervalSeconds: 60,
		SavePath:        "screenshots",
		DailyTime:       "14:00",
		LogLevel:        "info",
		LogFormat:       "console",
		CaptureBackend:  BackendDisplay,
	}, cfg)
}

func TestWatcherReportsUserFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, UserFileName)

	var calls atomic.Int32
	w, err := NewWatcher(path, 20*time.Millisecond, nil, func() { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	t.Cleanup(func() { _ = w.Close() })

	writeFile(t, filepath.Join(dir, "unrelated.yaml"), "x: 1\n")
	writeFile(t, path, "interval: 5\n")

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
