package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName = "default.yaml"
	UserFileName    = "user.yaml"

	// FallbackDailyTime replaces an unparsable specific_time found while loading.
	FallbackDailyTime = "14:00"

	DefaultIntervalSeconds = 60
	DefaultSavePath        = "screenshots"

	BackendDisplay   = "display"
	BackendSynthetic = "synthetic"

	dailyTimeLayout = "15:04"
)

// Settings captures the user-adjustable knobs for screenshot capture.
type Settings struct {
	IntervalSeconds int    `yaml:"interval"`
	SavePath        string `yaml:"save_path"`
	DailyTime       string `yaml:"specific_time"`

	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	CaptureBackend string `yaml:"capture_backend"`
	WriteMetadata  bool   `yaml:"write_metadata"`
}

// Default returns the built-in values used for keys the default file leaves out.
func Default() Settings {
	return Settings{
		IntervalSeconds: DefaultIntervalSeconds,
		SavePath:        DefaultSavePath,
		DailyTime:       FallbackDailyTime,
		LogLevel:        "info",
		LogFormat:       "console",
		CaptureBackend:  BackendDisplay,
	}
}

// Interval converts IntervalSeconds into a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// ResolvedSavePath expands ~ and environment references in SavePath.
func (s Settings) ResolvedSavePath() string {
	return ExpandPath(s.SavePath)
}

// overlay mirrors Settings with optional fields so absent keys leave lower layers untouched.
type overlay struct {
	IntervalSeconds *int    `yaml:"interval"`
	SavePath        *string `yaml:"save_path"`
	DailyTime       *string `yaml:"specific_time"`
	LogLevel        *string `yaml:"log_level"`
	LogFormat       *string `yaml:"log_format"`
	CaptureBackend  *string `yaml:"capture_backend"`
	WriteMetadata   *bool   `yaml:"write_metadata"`
}

func (o overlay) apply(s *Settings) {
	if o.IntervalSeconds != nil {
		s.IntervalSeconds = *o.IntervalSeconds
	}
	if o.SavePath != nil {
		s.SavePath = *o.SavePath
	}
	if o.DailyTime != nil {
		s.DailyTime = *o.DailyTime
	}
	if o.LogLevel != nil {
		s.LogLevel = *o.LogLevel
	}
	if o.LogFormat != nil {
		s.LogFormat = *o.LogFormat
	}
	if o.CaptureBackend != nil {
		s.CaptureBackend = *o.CaptureBackend
	}
	if o.WriteMetadata != nil {
		s.WriteMetadata = *o.WriteMetadata
	}
}

// persisted is the subset of Settings written back to the user file.
type persisted struct {
	IntervalSeconds int    `yaml:"interval"`
	SavePath        string `yaml:"save_path"`
	DailyTime       string `yaml:"specific_time"`
}

func decodeFile(path string) (overlay, error) {
	var ov overlay
	data, err := os.ReadFile(path)
	if err != nil {
		return ov, err
	}
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return ov, fmt.Errorf("parse %s: %w", path, err)
	}
	return ov, nil
}

// Paths locates the default and user configuration files.
type Paths struct {
	Defaults string
	User     string
}

// PathsIn returns the conventional file locations inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Defaults: filepath.Join(dir, DefaultFileName),
		User:     filepath.Join(dir, UserFileName),
	}
}

// DefaultDir reports the per-user configuration directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "screenshotter"), nil
}

// Store layers user overrides over the default file and persists edits.
// Readers always observe the most recently committed Settings.
type Store struct {
	paths  Paths
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.RWMutex
	current Settings
}

// NewStore constructs a store; call Load before reading settings.
func NewStore(paths Paths, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{paths: paths, logger: logger, current: Default()}
}

// Paths reports the files backing the store.
func (s *Store) Paths() Paths {
	return s.paths
}

// Current returns a snapshot of the committed settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load reads the required default file, overlays the optional user file key by key,
// repairs invalid values and makes sure the save path exists.
func (s *Store) Load() (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	base, err := decodeFile(s.paths.Defaults)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, &MissingDefaultsError{Path: s.paths.Defaults}
		}
		return Settings{}, fmt.Errorf("read default config: %w", err)
	}

	settings := Default()
	base.apply(&settings)

	user, err := decodeFile(s.paths.User)
	switch {
	case err == nil:
		user.apply(&settings)
	case errors.Is(err, fs.ErrNotExist):
	default:
		s.logger.Warn("ignoring unreadable user config, using defaults", "path", s.paths.User, "error", err)
	}

	s.normalize(&settings)

	if err := EnsureDir(settings.SavePath); err != nil {
		s.logger.Warn("could not create save path", "save_path", settings.SavePath, "error", err)
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()
	return settings, nil
}

// Save writes interval, save_path and specific_time to the user file and commits them.
func (s *Store) Save(next Settings) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.save(next)
}

func (s *Store) save(next Settings) error {
	if next.IntervalSeconds <= 0 {
		return &ValidationError{Field: "interval", Value: strconv.Itoa(next.IntervalSeconds), Err: ErrInvalidInterval}
	}
	if !ValidateTime(next.DailyTime) {
		return &ValidationError{Field: "specific_time", Value: next.DailyTime, Err: ErrInvalidTimeFormat}
	}

	data, err := yaml.Marshal(persisted{
		IntervalSeconds: next.IntervalSeconds,
		SavePath:        next.SavePath,
		DailyTime:       next.DailyTime,
	})
	if err != nil {
		return fmt.Errorf("encode user config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.paths.User), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	if err := os.WriteFile(s.paths.User, data, 0o644); err != nil {
		return fmt.Errorf("write user config: %w", err)
	}

	s.mu.Lock()
	s.current.IntervalSeconds = next.IntervalSeconds
	s.current.SavePath = next.SavePath
	s.current.DailyTime = next.DailyTime
	s.mu.Unlock()
	return nil
}

// SetInterval validates and persists a new capture interval in seconds.
// An invalid value leaves the previous interval in effect.
func (s *Store) SetInterval(seconds int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if seconds <= 0 {
		return &ValidationError{Field: "interval", Value: strconv.Itoa(seconds), Err: ErrInvalidInterval}
	}
	next := s.Current()
	next.IntervalSeconds = seconds
	return s.save(next)
}

// SetDailyTime validates and persists a new daily capture time.
// Unlike Load, an invalid value is rejected and the previous time stays in effect.
func (s *Store) SetDailyTime(value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	hour, minute, err := ParseDailyTime(value)
	if err != nil {
		return err
	}
	next := s.Current()
	next.DailyTime = fmt.Sprintf("%02d:%02d", hour, minute)
	return s.save(next)
}

func (s *Store) normalize(c *Settings) {
	defaults := Default()

	c.SavePath = strings.TrimSpace(c.SavePath)
	if c.SavePath == "" {
		c.SavePath = defaults.SavePath
	}

	if c.IntervalSeconds <= 0 {
		s.logger.Warn("interval must be positive, using default", "interval", c.IntervalSeconds, "default", defaults.IntervalSeconds)
		c.IntervalSeconds = defaults.IntervalSeconds
	}

	c.DailyTime = strings.TrimSpace(c.DailyTime)
	if !ValidateTime(c.DailyTime) {
		s.logger.Warn("invalid specific_time, using fallback", "specific_time", c.DailyTime, "fallback", FallbackDailyTime)
		c.DailyTime = FallbackDailyTime
	}

	if lvl, err := NormalizeLogLevel(c.LogLevel); err != nil {
		s.logger.Warn("unsupported log_level, using default", "log_level", c.LogLevel)
		c.LogLevel = defaults.LogLevel
	} else {
		c.LogLevel = lvl
	}
	if format, err := NormalizeFormat(c.LogFormat); err != nil {
		s.logger.Warn("unsupported log_format, using default", "log_format", c.LogFormat)
		c.LogFormat = defaults.LogFormat
	} else {
		c.LogFormat = format
	}

	switch backend := strings.ToLower(strings.TrimSpace(c.CaptureBackend)); backend {
	case "", BackendDisplay:
		c.CaptureBackend = BackendDisplay
	case BackendSynthetic:
		c.CaptureBackend = BackendSynthetic
	default:
		s.logger.Warn("unsupported capture_backend, using default", "capture_backend", c.CaptureBackend)
		c.CaptureBackend = defaults.CaptureBackend
	}
}

// ValidateTime reports whether value is a 24-hour HH:MM time.
func ValidateTime(value string) bool {
	_, err := time.Parse(dailyTimeLayout, value)
	return err == nil
}

// ParseDailyTime splits a HH:MM value into hour and minute.
func ParseDailyTime(value string) (int, int, error) {
	trimmed := strings.TrimSpace(value)
	t, err := time.Parse(dailyTimeLayout, trimmed)
	if err != nil {
		return 0, 0, &ValidationError{Field: "specific_time", Value: value, Err: ErrInvalidTimeFormat}
	}
	return t.Hour(), t.Minute(), nil
}

// ParseInterval converts raw user input into a positive number of seconds.
func ParseInterval(raw string) (int, error) {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || seconds <= 0 {
		return 0, &ValidationError{Field: "interval", Value: raw, Err: ErrInvalidInterval}
	}
	return seconds, nil
}

// ExpandPath resolves a leading ~ and environment variables.
func ExpandPath(path string) string {
	path = os.ExpandEnv(strings.TrimSpace(path))
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// EnsureDir creates the directory at path (after expansion) when it is missing.
func EnsureDir(path string) error {
	resolved := ExpandPath(path)
	if resolved == "" {
		return errors.New("path must not be empty")
	}
	info, err := os.Stat(resolved)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", resolved)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.MkdirAll(resolved, 0o755)
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console", "text":
		return "console", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}
