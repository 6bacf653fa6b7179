package screenshots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/offlinefirst/screenshotter/pkg/config"
)

const (
	// FilePrefix and FileExt bracket every screenshot name.
	FilePrefix = "screenshot_"
	FileExt    = ".png"
	// FileTimeLayout formats the local capture time inside file names.
	FileTimeLayout = "2006-01-02_15-04-05"

	maxNameAttempts = 100
)

// SinkOptions configure a Sink.
type SinkOptions struct {
	Provider CaptureProvider
	Clock    clockwork.Clock
	Settings func() config.Settings
	Logger   *slog.Logger
}

// Sink writes one PNG per capture into the configured save path.
type Sink struct {
	provider CaptureProvider
	clock    clockwork.Clock
	settings func() config.Settings
	logger   *slog.Logger
}

// Result describes where a capture was written.
type Result struct {
	Path         string
	MetadataPath string
	Timestamp    time.Time
	Backend      string
}

// NewSink validates options. When Provider is nil the backend named in the
// current settings is used.
func NewSink(opts SinkOptions) (*Sink, error) {
	if opts.Settings == nil {
		return nil, errors.New("settings source must not be nil")
	}
	provider := opts.Provider
	if provider == nil {
		var err error
		provider, err = NewProvider(opts.Settings().CaptureBackend)
		if err != nil {
			return nil, err
		}
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{provider: provider, clock: clock, settings: opts.Settings, logger: logger}, nil
}

// Capture grabs one frame and writes it to save_path. Safe for concurrent use.
func (s *Sink) Capture(ctx context.Context) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &CaptureError{Op: "capture", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	settings := s.settings()
	dir := settings.ResolvedSavePath()
	if err := config.EnsureDir(dir); err != nil {
		return Result{}, &CaptureError{Op: "ensure save path", Path: dir, Err: err}
	}

	frame, err := s.provider.Grab(ctx)
	if err != nil {
		return Result{}, &CaptureError{Op: "grab frame", Err: err}
	}
	if len(frame.PNG) == 0 {
		return Result{}, &CaptureError{Op: "grab frame", Err: ErrEmptyFrame}
	}

	timestamp := s.clock.Now().Local()
	file, err := createExclusive(dir, timestamp)
	if err != nil {
		return Result{}, &CaptureError{Op: "create file", Path: dir, Err: err}
	}
	path := file.Name()
	if _, err := file.Write(frame.PNG); err != nil {
		file.Close()
		os.Remove(path)
		return Result{}, &CaptureError{Op: "write", Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return Result{}, &CaptureError{Op: "close", Path: path, Err: err}
	}

	res = Result{Path: path, Timestamp: timestamp, Backend: frame.Metadata.Backend}

	if settings.WriteMetadata {
		frame.Metadata.CapturedAt = timestamp.UTC()
		frame.Metadata.ImagePath = filepath.Base(path)
		metadataPath := strings.TrimSuffix(path, FileExt) + ".json"
		data, err := json.MarshalIndent(frame.Metadata, "", "  ")
		if err != nil {
			return res, &CaptureError{Op: "encode metadata", Path: metadataPath, Err: err}
		}
		if err := os.WriteFile(metadataPath, data, 0o644); err != nil {
			return res, &CaptureError{Op: "write metadata", Path: metadataPath, Err: err}
		}
		res.MetadataPath = metadataPath
	}

	s.logger.Debug("screenshot written", "path", path, "backend", res.Backend, "bytes", len(frame.PNG))
	return res, nil
}

// FileName returns the base name used for a capture taken at ts.
func FileName(ts time.Time) string {
	return FilePrefix + ts.Format(FileTimeLayout) + FileExt
}

func createExclusive(dir string, ts time.Time) (*os.File, error) {
	stem := FilePrefix + ts.Format(FileTimeLayout)
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := stem + FileExt
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d%s", stem, attempt, FileExt)
		}
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, fmt.Errorf("no free file name for %s after %d attempts", stem, maxNameAttempts)
}
