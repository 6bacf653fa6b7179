package screenshots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/offlinefirst/screenshotter/pkg/config"
)

// CaptureProvider produces screenshot frames for the sink.
type CaptureProvider interface {
	Grab(context.Context) (FrameCapture, error)
}

// FrameCapture bundles the encoded PNG bytes with metadata.
type FrameCapture struct {
	PNG      []byte
	Metadata Metadata
}

// Metadata captures details about a screenshot frame written to disk.
type Metadata struct {
	CapturedAt  time.Time `json:"captured_at"`
	Backend     string    `json:"backend"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	PixelFormat string    `json:"pixel_format,omitempty"`
	Display     int       `json:"display"`
	ImagePath   string    `json:"image_path"`
	Notes       []string  `json:"notes,omitempty"`
}

// NewProvider returns the provider registered for backend.
func NewProvider(backend string) (CaptureProvider, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", config.BackendDisplay:
		return displayProvider{display: 0}, nil
	case config.BackendSynthetic:
		return newSyntheticProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported capture backend %q", backend)
	}
}
