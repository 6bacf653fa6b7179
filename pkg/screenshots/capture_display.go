package screenshots

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/offlinefirst/screenshotter/pkg/permissions"
)

// Indirections over kbinani/screenshot so tests can run without a display server.
var (
	numActiveDisplays = screenshot.NumActiveDisplays
	displayBounds     = screenshot.GetDisplayBounds
	captureRect       = func(r image.Rectangle) (image.Image, error) { return screenshot.CaptureRect(r) }
	probeScreen       = func() permissions.ProbeResult { return permissions.ProbeScreenRecording(nil) }
)

type displayProvider struct {
	display int
}

func (p displayProvider) Grab(ctx context.Context) (FrameCapture, error) {
	if err := ctx.Err(); err != nil {
		return FrameCapture{}, err
	}
	if numActiveDisplays() <= p.display {
		return FrameCapture{}, ErrNoDisplay
	}
	bounds := displayBounds(p.display)
	img, err := captureRect(bounds)
	if err != nil {
		if probeScreen().Status == permissions.StatusDenied {
			return FrameCapture{}, fmt.Errorf("%w: %v", ErrPermissionRequired, err)
		}
		return FrameCapture{}, fmt.Errorf("capture display %d: %w", p.display, err)
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return FrameCapture{}, fmt.Errorf("encode png: %w", err)
	}
	return FrameCapture{
		PNG: buf.Bytes(),
		Metadata: Metadata{
			CapturedAt:  time.Now(),
			Backend:     "display",
			Width:       bounds.Dx(),
			Height:      bounds.Dy(),
			PixelFormat: "RGBA",
			Display:     p.display,
		},
	}, nil
}
