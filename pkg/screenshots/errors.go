package screenshots

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDisplay reports that no active display could be captured.
	ErrNoDisplay = errors.New("no active display to capture")
	// ErrPermissionRequired indicates the session refuses screen capture.
	ErrPermissionRequired = errors.New("screen recording permission required for screenshot capture")
	// ErrEmptyFrame is returned when a provider yields no image data.
	ErrEmptyFrame = errors.New("capture provider returned empty PNG data")
)

// CaptureError wraps a failed capture with the step that failed.
type CaptureError struct {
	Op   string
	Path string
	Err  error
}

func (e *CaptureError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
