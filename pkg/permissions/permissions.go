package permissions

import (
	"os"
	"runtime"
	"strings"
)

// Status enumerates coarse permission results for screen capture.
type Status string

const (
	// StatusUnknown indicates no explicit signal about permission state.
	StatusUnknown Status = "unknown"
	// StatusGranted signals that capture is expected to work.
	StatusGranted Status = "granted"
	// StatusDenied indicates the user has explicitly denied access.
	StatusDenied Status = "denied"
	// StatusPromptRequired means the platform will prompt at runtime.
	StatusPromptRequired Status = "prompt"
	// StatusUnavailable reports that the capability is not supported.
	StatusUnavailable Status = "unavailable"
)

// ScreenRecordingEnv overrides the probe, e.g. SCREENSHOTTER_SCREEN_RECORDING=denied.
const ScreenRecordingEnv = "SCREENSHOTTER_SCREEN_RECORDING"

// ProbeResult represents the coarse state for a permission surface.
type ProbeResult struct {
	Status   Status
	Message  string
	Guidance string
}

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// goos is swapped in tests.
var goos = runtime.GOOS

// ProbeScreenRecording inspects the session for screen capture support.
func ProbeScreenRecording(lookup LookupEnvFunc) ProbeResult {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if value, ok := lookup(ScreenRecordingEnv); ok {
		return interpretPermissionFlag("screen recording", value)
	}

	switch goos {
	case "darwin":
		return ProbeResult{
			Status:   StatusPromptRequired,
			Message:  "macOS asks for screen recording access on first capture",
			Guidance: "allow the terminal or app under System Settings > Privacy & Security > Screen Recording",
		}
	case "windows":
		return ProbeResult{Status: StatusGranted, Message: "desktop capture available"}
	case "linux", "freebsd", "openbsd", "netbsd":
		return probeUnixSession(lookup)
	default:
		return ProbeResult{Status: StatusUnavailable, Message: "screen capture unsupported on " + goos}
	}
}

func probeUnixSession(lookup LookupEnvFunc) ProbeResult {
	display, hasDisplay := lookup("DISPLAY")
	wayland, hasWayland := lookup("WAYLAND_DISPLAY")
	switch {
	case hasDisplay && strings.TrimSpace(display) != "":
		return ProbeResult{Status: StatusGranted, Message: "X11 display " + display}
	case hasWayland && strings.TrimSpace(wayland) != "":
		return ProbeResult{
			Status:   StatusUnavailable,
			Message:  "Wayland session without XWayland",
			Guidance: "enable XWayland (DISPLAY must be set) or use capture_backend: synthetic",
		}
	default:
		return ProbeResult{
			Status:   StatusUnavailable,
			Message:  "no graphical session detected",
			Guidance: "run inside a desktop session or use capture_backend: synthetic",
		}
	}
}

func interpretPermissionFlag(name, value string) ProbeResult {
	normalised := strings.ToLower(strings.TrimSpace(value))
	switch normalised {
	case "granted", "allow", "allowed", "yes", "true":
		return ProbeResult{Status: StatusGranted, Message: name + " permission pre-authorised via env override"}
	case "denied", "no", "false", "blocked":
		return ProbeResult{Status: StatusDenied, Message: name + " permission denied via env override", Guidance: "unset " + ScreenRecordingEnv + " or grant access in system settings"}
	case "prompt", "ask":
		return ProbeResult{Status: StatusPromptRequired, Message: name + " permission will prompt at runtime"}
	case "unavailable", "unsupported":
		return ProbeResult{Status: StatusUnavailable, Message: name + " unavailable on this platform"}
	default:
		return ProbeResult{Status: StatusUnknown, Message: name + " permission state unknown"}
	}
}

// StatusString returns the string representation used in diagnostics.
func (p ProbeResult) StatusString() string {
	if p.Status == "" {
		return string(StatusUnknown)
	}
	return string(p.Status)
}

// Usable reports whether capture should be attempted.
func (p ProbeResult) Usable() bool {
	return p.Status != StatusDenied && p.Status != StatusUnavailable
}
