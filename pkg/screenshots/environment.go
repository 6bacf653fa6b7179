package screenshots

import (
	"github.com/offlinefirst/screenshotter/pkg/config"
	"github.com/offlinefirst/screenshotter/pkg/permissions"
)

// Environment describes screenshot capture availability.
type Environment struct {
	Provider   string
	Available  bool
	Displays   int
	Permission string
	Message    string
	Guidance   string
}

// DetectEnvironment reports backend support and permissions for backend.
func DetectEnvironment(backend string) Environment {
	if backend == config.BackendSynthetic {
		return Environment{
			Provider:   config.BackendSynthetic,
			Available:  true,
			Permission: "not_applicable",
			Message:    "synthetic gradient frames",
		}
	}

	screenRecording := probeScreen()
	env := Environment{
		Provider:   config.BackendDisplay,
		Permission: screenRecording.StatusString(),
		Message:    screenRecording.Message,
		Guidance:   screenRecording.Guidance,
	}
	if !screenRecording.Usable() {
		return env
	}

	env.Displays = numActiveDisplays()
	env.Available = env.Displays > 0
	if !env.Available {
		env.Message = ErrNoDisplay.Error()
		if env.Guidance == "" {
			env.Guidance = "set capture_backend: synthetic on hosts without a display"
		}
	}
	return env
}
