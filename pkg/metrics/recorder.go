// Package metrics records capture outcomes. Components take a Recorder and
// default to NoopRecorder, so wiring Prometheus is opt-in.
package metrics

import "time"

// Outcome labels the result of a capture attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Recorder receives scheduler observations.
type Recorder interface {
	IncCapture(trigger string, outcome Outcome)
	ObserveCaptureDuration(trigger string, d time.Duration)
	SetIntervalRunning(running bool)
	IncDailyReschedule()
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncCapture(string, Outcome)                    {}
func (NoopRecorder) ObserveCaptureDuration(string, time.Duration) {}
func (NoopRecorder) SetIntervalRunning(bool)                       {}
func (NoopRecorder) IncDailyReschedule()                           {}
