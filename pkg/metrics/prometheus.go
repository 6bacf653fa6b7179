package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "screenshotter"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	captures         *prom.CounterVec
	captureDuration  *prom.HistogramVec
	intervalRunning  prom.Gauge
	dailyReschedules prom.Counter
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	pr := &PrometheusRecorder{
		captures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "captures_total",
			Help:      "Capture attempts by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		captureDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "capture_duration_seconds",
			Help:      "Time spent grabbing and writing one screenshot",
			Buckets:   prom.DefBuckets,
		}, []string{"trigger"}),
		intervalRunning: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "interval_running",
			Help:      "1 while automatic interval capture is running",
		}),
		dailyReschedules: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "daily_reschedules_total",
			Help:      "Number of times the daily capture job was registered or replaced",
		}),
	}
	if reg != nil {
		reg.MustRegister(pr.captures, pr.captureDuration, pr.intervalRunning, pr.dailyReschedules)
	}
	return pr
}

func (p *PrometheusRecorder) IncCapture(trigger string, outcome Outcome) {
	p.captures.WithLabelValues(trigger, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveCaptureDuration(trigger string, d time.Duration) {
	p.captureDuration.WithLabelValues(trigger).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetIntervalRunning(running bool) {
	if running {
		p.intervalRunning.Set(1)
		return
	}
	p.intervalRunning.Set(0)
}

func (p *PrometheusRecorder) IncDailyReschedule() {
	p.dailyReschedules.Inc()
}

// HTTPHandler serves the metrics registered on reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
