package obvy

import (
	"net/http"
	"time"

	St "github.com/W-Mai/simple-compose/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsInternal holds the playback metrics on a private registry,
// so tests and multiple players never collide on the global one.
type StatsInternal struct {
	Registry *prometheus.Registry

	Dispatched *prometheus.CounterVec // note edges sent, by edge
	Failures   prometheus.Counter     // events whose send failed
	Lateness   prometheus.Histogram   // dispatch delay behind schedule
	Playbacks  *prometheus.CounterVec // finished playbacks, by result
	State      prometheus.Gauge       // current PlayerState
	WWW        *prometheus.CounterVec // HTTP responses, by code and method
}

func NewStatsInternal() *StatsInternal {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &StatsInternal{
		Registry: reg,
		Dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compose",
			Name:      "events_dispatched_total",
			Help:      "Scheduled note events sent to the output.",
		}, []string{"edge"}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "compose",
			Name:      "dispatch_failures_total",
			Help:      "Scheduled note events the output refused.",
		}),
		Lateness: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "compose",
			Name:      "dispatch_lateness_seconds",
			Help:      "How far behind schedule each event was sent.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		Playbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compose",
			Name:      "playbacks_total",
			Help:      "Finished playbacks.",
		}, []string{"result"}),
		State: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "compose",
			Name:      "player_state",
			Help:      "Player state, 0 uninitialized through 5 closed.",
		}),
		WWW: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compose",
			Name:      "http_responses_total",
			Help:      "HTTP responses served.",
		}, []string{"code", "method"}),
	}
}

// EventDispatched counts one sent event for the player observer hook.
func (s *StatsInternal) EventDispatched(ev St.TimedEvent, late time.Duration, err error) {
	if err != nil {
		s.Failures.Inc()
		return
	}
	edge := "off"
	if ev.On {
		edge = "on"
	}
	s.Dispatched.WithLabelValues(edge).Inc()
	s.Lateness.Observe(late.Seconds())
}

func (s *StatsInternal) StateChanged(state St.PlayerState) {
	s.State.Set(float64(state))
}

// RecPlayback counts a finished playback as ok, failed or cancelled.
func (s *StatsInternal) RecPlayback(result string) {
	s.Playbacks.WithLabelValues(result).Inc()
}

func (s *StatsInternal) RecWWW(code, method string) {
	s.WWW.WithLabelValues(code, method).Inc()
}

// Handler serves the private registry for /metrics.
func (s *StatsInternal) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{Registry: s.Registry})
}
