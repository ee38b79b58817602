package pagetests

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pagecheck/page-contract-tests/rubric"
)

// Metrics counts cases and steps in a registry of its own, which can be written out for a
// node_exporter textfile collector at the end of a run. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	cases        *prometheus.CounterVec
	steps        *prometheus.CounterVec
	caseDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecheck_cases_total",
				Help: "Rubric runs by outcome",
			},
			[]string{"rubric", "outcome"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecheck_steps_total",
				Help: "Evaluated rubric steps by verdict",
			},
			[]string{"rubric", "verdict"},
		),
		caseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pagecheck_case_duration_seconds",
				Help:    "Time taken by a rubric run, including browser startup",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"rubric"},
		),
	}
	m.registry.MustRegister(m.cases, m.steps, m.caseDuration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeCase(name, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.cases.WithLabelValues(name, outcome).Inc()
	m.caseDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (m *Metrics) stepObserver(name string) rubric.Observer {
	return func(o rubric.StepOutcome) {
		if m == nil {
			return
		}
		verdict := "correct"
		switch {
		case o.Err != nil:
			verdict = "error"
		case !o.Verdict.IsCorrect():
			verdict = "wrong"
		}
		m.steps.WithLabelValues(name, verdict).Inc()
	}
}
