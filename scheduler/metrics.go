package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes engine metrics through a prometheus registerer. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	schedulerLag *prometheus.HistogramVec
	activeJobs   prometheus.Gauge
}

// NewMetrics creates and registers the engine metric set.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cadence",
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Completed job runs by job and status.",
		}, []string{"job", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cadence",
			Subsystem: "scheduler",
			Name:      "run_duration_seconds",
			Help:      "Job body execution time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		schedulerLag: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cadence",
			Subsystem: "scheduler",
			Name:      "lag_seconds",
			Help:      "Delay between the computed fire time and the observed wake time.",
			Buckets:   []float64{.001, .01, .1, .5, 1, 5, 30, 60},
		}, []string{"job"}),
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cadence",
			Subsystem: "scheduler",
			Name:      "active_jobs",
			Help:      "Jobs with a live run loop.",
		}),
	}

	for _, c := range []prometheus.Collector{m.runsTotal, m.runDuration, m.schedulerLag, m.activeJobs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordRun(job string, took time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(job, status).Inc()
	m.runDuration.WithLabelValues(job).Observe(took.Seconds())
}

func (m *Metrics) recordLag(job string, lag time.Duration) {
	if m == nil {
		return
	}
	if lag < 0 {
		lag = 0
	}
	m.schedulerLag.WithLabelValues(job).Observe(lag.Seconds())
}

func (m *Metrics) jobActivated() {
	if m == nil {
		return
	}
	m.activeJobs.Inc()
}

func (m *Metrics) jobStopped() {
	if m == nil {
		return
	}
	m.activeJobs.Dec()
}
