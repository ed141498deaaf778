package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Generation outcomes used as the result label
const (
	ResultOK         = "ok"
	ResultInfeasible = "infeasible"
	ResultInvalid    = "invalid"
)

// Recorder receives scheduling outcomes from the HTTP layer
type Recorder interface {
	// ObserveGeneration records one generation attempt, its duration and the number of days produced
	ObserveGeneration(result string, elapsed time.Duration, days int)
	// AddViolations counts output violations found when checking a schedule
	AddViolations(n int)
}

// Nop discards everything
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) ObserveGeneration(string, time.Duration, int) {}
func (Nop) AddViolations(int)                            {}

// Prometheus is a Recorder backed by Prometheus collectors
type Prometheus struct {
	generations *prometheus.CounterVec
	duration    prometheus.Histogram
	days        prometheus.Counter
	violations  prometheus.Counter
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates and registers the collectors on reg.
// A nil reg means prometheus.DefaultRegisterer; an empty namespace means "crew".
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "crew"
	}

	p := &Prometheus{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "generations_total",
			Help:      "Schedule generation attempts by result (ok, infeasible, invalid).",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating a schedule in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms .. ~1s
		}),
		days: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "days_scheduled_total",
			Help:      "Dates assigned by successful generations.",
		}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "output_violations_total",
			Help:      "Violations reported when checking generated or edited schedules.",
		}),
	}
	reg.MustRegister(p.generations, p.duration, p.days, p.violations)

	// pre-create label values so they export as zero
	for _, r := range []string{ResultOK, ResultInfeasible, ResultInvalid} {
		p.generations.WithLabelValues(r)
	}
	return p
}

func (p *Prometheus) ObserveGeneration(result string, elapsed time.Duration, days int) {
	p.generations.WithLabelValues(result).Inc()
	if result == ResultInvalid {
		return
	}
	p.duration.Observe(elapsed.Seconds())
	if days > 0 {
		p.days.Add(float64(days))
	}
}

func (p *Prometheus) AddViolations(n int) {
	if n > 0 {
		p.violations.Add(float64(n))
	}
}
