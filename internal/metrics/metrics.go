package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for plan activity. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	mutations       *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
	persistFailures *prometheus.CounterVec
	imports         *prometheus.CounterVec
	reportExports   *prometheus.CounterVec
}

// MustNewMetrics registers the collectors with reg, reusing collectors that
// are already registered under the same names.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "successplan",
		Name:      "mutations_total",
		Help:      "Mutations requested against the plan, by operation and outcome.",
	}, []string{"op", "outcome"})
	persistDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "successplan",
		Subsystem: "store",
		Name:      "save_duration_seconds",
		Help:      "Time spent writing the plan document.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"driver"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "successplan",
		Subsystem: "store",
		Name:      "save_failures_total",
		Help:      "Plan document writes that failed.",
	}, []string{"driver"})
	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "successplan",
		Name:      "imports_total",
		Help:      "Import attempts by result.",
	}, []string{"result"})
	reportExports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "successplan",
		Name:      "report_exports_total",
		Help:      "Reports rendered, by preset.",
	}, []string{"preset"})

	counters := map[string]**prometheus.CounterVec{}
	collectors := []prometheus.Collector{mutations, persistDuration, persistFailures, imports, reportExports}
	for _, c := range []**prometheus.CounterVec{&mutations, &persistFailures, &imports, &reportExports} {
		counters[desc(*c)] = c
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			switch existing := already.ExistingCollector.(type) {
			case *prometheus.HistogramVec:
				persistDuration = existing
			case *prometheus.CounterVec:
				if target, ok := counters[desc(collector)]; ok {
					*target = existing
				}
			}
		}
	}
	return &Metrics{
		mutations:       mutations,
		persistDuration: persistDuration,
		persistFailures: persistFailures,
		imports:         imports,
		reportExports:   reportExports,
	}
}

func desc(c prometheus.Collector) string {
	ch := make(chan *prometheus.Desc, 1)
	c.Describe(ch)
	return (<-ch).String()
}

// Mutation records a mutation outcome: applied, noop, rejected or failed.
func (m *Metrics) Mutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

// Save records one document write.
func (m *Metrics) Save(driver string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.persistDuration.WithLabelValues(driver).Observe(d.Seconds())
	if err != nil {
		m.persistFailures.WithLabelValues(driver).Inc()
	}
}

func (m *Metrics) Import(result string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(result).Inc()
}

func (m *Metrics) ReportExport(preset string) {
	if m == nil {
		return
	}
	m.reportExports.WithLabelValues(preset).Inc()
}
