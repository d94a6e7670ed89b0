// Package metrics exposes Prometheus instrumentation for crawl passes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ibwatch"

// Recorder holds the pipeline metrics. A nil *Recorder is valid and records
// nothing, so callers never need to guard it.
type Recorder struct {
	registry *prometheus.Registry

	postingsFetched  *prometheus.CounterVec
	postingsDropped  *prometheus.CounterVec
	recordsPersisted *prometheus.CounterVec
	recordsInserted  *prometheus.CounterVec
	companyFailures  *prometheus.CounterVec
	companySkips     *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	lastSuccess      prometheus.Gauge
}

// NewRecorder registers all metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		postingsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_fetched_total",
			Help:      "Postings returned by job boards, by connector.",
		}, []string{"connector"}),
		postingsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_dropped_total",
			Help:      "Postings rejected by the classifier, by stage.",
		}, []string{"stage"}),
		recordsPersisted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_persisted_total",
			Help:      "Classified records upserted, by company.",
		}, []string{"company"}),
		recordsInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_inserted_total",
			Help:      "Records seen for the first time, by company.",
		}, []string{"company"}),
		companyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "company_failures_total",
			Help:      "Companies whose crawl failed, by connector.",
		}, []string{"connector"}),
		companySkips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "company_skips_total",
			Help:      "Companies skipped for configuration gaps, by reason.",
		}, []string{"reason"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a crawl pass.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"outcome"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last pass that finished without error.",
		}),
	}
}

// Registry returns the registry the metrics live on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) PostingsFetched(connector string, n int) {
	if r == nil {
		return
	}
	r.postingsFetched.WithLabelValues(connector).Add(float64(n))
}

func (r *Recorder) PostingDropped(stage string) {
	if r == nil {
		return
	}
	r.postingsDropped.WithLabelValues(stage).Inc()
}

func (r *Recorder) RecordsPersisted(company string, persisted, inserted int) {
	if r == nil {
		return
	}
	r.recordsPersisted.WithLabelValues(company).Add(float64(persisted))
	r.recordsInserted.WithLabelValues(company).Add(float64(inserted))
}

func (r *Recorder) CompanyFailed(connector string) {
	if r == nil {
		return
	}
	r.companyFailures.WithLabelValues(connector).Inc()
}

func (r *Recorder) CompanySkipped(reason string) {
	if r == nil {
		return
	}
	r.companySkips.WithLabelValues(reason).Inc()
}

// RunFinished observes a pass duration and, on success, stamps the last
// success gauge with end.
func (r *Recorder) RunFinished(start, end time.Time, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.runDuration.WithLabelValues(outcome).Observe(end.Sub(start).Seconds())
	if err == nil {
		r.lastSuccess.Set(float64(end.Unix()))
	}
}
