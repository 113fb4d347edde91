package hsm

import "github.com/prometheus/client_golang/prometheus"

// PrometheusRecorder is the stock MetricsRecorder implementation,
// exposing dispatch counts, not-found counts, fault counts, and queue
// depth as standard Prometheus collectors.
type PrometheusRecorder struct {
	firesTotal    prometheus.Counter
	notFoundTotal prometheus.Counter
	faultsTotal   prometheus.Counter
	queueDepth    prometheus.Gauge
}

// NewPrometheusRecorder builds a PrometheusRecorder and registers its
// collectors against reg under the given namespace.
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) *PrometheusRecorder {
	r := &PrometheusRecorder{
		firesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hsm_fires_total",
			Help:      "Total number of dispatches that found a matching transition.",
		}),
		notFoundTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hsm_not_found_total",
			Help:      "Total number of dispatches with no matching transition.",
		}),
		faultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hsm_faults_total",
			Help:      "Total number of dispatches that latched a fault.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hsm_queue_depth",
			Help:      "Depth of the reentrant dispatch queue at last observation.",
		}),
	}
	reg.MustRegister(r.firesTotal, r.notFoundTotal, r.faultsTotal, r.queueDepth)
	return r
}

// ObserveFire implements MetricsRecorder.
func (r *PrometheusRecorder) ObserveFire(found bool) {
	if found {
		r.firesTotal.Inc()
		return
	}
	r.notFoundTotal.Inc()
}

// ObserveFault implements MetricsRecorder.
func (r *PrometheusRecorder) ObserveFault() { r.faultsTotal.Inc() }

// ObserveQueueDepth implements MetricsRecorder.
func (r *PrometheusRecorder) ObserveQueueDepth(depth int) { r.queueDepth.Set(float64(depth)) }
