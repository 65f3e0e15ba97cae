package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ingestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmm_engine",
			Name:      "ingest_total",
			Help:      "Total ingested records, partitioned by kind.",
		},
		[]string{"kind"},
	)

	detectionPassSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pmm_engine",
			Name:      "detection_pass_seconds",
			Help:      "Signal detection pass latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	signalsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmm_engine",
			Name:      "signals_detected_total",
			Help:      "Total detected signals, partitioned by type and severity.",
		},
		[]string{"type", "severity"},
	)

	alertsTriggeredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pmm_engine",
			Name:      "alerts_triggered_total",
			Help:      "Total threshold alerts, partitioned by severity.",
		},
		[]string{"severity"},
	)

	healthScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pmm_engine",
			Name:      "health_score",
			Help:      "Most recently computed health score (0-100).",
		},
	)

	httpRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pmm_engine",
			Name:      "http_request_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Register attaches the engine collectors to the supplied Prometheus
// registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		ingestTotal,
		detectionPassSeconds,
		signalsDetectedTotal,
		alertsTriggeredTotal,
		healthScore,
		httpRequestSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveIngest counts one ingested record of the given kind.
func ObserveIngest(kind string) {
	ingestTotal.WithLabelValues(kind).Inc()
}

// ObserveDetectionPass records the duration of one detection pass.
func ObserveDetectionPass(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	detectionPassSeconds.Observe(duration.Seconds())
}

// ObserveSignal counts one detected signal.
func ObserveSignal(signalType, severity string) {
	signalsDetectedTotal.WithLabelValues(signalType, severity).Inc()
}

// ObserveAlert counts one triggered alert.
func ObserveAlert(severity string) {
	alertsTriggeredTotal.WithLabelValues(severity).Inc()
}

// SetHealthScore publishes the latest computed health score.
func SetHealthScore(score int) {
	healthScore.Set(float64(score))
}

// ObserveHTTPRequest records one handled HTTP request.
func ObserveHTTPRequest(method, route string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	httpRequestSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
