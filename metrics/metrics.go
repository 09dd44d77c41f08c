// Package metrics provides Prometheus metrics for the treatment plan API.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain metrics:
//   - treatment_plans_total: Counter of computed plans
//   - treatment_plan_likely_diseases: Histogram of likely diseases per plan
//   - reference_entities: Gauge of loaded reference entities by kind
//   - reference_reload_total: Counter of reference reloads by result
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen in last ~5 minutes)",
		},
	)

	TreatmentPlansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "treatment_plans_total",
			Help: "Total treatment plans computed",
		},
	)

	LikelyDiseasesPerPlan = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treatment_plan_likely_diseases",
			Help:    "Number of likely diseases found per treatment plan",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)

	ReferenceEntities = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reference_entities",
			Help: "Loaded reference entities by kind",
		},
		[]string{"kind"},
	)

	ReferenceReloadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reference_reload_total",
			Help: "Reference data reloads by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(TreatmentPlansTotal)
	prometheus.MustRegister(LikelyDiseasesPerPlan)
	prometheus.MustRegister(ReferenceEntities)
	prometheus.MustRegister(ReferenceReloadTotal)
}

// RecordReferenceSet publishes the entity counts of a freshly loaded set
func RecordReferenceSet(diseases, clinics, medications int) {
	ReferenceEntities.WithLabelValues("diseases").Set(float64(diseases))
	ReferenceEntities.WithLabelValues("clinics").Set(float64(clinics))
	ReferenceEntities.WithLabelValues("medications").Set(float64(medications))
}

// RecordPlan counts a computed plan and how many diseases it covered
func RecordPlan(likelyDiseases int) {
	TreatmentPlansTotal.Inc()
	LikelyDiseasesPerPlan.Observe(float64(likelyDiseases))
}
