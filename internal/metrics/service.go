package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(serviceCallsLatencyMs) }

var serviceCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "interview_service_latency_ms",
		Help:    "Generation service call latency in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
	[]string{"op", "success"},
)

// ObserveServiceCall records one call to the generation service.
// Usage: defer metrics.ObserveServiceCall("create", time.Now(), &err)
func ObserveServiceCall(op string, start time.Time, errp *error) {
	ok := errp == nil || *errp == nil
	serviceCallsLatencyMs.
		WithLabelValues(op, strconv.FormatBool(ok)).
		Observe(float64(time.Since(start).Milliseconds()))
}
