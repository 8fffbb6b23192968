package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(chatTurnsTotal, chatTurnsRejected, pollAttempts) }

var (
	chatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Completed chat turns by outcome (resolved/failed/timed_out/parse_failed).",
		},
		[]string{"outcome"},
	)

	chatTurnsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_rejected_total",
			Help: "Send actions ignored before a turn started, by reason (empty/busy).",
		},
		[]string{"reason"},
	)

	pollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_poll_attempts",
			Help:    "Status fetches needed per turn that reached the polling stage.",
			Buckets: []float64{1, 2, 3, 5, 10, 15, 20, 25, 30},
		},
	)
)

func IncTurn(outcome string) {
	chatTurnsTotal.WithLabelValues(outcome).Inc()
}

func IncRejected(reason string) {
	chatTurnsRejected.WithLabelValues(reason).Inc()
}

func ObservePollAttempts(n int) {
	pollAttempts.Observe(float64(n))
}
