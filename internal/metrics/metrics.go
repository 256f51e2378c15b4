// Package metrics declares the process-wide Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SourceEngine = "engine"
	SourceCache  = "cache"

	StatusOK     = "ok"
	StatusFailed = "failed"
)

var (
	reviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chess_review_reviews_total",
		Help: "Game reviews by outcome",
	}, []string{"status"})

	evaluatorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chess_review_evaluator_requests_total",
		Help: "Position evaluations by the source that answered",
	}, []string{"source"})

	evaluatorSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chess_review_evaluator_seconds",
		Help:    "Engine search latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
	})

	classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chess_review_classifications_total",
		Help: "Classified moves by class",
	}, []string{"class"})
)

func ReviewFinished(err error) {
	if err != nil {
		reviewsTotal.WithLabelValues(StatusFailed).Inc()
		return
	}
	reviewsTotal.WithLabelValues(StatusOK).Inc()
}

func EvaluatorHit(source string) {
	evaluatorRequests.WithLabelValues(source).Inc()
}

// ObserveSearch records one engine search that took d.
func ObserveSearch(d time.Duration) {
	evaluatorRequests.WithLabelValues(SourceEngine).Inc()
	evaluatorSeconds.Observe(d.Seconds())
}

func Classified(class string) {
	classifications.WithLabelValues(class).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
