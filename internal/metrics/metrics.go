// Package metrics holds the Prometheus collectors for the escape room
// backend and the HTTP pieces that expose them.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "escaperoom",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "escaperoom",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 30},
		},
		[]string{"method", "endpoint"},
	)

	PuzzlesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "escaperoom",
			Name:      "puzzles_generated_total",
			Help:      "Puzzles generated, by content source",
		},
		[]string{"source"},
	)

	GeneratorFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "escaperoom",
			Name:      "generator_fallbacks_total",
			Help:      "Puzzle generations that fell back to default content, by reason",
		},
		[]string{"reason"},
	)

	AnswersChecked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "escaperoom",
			Name:      "answers_checked_total",
			Help:      "Submitted answers, by feedback tier",
		},
		[]string{"tier"},
	)

	// SoftFailures counts collaborator failures the game absorbs
	// (enhancement, storyline).
	SoftFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "escaperoom",
			Name:      "soft_failures_total",
			Help:      "Collaborator failures absorbed without failing the request",
		},
		[]string{"component"},
	)

	PuzzleDifficulty = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "escaperoom",
			Name:      "puzzle_difficulty",
			Help:      "Difficulty assigned to newly generated puzzles",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 20),
		},
	)
)

// Collectors returns every collector owned by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		RequestCounter,
		RequestDuration,
		PuzzlesGenerated,
		GeneratorFallbacks,
		AnswersChecked,
		SoftFailures,
		PuzzleDifficulty,
	}
}

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(Collectors()...)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per chi route pattern.
// Unmatched paths are grouped under "unmatched" to keep label
// cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}
