package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of model requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Model request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider", "operation"},
	)
	RecordStoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_store_requests_total",
			Help: "Total number of record store requests by operation and status code",
		},
		[]string{"operation", "code"},
	)

	SubmissionsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_enqueued_total",
			Help: "Total number of submissions queued for evaluation",
		},
		[]string{"trigger"},
	)
	SubmissionsProcessing = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "submissions_processing",
			Help: "Number of submissions currently being evaluated",
		},
	)
	SubmissionsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_completed_total",
			Help: "Total number of submissions that reached Complete",
		},
		[]string{"outcome"},
	)
	SubmissionsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_failed_total",
			Help: "Total number of submissions that reached Error, by stage",
		},
		[]string{"stage"},
	)
	SlidesAnalyzedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slides_analyzed_total",
			Help: "Total number of slide images sent to the vision model",
		},
		[]string{"result"},
	)

	DigestCharsHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_digest_chars",
			Help:    "Size of the digest sent to the text model",
			Buckets: []float64{500, 1000, 2000, 4000, 6000, 8000},
		},
	)
	PromptTokensHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_prompt_tokens",
			Help:    "Token count of the evaluation prompt",
			Buckets: []float64{1000, 2000, 3000, 4000, 5000, 6000, 7000, 8000},
		},
	)
	OverallScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_overall_score",
			Help:    "Distribution of weighted overall scores ([1,10])",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
)

var initOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to
// call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			RecordStoreRequestsTotal,
			SubmissionsEnqueuedTotal,
			SubmissionsProcessing,
			SubmissionsCompletedTotal,
			SubmissionsFailedTotal,
			SlidesAnalyzedTotal,
			DigestCharsHistogram,
			PromptTokensHistogram,
			OverallScoreHistogram,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveAIRequest counts one model call and its duration.
func ObserveAIRequest(provider, operation string, d time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, operation).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

func EnqueueSubmission(trigger string) {
	SubmissionsEnqueuedTotal.WithLabelValues(trigger).Inc()
}

func StartProcessingSubmission() {
	SubmissionsProcessing.Inc()
}

// CompleteSubmission marks a submission Complete. outcome is "saved" or
// "save_error".
func CompleteSubmission(outcome string) {
	SubmissionsProcessing.Dec()
	SubmissionsCompletedTotal.WithLabelValues(outcome).Inc()
}

func FailSubmission(stage string) {
	SubmissionsProcessing.Dec()
	SubmissionsFailedTotal.WithLabelValues(stage).Inc()
}

func ObserveSlide(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	SlidesAnalyzedTotal.WithLabelValues(result).Inc()
}

// ObservePrompt records the digest size and prompt token count actually sent.
func ObservePrompt(digestChars, promptTokens int) {
	DigestCharsHistogram.Observe(float64(digestChars))
	PromptTokensHistogram.Observe(float64(promptTokens))
}

// ObserveEvaluation records an overall score inside the valid range.
func ObserveEvaluation(overall float64) {
	if overall >= 1 && overall <= 10 {
		OverallScoreHistogram.Observe(overall)
	}
}
