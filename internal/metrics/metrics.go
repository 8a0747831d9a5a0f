package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScoringRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "degrants_scoring_runs_total",
		Help: "Total batch scoring runs",
	})
	ScoringErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "degrants_scoring_errors_total",
		Help: "Total per-account scoring failures",
	})
	ScoringDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "degrants_scoring_duration_seconds",
		Help:    "Batch scoring duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	AccountsFlagged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "degrants_accounts_flagged_total",
		Help: "Total accounts flagged for review",
	})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "degrants_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "degrants_command_runs_total",
		Help: "Total CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "degrants_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(ScoringRuns, ScoringErrors, ScoringDuration, AccountsFlagged, APIRetries, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveScoringDuration records a run duration
func ObserveScoringDuration(start time.Time) {
	ScoringDuration.Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
