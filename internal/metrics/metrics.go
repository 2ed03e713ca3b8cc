// Package metrics exposes Prometheus counters for the analysis engine and
// the HTTP handler that serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AnalysisRuns counts completed analysis runs by outcome.
	AnalysisRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "analysis_runs_total",
		Help:      "Number of analysis runs, labeled by outcome.",
	}, []string{"outcome"})

	// ParsedTransactions counts transaction rows accepted by the parser.
	ParsedTransactions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "parsed_transactions_total",
		Help:      "Number of transaction rows parsed across all runs.",
	})

	// SkippedRows counts data rows rejected during parsing.
	SkippedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "skipped_rows_total",
		Help:      "Number of data rows skipped during parsing.",
	})

	// DuplicatesRemoved counts rows dropped by cross-file deduplication.
	DuplicatesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "duplicates_removed_total",
		Help:      "Number of duplicate transactions removed.",
	})

	// ExportsGenerated counts generated export artifacts by kind.
	ExportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "exports_generated_total",
		Help:      "Number of export artifacts generated, labeled by kind.",
	}, []string{"kind"})
)

// RecordRun increments the run counter with a success/failure outcome.
func RecordRun(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AnalysisRuns.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
