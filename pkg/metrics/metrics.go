package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	pitchAnalyzer = "pitch_analyzer"

	// Workflow metrics
	workflowTransitionsTotal = "workflow_transitions_total"
	submissionsInFlight      = "submissions_in_flight"
	submissionDuration       = "submission_duration_seconds"

	// Results view metrics
	resultsRenderedTotal = "results_rendered_total"
	sharedResultsTotal   = "shared_results_total"

	// Labels
	stateLabel  = "state"
	kindLabel   = "kind"
	sourceLabel = "source"
	formatLabel = "format"
)

/**
* Metrics definition
**/
var workflowTransitionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: pitchAnalyzer,
		Name:      workflowTransitionsTotal,
		Help:      "number of workflow transitions partitioned by target state and error kind",
	},
	[]string{stateLabel, kindLabel},
)

var submissionsInFlightMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: pitchAnalyzer,
		Name:      submissionsInFlight,
		Help:      "number of analysis calls currently in flight",
	},
)

var submissionDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: pitchAnalyzer,
		Name:      submissionDuration,
		Help:      "duration of analysis calls partitioned by final state",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	},
	[]string{stateLabel},
)

var resultsRenderedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: pitchAnalyzer,
		Name:      resultsRenderedTotal,
		Help:      "number of rendered results views partitioned by source and format",
	},
	[]string{sourceLabel, formatLabel},
)

var sharedResultsTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: pitchAnalyzer,
		Name:      sharedResultsTotal,
		Help:      "number of results stored for sharing",
	},
)

// IncreaseWorkflowTransitionMetric counts a transition into state. kind is the
// error kind for failures and empty otherwise.
func IncreaseWorkflowTransitionMetric(state, kind string) {
	labels := prometheus.Labels{
		stateLabel: state,
		kindLabel:  kind,
	}
	workflowTransitionsTotalMetric.With(labels).Inc()
}

func IncreaseSubmissionsInFlight() {
	submissionsInFlightMetric.Inc()
}

// ObserveSubmission records a finished call.
func ObserveSubmission(state string, seconds float64) {
	submissionsInFlightMetric.Dec()
	submissionDurationMetric.With(prometheus.Labels{stateLabel: state}).Observe(seconds)
}

// IncreaseResultsRenderedMetric counts a results view. source is query, token or empty.
func IncreaseResultsRenderedMetric(source, format string) {
	labels := prometheus.Labels{
		sourceLabel: source,
		formatLabel: format,
	}
	resultsRenderedTotalMetric.With(labels).Inc()
}

func IncreaseSharedResultsMetric() {
	sharedResultsTotalMetric.Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(workflowTransitionsTotalMetric)
	prometheus.MustRegister(submissionsInFlightMetric)
	prometheus.MustRegister(submissionDurationMetric)
	prometheus.MustRegister(resultsRenderedTotalMetric)
	prometheus.MustRegister(sharedResultsTotalMetric)
	prometheus.MustRegister(totalUniqueResultViewsMetric)
}
