package service

import "time"

// Outcome labels used with MetricsRecorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoop    = "noop"
)

// MetricsRecorder receives operational counters from the use cases and adapters.
type MetricsRecorder interface {
	RecordAuth(operation, outcome string)
	RecordFavoriteMutation(operation, outcome string)
	RecordProviderRequest(operation, outcome string, latency time.Duration)
	RecordCacheLookup(hit bool)
	RecordLedgerSweep(expired int64)
}
