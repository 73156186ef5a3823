// Package metrics provides operation counters for the tally engine.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection is optional and free when disabled.
// The real implementation forwards to Prometheus counters on a process-local
// registry; there is no scrape endpoint, the CLI dumps the registry on
// demand.
package metrics

// WorkdayOp enumerates workday lifecycle transitions for counters.
type WorkdayOp string

const (
	WorkdayCreated  WorkdayOp = "created"
	WorkdayClosed   WorkdayOp = "closed"
	WorkdayReopened WorkdayOp = "reopened"
)

// CountOp enumerates count accumulator outcomes.
type CountOp string

const (
	CountAdjusted   CountOp = "adjusted"
	CountReset      CountOp = "reset"
	CountNoopClosed CountOp = "noop_closed" // tap on a closed workday
)

// WeekOp enumerates weekly closure transitions.
type WeekOp string

const (
	WeekClosed   WeekOp = "closed"
	WeekReopened WeekOp = "reopened"
)

// Recorder defines the observability hooks the managers call. All methods
// must be cheap; implementations forward to Prometheus or do nothing.
type Recorder interface {
	IncWorkday(op WorkdayOp)
	IncShiftCreated()
	IncCount(op CountOp)
	IncWeek(op WeekOp)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) IncWorkday(WorkdayOp) {}
func (NoopRecorder) IncShiftCreated()     {}
func (NoopRecorder) IncCount(CountOp)     {}
func (NoopRecorder) IncWeek(WeekOp)       {}
