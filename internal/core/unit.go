package core

// UnitKind categorizes a transfer unit for events and result counts.
type UnitKind int

const (
	UnitDownload UnitKind = iota
	UnitArchive
	UnitDelete
)

func (k UnitKind) String() string {
	switch k {
	case UnitDownload:
		return "download"
	case UnitArchive:
		return "archive"
	case UnitDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// UnitState is the externally visible state of a unit.
type UnitState int

const (
	StateQueued UnitState = iota
	StateInProgress
	StateSucceeded
	StateFailed
)

func (s UnitState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateInProgress:
		return "in-progress"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressEvent reports a unit state change or progress update.
// Attempt is 1-based; a Queued event with Attempt > 1 means the unit is
// being retried after backoff.
type ProgressEvent struct {
	Unit       string
	Kind       UnitKind
	State      UnitState
	Attempt    int
	Downloaded int64
	TotalBytes int64
	Reason     string // Set when State == StateFailed
}

// EventFunc receives progress events. It may be called from multiple
// worker goroutines concurrently.
type EventFunc func(ProgressEvent)

// UnitFailure records one unit that exhausted its attempts.
type UnitFailure struct {
	Unit   string
	Kind   UnitKind
	Reason string
}

// Result is the terminal summary of one orchestrator run.
type Result struct {
	DownloadsSucceeded int
	DownloadsFailed    int
	DeletesSucceeded   int
	DeletesFailed      int
	Failures           []UnitFailure
	Cancelled          bool
}

// Failed reports whether any unit failed.
func (r *Result) Failed() bool {
	return r.DownloadsFailed > 0 || r.DeletesFailed > 0
}
