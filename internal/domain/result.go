package domain

import "time"

// Status is the outcome of one test in one mode
type Status int

const (
	StatusPass Status = iota
	StatusFailDiff
	StatusFailMissing
	StatusError
	StatusUpgraded
	StatusCleaned
	StatusLeakClean
	StatusLeakDetected
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFailDiff:
		return "fail-diff"
	case StatusFailMissing:
		return "fail-missing-snapshot"
	case StatusError:
		return "error"
	case StatusUpgraded:
		return "upgraded"
	case StatusCleaned:
		return "cleaned"
	case StatusLeakClean:
		return "clean"
	case StatusLeakDetected:
		return "leak-detected"
	}
	return "unknown"
}

// Failed reports whether the status counts as a failure in the summary
func (s Status) Failed() bool {
	switch s {
	case StatusFailDiff, StatusFailMissing, StatusError, StatusLeakDetected:
		return true
	}
	return false
}

// Result represents the outcome of processing a single test (or orphan snapshot)
type Result struct {
	TestPath     string        // Test input path, empty for cleaned orphans
	SnapshotPath string        // Mapped snapshot path
	Status       Status        // What happened
	Diff         string        // Unified diff, only for StatusFailDiff
	Expected     []byte        // Stored snapshot, only for StatusFailDiff
	Actual       []byte        // Captured output, only for StatusFailDiff
	Diagnostics  string        // Leak tool stream, only for StatusLeakDetected
	Leak         *LeakSummary  // Parsed leak tool summary, if one was found
	Err          error         // Error for StatusError
	Duration     time.Duration // Time taken
}

// LeakSummary holds the numbers from a leak tool's closing report
type LeakSummary struct {
	DefinitelyLostBytes  int64
	DefinitelyLostBlocks int64
	IndirectlyLostBytes  int64
	PossiblyLostBytes    int64
	Errors               int64
}

// Summary aggregates the results of one run
type Summary struct {
	Mode     Mode
	Total    int
	Passed   int
	Failed   int
	Errors   int
	Cleaned  int
	Duration time.Duration
}

// Add counts a single result into the summary
func (s *Summary) Add(r Result) {
	s.Total++
	switch {
	case r.Status == StatusCleaned:
		s.Cleaned++
	case r.Status == StatusError:
		s.Errors++
	case r.Status.Failed():
		s.Failed++
	default:
		s.Passed++
	}
}

// OK reports whether the run finished without failures or errors
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errors == 0
}
