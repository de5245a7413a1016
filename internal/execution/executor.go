package execution

import (
	"context"
	"errors"
)

var (
	// ErrLaunch is returned when the subject or leak tool could not be started
	ErrLaunch = errors.New("failed to launch process")
	// ErrTimeout is returned when a process outlived the configured timeout
	ErrTimeout = errors.New("process timed out")
)

// Runner invokes the subject for a single test input.
// The process-backed implementation is ProcessRunner; tests use canned fakes.
type Runner interface {
	// Run returns everything the subject wrote to stdout. The subject's own
	// exit code is not inspected.
	Run(ctx context.Context, testPath string) ([]byte, error)
	// RunUnderLeakCheck runs the subject wrapped by the leak tool and returns
	// the tool's exit code and its diagnostic stream.
	RunUnderLeakCheck(ctx context.Context, testPath string) (int, []byte, error)
}
