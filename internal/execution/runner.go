package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"snapcheck/internal/config"
)

// ProcessRunner runs the subject as a child process
type ProcessRunner struct {
	config *config.Config
	log    *slog.Logger
}

// NewRunner creates a new ProcessRunner
func NewRunner(cfg *config.Config, log *slog.Logger) *ProcessRunner {
	return &ProcessRunner{config: cfg, log: log}
}

// Run executes the subject on a single test file, capturing stdout into a
// temporary file that is removed before returning. Stderr goes straight to ours.
func (r *ProcessRunner) Run(ctx context.Context, testPath string) ([]byte, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	capture, release, err := r.tempFile("snapcheck-stdout-*")
	if err != nil {
		return nil, err
	}
	defer release()

	cmd := exec.CommandContext(ctx, r.config.GetSubjectPath(), testPath)
	cmd.Stdout = capture
	cmd.Stderr = os.Stderr

	r.log.Debug("running subject", "argv", cmd.Args)
	if _, err := r.wait(ctx, cmd); err != nil {
		return nil, err
	}

	return readBack(capture)
}

// RunUnderLeakCheck executes `<tool> --leak-check=full --error-exitcode=N <subject> <test>`.
// Stdout is discarded and the tool's stderr is captured.
func (r *ProcessRunner) RunUnderLeakCheck(ctx context.Context, testPath string) (int, []byte, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	capture, release, err := r.tempFile("snapcheck-leak-*")
	if err != nil {
		return 0, nil, err
	}
	defer release()

	cmd := exec.CommandContext(ctx, r.config.LeakCheck.Tool,
		"--leak-check=full",
		fmt.Sprintf("--error-exitcode=%d", r.config.LeakCheck.ExitCode),
		r.config.GetSubjectPath(),
		testPath,
	)
	// nil Stdout is connected to the null device
	cmd.Stdout = nil
	cmd.Stderr = capture

	r.log.Debug("running subject under leak check", "argv", cmd.Args)
	code, err := r.wait(ctx, cmd)
	if err != nil {
		return 0, nil, err
	}

	diagnostics, err := readBack(capture)
	if err != nil {
		return 0, nil, err
	}
	return code, diagnostics, nil
}

// wait runs cmd to completion. A non-zero exit is not an error: the exit code
// is returned for the caller to judge.
func (r *ProcessRunner) wait(ctx context.Context, cmd *exec.Cmd) (int, error) {
	err := cmd.Run()

	// A killed process also exits with an ExitError; its output is partial
	// and must not be mistaken for a finished run.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w after %s: %s", ErrTimeout, r.config.Timeout, cmd.Path)
		}
		return 0, fmt.Errorf("%s interrupted: %w", cmd.Path, ctxErr)
	}
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("%w %s: %w", ErrLaunch, cmd.Path, err)
}

func (r *ProcessRunner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.Timeout > 0 {
		return context.WithTimeout(ctx, r.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// tempFile creates a fresh capture file and returns the func that closes and
// removes it. The release func must run on every path, so callers defer it
// straight away.
func (r *ProcessRunner) tempFile(pattern string) (*os.File, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("create capture file: %w", err)
	}
	release := func() {
		_ = f.Close()
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.log.Warn("failed to remove capture file", "path", f.Name(), "error", err)
		}
	}
	return f, release, nil
}

func readBack(f *os.File) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind capture file: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read capture file: %w", err)
	}
	return data, nil
}
