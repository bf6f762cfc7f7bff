// Package invoker executes the external ansible-lint binary against
// uploaded playbook content and normalizes its output.
//
// The binary is an opaque collaborator reached through a command-line
// contract that must be preserved exactly:
//
//	exit 0  - no violations
//	exit 2  - lint violations found (not an invoker failure)
//	other   - invocation or environment error
//
// Each invocation writes the playbook to a private temporary directory
// which is removed on every exit path.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/playlint/playlint/models"
)

// DefaultCommand is the lint binary resolved from PATH when none is
// configured.
const DefaultCommand = "ansible-lint"

// Invoker runs ansible-lint subprocesses.
type Invoker struct {
	command string
	timeout time.Duration
}

// New creates an invoker for the given binary. An empty command falls
// back to DefaultCommand; a non-positive timeout falls back to 60s.
func New(command string, timeout time.Duration) *Invoker {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Invoker{command: command, timeout: timeout}
}

// Command returns the configured lint binary.
func (inv *Invoker) Command() string {
	return inv.command
}

// Timeout returns the per-invocation deadline.
func (inv *Invoker) Timeout() time.Duration {
	return inv.timeout
}

// Invoke lints content under the given profile. The returned result is
// populated whenever the subprocess produced output, including alongside
// an InvocationError, so callers can still surface stdout/stderr.
// Cancelling ctx kills the subprocess and yields a TimeoutError when the
// deadline was the cause.
func (inv *Invoker) Invoke(ctx context.Context, content []byte, prof models.Profile) (*models.LintResult, error) {
	tmpDir, err := os.MkdirTemp("", "playlint-")
	if err != nil {
		return nil, &InvocationError{Err: fmt.Errorf("create temp dir: %w", err)}
	}
	defer os.RemoveAll(tmpDir)

	playbookPath := filepath.Join(tmpDir, "playbook.yml")
	if err := os.WriteFile(playbookPath, content, 0o600); err != nil {
		return nil, &InvocationError{Err: fmt.Errorf("write playbook: %w", err)}
	}

	cmd := exec.CommandContext(ctx, inv.command, "--nocolor", "--profile", prof.Name, playbookPath)
	// ansible-lint writes its cache under HOME; point it at the scratch
	// dir so read-only home directories only cost a stderr warning.
	cmd.Env = append(os.Environ(), "ANSIBLE_LOCAL_TEMP="+tmpDir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Don't let grandchildren holding the output pipes stall Wait after
	// the process itself was killed.
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &models.LintResult{
		Profile: prof.Name,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Issues:  []models.Issue{},
	}

	if ctx.Err() == context.DeadlineExceeded {
		log.Printf("ansible-lint timed out after %s (profile=%s)", duration.Round(time.Millisecond), prof.Name)
		return nil, &TimeoutError{Timeout: inv.timeout}
	}
	if ctx.Err() == context.Canceled {
		return nil, ctx.Err()
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// Binary missing or not executable.
			return nil, &InvocationError{Err: runErr, Stderr: result.Stderr}
		}
		result.ExitCode = exitErr.ExitCode()
	}

	result.Passed = result.ExitCode == 0
	parseReport(result)

	switch result.ExitCode {
	case 0, 2:
		log.Printf("ansible-lint finished: profile=%s exit=%d issues=%d duration=%s",
			prof.Name, result.ExitCode, result.IssueCount, duration.Round(time.Millisecond))
		return result, nil
	default:
		return result, &InvocationError{ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
}

// Resolve checks that the lint binary is present on PATH and returns its
// resolved location.
func (inv *Invoker) Resolve() (string, error) {
	return exec.LookPath(inv.command)
}

// Healthy probes the lint binary: it must resolve on PATH and answer a
// version query within the ctx deadline.
func (inv *Invoker) Healthy(ctx context.Context) error {
	if _, err := exec.LookPath(inv.command); err != nil {
		return fmt.Errorf("%q not found: %w", inv.command, err)
	}
	cmd := exec.CommandContext(ctx, inv.command, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%q liveness probe failed: %w", inv.command, err)
	}
	return nil
}
