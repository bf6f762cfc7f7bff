package invoker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playlint/playlint/models"
)

// writeStub creates a fake ansible-lint executable for tests.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ansible-lint")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

var basicProfile = models.Profile{Name: "basic", Default: true}

func TestInvoke_CleanPlaybook(t *testing.T) {
	stub := writeStub(t, "echo 'Passed: 0 failure(s), 0 warning(s) on 1 files.'\nexit 0\n")
	inv := New(stub, 5*time.Second)

	result, err := inv.Invoke(context.Background(), []byte("---\n- name: ok\n  hosts: all\n"), basicProfile)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, result.Passed)
	assert.Equal(t, "basic", result.Profile)
	assert.Empty(t, result.Issues)
	assert.Contains(t, result.Stdout, "Passed")
}

func TestInvoke_ViolationsFound(t *testing.T) {
	stub := writeStub(t, `cat <<'EOF'
name[play]: All plays should be named.
playbook.yml:2

yaml[new-line-at-end-of-file]: No new line character at the end of file
playbook.yml:5
EOF
exit 2
`)
	inv := New(stub, 5*time.Second)

	result, err := inv.Invoke(context.Background(), []byte("---\n- hosts: all"), basicProfile)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ExitCode)
	assert.False(t, result.Passed)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, "name[play]", result.Issues[0].Rule)
	assert.Equal(t, 2, result.IssueCount)
}

func TestInvoke_ReceivesProfileArgument(t *testing.T) {
	// The stub echoes its arguments so the command-line contract can be
	// asserted: --nocolor --profile <name> <path>.
	stub := writeStub(t, "echo \"$@\"\nexit 0\n")
	inv := New(stub, 5*time.Second)

	result, err := inv.Invoke(context.Background(), []byte("---\n"), models.Profile{Name: "production"})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "--nocolor")
	assert.Contains(t, result.Stdout, "--profile production")
	assert.Contains(t, result.Stdout, "playbook.yml")
}

func TestInvoke_UnexpectedExitCode(t *testing.T) {
	stub := writeStub(t, "echo 'boom' >&2\nexit 3\n")
	inv := New(stub, 5*time.Second)

	result, err := inv.Invoke(context.Background(), []byte("---\n"), basicProfile)
	require.Error(t, err)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, 3, invErr.ExitCode)
	// The result still carries the captured streams.
	require.NotNil(t, result)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "boom")
}

func TestInvoke_ToolNotFound(t *testing.T) {
	inv := New(filepath.Join(t.TempDir(), "does-not-exist"), 5*time.Second)

	result, err := inv.Invoke(context.Background(), []byte("---\n"), basicProfile)
	require.Error(t, err)
	assert.Nil(t, result)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
}

func TestInvoke_Timeout(t *testing.T) {
	stub := writeStub(t, "exec sleep 30\n")
	inv := New(stub, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := inv.Invoke(ctx, []byte("---\n"), basicProfile)
	require.Error(t, err)
	assert.Nil(t, result)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	// The subprocess must be killed promptly, not waited out.
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestInvoke_StderrWarningsPassedThrough(t *testing.T) {
	stub := writeStub(t, "echo 'WARNING  Cannot write cache' >&2\nexit 0\n")
	inv := New(stub, 5*time.Second)

	result, err := inv.Invoke(context.Background(), []byte("---\n"), basicProfile)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Contains(t, result.Stderr, "Cannot write cache")
}

func TestInvoke_TempFileCleanedUp(t *testing.T) {
	// The stub records the playbook path it was handed; after Invoke
	// returns, that path must be gone.
	marker := filepath.Join(t.TempDir(), "seen-path")
	stub := writeStub(t, "echo \"$4\" > "+marker+"\nexit 0\n")
	inv := New(stub, 5*time.Second)

	_, err := inv.Invoke(context.Background(), []byte("---\n"), basicProfile)
	require.NoError(t, err)

	seen, err := os.ReadFile(marker)
	require.NoError(t, err)
	playbookPath := string(seen[:len(seen)-1]) // strip trailing newline
	_, statErr := os.Stat(playbookPath)
	assert.True(t, os.IsNotExist(statErr), "temp playbook should be removed after invocation")
}
