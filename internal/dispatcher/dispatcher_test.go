package dispatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playlint/playlint/internal/governor"
	"github.com/playlint/playlint/internal/guard"
	"github.com/playlint/playlint/internal/invoker"
	"github.com/playlint/playlint/internal/profile"
	"github.com/playlint/playlint/models"
)

// recordingPublisher captures progress events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ProgressEvent
}

func (p *recordingPublisher) Publish(event models.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Status
	}
	return out
}

func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ansible-lint")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func newTestDispatcher(t *testing.T, lintCommand string, events EventPublisher) *Dispatcher {
	t.Helper()
	return New(
		profile.NewRegistry(),
		guard.New(1024*1024),
		governor.New(2, 5*time.Second, false),
		invoker.New(lintCommand, 5*time.Second),
		events,
	)
}

const validPlaybook = `---
- hosts: localhost
  tasks:
    - name: Test task
      debug:
        msg: "Hello World"
`

func TestDispatch_UnknownTool(t *testing.T) {
	d := newTestDispatcher(t, "ansible-lint-unused", nil)

	_, err := d.Dispatch(context.Background(), &models.ToolRequest{ToolName: "nonexistent_tool"})
	require.Error(t, err)

	var notFound *ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Tool 'nonexistent_tool' not found", notFound.Error())
	assert.Equal(t, []string{
		"lint_ansible_playbook",
		"get_lint_profiles",
		"validate_playbook_syntax",
		"lint_playbook_stream",
	}, notFound.Available)
}

func TestDispatch_MissingToolName(t *testing.T) {
	d := newTestDispatcher(t, "ansible-lint-unused", nil)

	_, err := d.Dispatch(context.Background(), &models.ToolRequest{})
	var malformed *MalformedRequestError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "tool_name")
}

func TestDispatch_MalformedInputs(t *testing.T) {
	d := newTestDispatcher(t, "ansible-lint-unused", nil)

	// Missing required playbook input.
	_, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolValidateSyntax,
		Inputs:   map[string]interface{}{},
	})
	var malformed *MalformedRequestError
	require.ErrorAs(t, err, &malformed)

	// Unknown input field.
	_, err = d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolValidateSyntax,
		Inputs:   map[string]interface{}{"playbook": "---", "bogus": true},
	})
	require.ErrorAs(t, err, &malformed)
}

func TestDispatch_GetProfiles(t *testing.T) {
	d := newTestDispatcher(t, "ansible-lint-unused", nil)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{ToolName: ToolGetProfiles})
	require.NoError(t, err)
	assert.Equal(t, ToolGetProfiles, envelope.Tool)
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Timestamp)

	output := envelope.Output.(map[string]interface{})
	assert.Equal(t, "basic", output["default_profile"])
	assert.Equal(t, []string{"basic", "production", "safe", "test", "minimal"}, output["profiles"])
}

func TestDispatch_ValidateSyntax(t *testing.T) {
	d := newTestDispatcher(t, "ansible-lint-unused", nil)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolValidateSyntax,
		Inputs:   map[string]interface{}{"playbook": validPlaybook},
	})
	require.NoError(t, err)
	assert.True(t, envelope.Success)

	result := envelope.Output.(*models.ValidationResult)
	assert.True(t, result.Valid)
}

func TestDispatch_ValidateSyntaxInvalid(t *testing.T) {
	d := newTestDispatcher(t, "ansible-lint-unused", nil)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolValidateSyntax,
		Inputs:   map[string]interface{}{"playbook": "- hosts: x\n  bad: \"unclosed\n"},
	})
	require.NoError(t, err)
	assert.False(t, envelope.Success)

	result := envelope.Output.(*models.ValidationResult)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "invalid YAML format")
}

func TestDispatch_LintPlaybook(t *testing.T) {
	stub := writeStub(t, `cat <<'EOF'
name[play]: All plays should be named.
playbook.yml:2
EOF
exit 2
`)
	d := newTestDispatcher(t, stub, nil)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolLintPlaybook,
		Inputs:   map[string]interface{}{"playbook": validPlaybook},
	})
	require.NoError(t, err)
	assert.True(t, envelope.Success)

	output := envelope.Output.(map[string]interface{})
	summary := output["summary"].(map[string]interface{})
	assert.Equal(t, 2, summary["exit_code"])
	assert.Equal(t, false, summary["passed"])
	assert.Equal(t, "basic", summary["profile_used"])

	issues := output["issues"].([]models.Issue)
	require.Len(t, issues, 1)
	assert.Equal(t, "name[play]", issues[0].Rule)

	raw := output["raw_output"].(map[string]string)
	assert.Contains(t, raw["stdout"], "name[play]")
}

func TestDispatch_LintPlaybookClean(t *testing.T) {
	stub := writeStub(t, "echo 'Passed: 0 failure(s), 0 warning(s)'\nexit 0\n")
	d := newTestDispatcher(t, stub, nil)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolLintPlaybook,
		Inputs:   map[string]interface{}{"playbook": validPlaybook},
	})
	require.NoError(t, err)
	assert.True(t, envelope.Success)

	output := envelope.Output.(map[string]interface{})
	summary := output["summary"].(map[string]interface{})
	assert.Equal(t, 0, summary["exit_code"])
	assert.Equal(t, true, summary["passed"])
	assert.Empty(t, output["issues"])
}

func TestDispatch_LintPlaybookSerialIdempotence(t *testing.T) {
	stub := writeStub(t, `cat <<'EOF'
name[play]: All plays should be named.
playbook.yml:2
EOF
exit 2
`)
	d := newTestDispatcher(t, stub, nil)

	req := &models.ToolRequest{
		ToolName: ToolLintPlaybook,
		Inputs:   map[string]interface{}{"playbook": validPlaybook},
	}

	first, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)

	firstOut := first.Output.(map[string]interface{})
	secondOut := second.Output.(map[string]interface{})
	assert.Equal(t, firstOut["summary"], secondOut["summary"])
	assert.Equal(t, firstOut["issues"], secondOut["issues"])
}

func TestDispatch_LintPlaybookUnknownProfile(t *testing.T) {
	// The lint command does not exist: if the profile check failed to
	// run first, dispatch would report a spawn failure instead.
	d := newTestDispatcher(t, filepath.Join(t.TempDir(), "missing-binary"), nil)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolLintPlaybook,
		Inputs:   map[string]interface{}{"playbook": validPlaybook, "profile": "nope"},
	})
	require.NoError(t, err)
	assert.False(t, envelope.Success)

	output := envelope.Output.(map[string]string)
	assert.Contains(t, output["error"], `profile "nope" not found`)
}

func TestDispatch_LintPlaybookInvalidYAML(t *testing.T) {
	d := newTestDispatcher(t, filepath.Join(t.TempDir(), "missing-binary"), nil)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolLintPlaybook,
		Inputs:   map[string]interface{}{"playbook": "x: \"unclosed\n"},
	})
	require.NoError(t, err)
	assert.False(t, envelope.Success)

	output := envelope.Output.(map[string]string)
	assert.Contains(t, output["error"], "invalid YAML format")
}

func TestDispatch_LintStream(t *testing.T) {
	stub := writeStub(t, "echo 'Passed'\nexit 0\n")
	pub := &recordingPublisher{}
	d := newTestDispatcher(t, stub, pub)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolLintStream,
		Inputs:   map[string]interface{}{"playbook": validPlaybook},
	})
	require.NoError(t, err)
	assert.True(t, envelope.Success)

	assert.Equal(t, []string{
		models.StatusQueued,
		models.StatusValidating,
		models.StatusLinting,
		models.StatusDone,
	}, pub.statuses())

	output := envelope.Output.(map[string]interface{})
	assert.Contains(t, output["job_id"], "lint-job:")
}

func TestDispatch_LintStreamValidationFailure(t *testing.T) {
	pub := &recordingPublisher{}
	d := newTestDispatcher(t, filepath.Join(t.TempDir(), "missing-binary"), pub)

	envelope, err := d.Dispatch(context.Background(), &models.ToolRequest{
		ToolName: ToolLintStream,
		Inputs:   map[string]interface{}{"playbook": "x: \"unclosed\n"},
	})
	require.NoError(t, err)
	assert.False(t, envelope.Success)

	statuses := pub.statuses()
	assert.Equal(t, models.StatusFailed, statuses[len(statuses)-1])
	assert.NotContains(t, statuses, models.StatusLinting)
}
