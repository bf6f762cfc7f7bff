package models

import "time"

// Progress statuses emitted by the streaming lint operation, in order.
const (
	StatusQueued     = "queued"
	StatusValidating = "validating"
	StatusLinting    = "linting"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// ToolEnvelope is the uniform response wrapper for every dispatched tool.
type ToolEnvelope struct {
	Tool      string      `json:"tool"`
	Success   bool        `json:"success"`
	Output    interface{} `json:"output"`
	Timestamp string      `json:"timestamp"`
}

// NewToolEnvelope wraps a tool payload with the dispatch metadata.
func NewToolEnvelope(tool string, output interface{}, success bool) *ToolEnvelope {
	return &ToolEnvelope{
		Tool:      tool,
		Success:   success,
		Output:    output,
		Timestamp: time.Now().UTC().Format("2006-01-02 15:04:05"),
	}
}

// ToolRequest is the wire shape accepted by the tool-dispatch endpoint.
type ToolRequest struct {
	ToolName string                 `json:"tool_name" validate:"required"`
	Inputs   map[string]interface{} `json:"inputs"`
}

// LintInput is the structured input for the lint tools.
type LintInput struct {
	Playbook string `json:"playbook" validate:"required"`
	Profile  string `json:"profile"`
}

// ValidateInput is the structured input for the syntax-validation tool.
type ValidateInput struct {
	Playbook string `json:"playbook" validate:"required"`
}

// ProgressEvent is one step of a streaming lint job, pushed to SSE and
// WebSocket subscribers as a "lint-status" event.
type ProgressEvent struct {
	JobID     string      `json:"job_id"`
	Status    string      `json:"status"`
	Profile   string      `json:"profile,omitempty"`
	Error     string      `json:"error,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
