// Package dispatcher routes named tool operations to the lint components
// behind a uniform request/response envelope.
//
// Four tools are exposed:
//   - get_lint_profiles        - profile registry listing plus default
//   - validate_playbook_syntax - size and YAML check, no subprocess
//   - lint_ansible_playbook    - guard, then governed lint invocation
//   - lint_playbook_stream     - same, with progress events pushed to
//     subscribers before the final result
//
// Component failures are wrapped into {success:false, output:{error}}
// envelopes rather than raised past the boundary; only structural
// problems (unknown tool, malformed envelope) surface as errors for the
// front end to translate.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/playlint/playlint/internal/governor"
	"github.com/playlint/playlint/internal/guard"
	"github.com/playlint/playlint/internal/invoker"
	"github.com/playlint/playlint/internal/profile"
	"github.com/playlint/playlint/models"
)

// Canonical tool names, in the order reported to clients.
const (
	ToolLintPlaybook   = "lint_ansible_playbook"
	ToolGetProfiles    = "get_lint_profiles"
	ToolValidateSyntax = "validate_playbook_syntax"
	ToolLintStream     = "lint_playbook_stream"
)

// EventPublisher receives progress events from streaming lint jobs.
type EventPublisher interface {
	Publish(event models.ProgressEvent)
}

// Dispatcher routes tool requests to the lint components.
type Dispatcher struct {
	registry *profile.Registry
	guard    *guard.Guard
	governor *governor.Governor
	invoker  *invoker.Invoker
	validate *validator.Validate
	events   EventPublisher
}

// New creates a dispatcher over the given components. events may be nil;
// streaming jobs then run without progress notifications.
func New(reg *profile.Registry, g *guard.Guard, gov *governor.Governor, inv *invoker.Invoker, events EventPublisher) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		guard:    g,
		governor: gov,
		invoker:  inv,
		validate: validator.New(),
		events:   events,
	}
}

// ToolNames returns the canonical tool names in a fixed order.
func (d *Dispatcher) ToolNames() []string {
	return []string{ToolLintPlaybook, ToolGetProfiles, ToolValidateSyntax, ToolLintStream}
}

// Descriptors returns one descriptor per tool for the listing endpoint.
func (d *Dispatcher) Descriptors() []map[string]string {
	return []map[string]string{
		{"name": ToolLintPlaybook, "description": "Run ansible-lint and return a structured report"},
		{"name": ToolGetProfiles, "description": "Get supported ansible-lint profiles and their descriptions"},
		{"name": ToolValidateSyntax, "description": "Validate playbook YAML syntax without linting"},
		{"name": ToolLintStream, "description": "Run ansible-lint with progress events over the push channel"},
	}
}

// Governor exposes the admission controller for service descriptors.
func (d *Dispatcher) Governor() *governor.Governor {
	return d.governor
}

// Healthy probes the underlying lint binary.
func (d *Dispatcher) Healthy(ctx context.Context) error {
	return d.invoker.Healthy(ctx)
}

// Dispatch routes a tool request. A returned error is either
// *ToolNotFoundError or *MalformedRequestError; every other failure is
// folded into the envelope with success=false.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.ToolRequest) (*models.ToolEnvelope, error) {
	if req == nil || req.ToolName == "" {
		return nil, &MalformedRequestError{Reason: "Missing tool_name parameter"}
	}

	switch req.ToolName {
	case ToolGetProfiles:
		return d.getProfiles(), nil
	case ToolValidateSyntax:
		input := &models.ValidateInput{}
		if err := d.decodeInputs(req.Inputs, input); err != nil {
			return nil, err
		}
		return d.validateSyntax(input), nil
	case ToolLintPlaybook:
		input := &models.LintInput{}
		if err := d.decodeInputs(req.Inputs, input); err != nil {
			return nil, err
		}
		return d.lintPlaybook(ctx, input), nil
	case ToolLintStream:
		input := &models.LintInput{}
		if err := d.decodeInputs(req.Inputs, input); err != nil {
			return nil, err
		}
		return d.lintStream(ctx, input), nil
	default:
		return nil, &ToolNotFoundError{Name: req.ToolName, Available: d.ToolNames()}
	}
}

// decodeInputs maps the loosely typed inputs object onto a typed input
// struct and validates it. Failures are malformed requests: no component
// has been touched yet.
func (d *Dispatcher) decodeInputs(inputs map[string]interface{}, target interface{}) error {
	raw, err := json.Marshal(inputs)
	if err != nil {
		return &MalformedRequestError{Reason: "Invalid inputs object"}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return &MalformedRequestError{Reason: "Invalid parameters: " + err.Error()}
	}
	if err := d.validate.Struct(target); err != nil {
		return &MalformedRequestError{Reason: "Invalid parameters: " + err.Error()}
	}
	return nil
}

func (d *Dispatcher) getProfiles() *models.ToolEnvelope {
	descriptions := make(map[string]string)
	for _, p := range d.registry.List() {
		descriptions[p.Name] = p.Description
	}
	output := map[string]interface{}{
		"profiles":             d.registry.Names(),
		"profile_descriptions": descriptions,
		"default_profile":      d.registry.Default().Name,
	}
	return models.NewToolEnvelope(ToolGetProfiles, output, true)
}

func (d *Dispatcher) validateSyntax(input *models.ValidateInput) *models.ToolEnvelope {
	result := d.guard.Validate([]byte(input.Playbook))
	return models.NewToolEnvelope(ToolValidateSyntax, result, result.Valid)
}

func (d *Dispatcher) lintPlaybook(ctx context.Context, input *models.LintInput) *models.ToolEnvelope {
	result, failure := d.runLint(ctx, input)
	if failure != "" {
		return models.NewToolEnvelope(ToolLintPlaybook, map[string]string{"error": failure}, false)
	}
	return models.NewToolEnvelope(ToolLintPlaybook, formatLintOutput(result), true)
}

func (d *Dispatcher) lintStream(ctx context.Context, input *models.LintInput) *models.ToolEnvelope {
	jobID := models.NewJobID()
	prof, err := d.resolveProfile(input.Profile)
	if err != nil {
		d.publish(models.ProgressEvent{JobID: jobID, Status: models.StatusFailed, Error: err.Error()})
		return models.NewToolEnvelope(ToolLintStream, map[string]string{"error": err.Error(), "job_id": jobID}, false)
	}
	d.publish(models.ProgressEvent{JobID: jobID, Status: models.StatusQueued, Profile: prof.Name})

	d.publish(models.ProgressEvent{JobID: jobID, Status: models.StatusValidating, Profile: prof.Name})
	if v := d.guard.Validate([]byte(input.Playbook)); !v.Valid {
		d.publish(models.ProgressEvent{JobID: jobID, Status: models.StatusFailed, Error: v.Error})
		return models.NewToolEnvelope(ToolLintStream, map[string]string{"error": v.Error, "job_id": jobID}, false)
	}

	d.publish(models.ProgressEvent{JobID: jobID, Status: models.StatusLinting, Profile: prof.Name})
	var result *models.LintResult
	runErr := d.governor.Run(ctx, func(runCtx context.Context) error {
		var invokeErr error
		result, invokeErr = d.invoker.Invoke(runCtx, []byte(input.Playbook), prof)
		return invokeErr
	})
	if runErr != nil {
		d.publish(models.ProgressEvent{JobID: jobID, Status: models.StatusFailed, Error: runErr.Error()})
		return models.NewToolEnvelope(ToolLintStream, map[string]string{"error": runErr.Error(), "job_id": jobID}, false)
	}

	formatted := formatLintOutput(result)
	d.publish(models.ProgressEvent{JobID: jobID, Status: models.StatusDone, Profile: prof.Name, Result: formatted})
	formatted["job_id"] = jobID
	return models.NewToolEnvelope(ToolLintStream, formatted, true)
}

// runLint is the shared guard -> resolve -> governed invoke pipeline.
// A non-empty failure string is the user-visible error message.
func (d *Dispatcher) runLint(ctx context.Context, input *models.LintInput) (*models.LintResult, string) {
	if v := d.guard.Validate([]byte(input.Playbook)); !v.Valid {
		return nil, v.Error
	}
	prof, err := d.resolveProfile(input.Profile)
	if err != nil {
		return nil, err.Error()
	}

	var result *models.LintResult
	runErr := d.governor.Run(ctx, func(runCtx context.Context) error {
		var invokeErr error
		result, invokeErr = d.invoker.Invoke(runCtx, []byte(input.Playbook), prof)
		return invokeErr
	})
	if runErr != nil {
		log.Printf("lint failed: tool=%s profile=%s: %v", ToolLintPlaybook, prof.Name, runErr)
		return nil, runErr.Error()
	}
	return result, ""
}

func (d *Dispatcher) resolveProfile(name string) (models.Profile, error) {
	if name == "" {
		return d.registry.Default(), nil
	}
	return d.registry.Resolve(name)
}

func (d *Dispatcher) publish(event models.ProgressEvent) {
	if d.events == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	d.events.Publish(event)
}

// formatLintOutput shapes a lint result for agent consumption: condensed
// summary, structured issues, and the authoritative raw text.
func formatLintOutput(result *models.LintResult) map[string]interface{} {
	return map[string]interface{}{
		"summary": result.Summary(),
		"issues":  result.Issues,
		"raw_output": map[string]string{
			"stdout": result.Stdout,
			"stderr": result.Stderr,
		},
	}
}
