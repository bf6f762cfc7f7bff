package models

// Profile is a named rule-strictness preset accepted by ansible-lint.
// Profiles are defined at process start and never mutated.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// ValidationResult is the outcome of the upload guard: size and YAML
// syntax checks only, no subprocess involved.
type ValidationResult struct {
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	SizeBytes    int    `json:"size_bytes"`
	MaxSizeBytes int    `json:"max_size_bytes"`
}

// Issue is a single finding parsed from the ansible-lint report.
// Order matches emission order in stdout.
type Issue struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// LintResult is the normalized outcome of one ansible-lint invocation.
// The raw stdout/stderr text is authoritative; the structured issue list
// and counts are a best-effort parse over the same text and may
// legitimately be empty even when Passed is false.
type LintResult struct {
	ExitCode     int     `json:"exit_code"`
	Passed       bool    `json:"passed"`
	Profile      string  `json:"profile"`
	Issues       []Issue `json:"issues"`
	Stdout       string  `json:"stdout"`
	Stderr       string  `json:"stderr"`
	IssueCount   int     `json:"issue_count"`
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
}

// Summary returns the condensed view used by the tool envelope.
func (r *LintResult) Summary() map[string]interface{} {
	return map[string]interface{}{
		"exit_code":     r.ExitCode,
		"passed":        r.Passed,
		"profile_used":  r.Profile,
		"issue_count":   r.IssueCount,
		"error_count":   r.ErrorCount,
		"warning_count": r.WarningCount,
	}
}
