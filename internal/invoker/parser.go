package invoker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/playlint/playlint/models"
)

// ansible-lint reports one finding as a rule line followed by a location
// line, e.g.:
//
//	name[play]: All plays should be named.
//	playbook.yml:2
//
// Rule lines always have a space after the colon; location lines never do,
// which is what keeps the two patterns disjoint.
var (
	ruleLineRe     = regexp.MustCompile(`^([a-z][a-z0-9._-]*(?:\[[^\]]+\])?): (.+)$`)
	locationLineRe = regexp.MustCompile(`^(\S+?):(\d+)$`)
)

// parseReport fills the structured issue list and counts from the raw
// stdout already stored on result. The raw text stays authoritative:
// lines that match no pattern produce no Issue and are not dropped from
// Stdout. Severity is a best-effort secondary classification, so the
// error/warning counts can stay zero even when Passed is false.
func parseReport(result *models.LintResult) {
	var issues []models.Issue
	var current *models.Issue

	for _, line := range strings.Split(result.Stdout, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		// Summary tables and epilogue are indented or prefixed; only
		// column-zero lines carry findings.
		if line != trimmed {
			continue
		}

		if m := locationLineRe.FindStringSubmatch(trimmed); m != nil && current != nil {
			current.File = m[1]
			current.Line, _ = strconv.Atoi(m[2])
			issues = append(issues, *current)
			current = nil
			continue
		}

		if m := ruleLineRe.FindStringSubmatch(trimmed); m != nil {
			if current != nil {
				// Previous rule line never got a location; keep it anyway.
				issues = append(issues, *current)
			}
			current = &models.Issue{
				Rule:     m[1],
				Message:  m[2],
				Severity: classifySeverity(m[2]),
			}
			continue
		}
	}
	if current != nil {
		issues = append(issues, *current)
	}

	if issues == nil {
		issues = []models.Issue{}
	}
	result.Issues = issues
	result.IssueCount = len(issues)
	for _, issue := range issues {
		switch issue.Severity {
		case "error":
			result.ErrorCount++
		case "warning":
			result.WarningCount++
		}
	}
}

// classifySeverity derives a severity from the message text. ansible-lint
// appends "(warning)" to findings from warn-listed rules; everything else
// is left unclassified rather than guessed.
func classifySeverity(message string) string {
	if strings.HasSuffix(strings.TrimSpace(message), "(warning)") {
		return "warning"
	}
	return ""
}
