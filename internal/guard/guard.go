// Package guard validates uploaded playbook content before linting.
//
// The guard performs three checks, in order:
//  1. Size - content above the configured ceiling is rejected without
//     being parsed.
//  2. Encoding - content must be valid UTF-8 text.
//  3. Syntax - content must parse as YAML; the parser's line/column
//     diagnostic is passed through verbatim.
//
// The guard is side-effect-free and never invokes the lint tool.
package guard

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/playlint/playlint/models"
)

// DefaultMaxSizeBytes is the upload ceiling applied when none is configured.
const DefaultMaxSizeBytes = 1024 * 1024 // 1 MiB

// Guard checks uploaded playbook bytes against size and syntax limits.
type Guard struct {
	maxSizeBytes int
}

// New creates a guard with the given size ceiling. A non-positive ceiling
// falls back to DefaultMaxSizeBytes.
func New(maxSizeBytes int) *Guard {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	return &Guard{maxSizeBytes: maxSizeBytes}
}

// MaxSizeBytes returns the configured upload ceiling.
func (g *Guard) MaxSizeBytes() int {
	return g.maxSizeBytes
}

// Validate checks content size and YAML syntax. It always returns a
// result; the result's Error field describes the first failed check.
func (g *Guard) Validate(content []byte) *models.ValidationResult {
	result := &models.ValidationResult{
		SizeBytes:    len(content),
		MaxSizeBytes: g.maxSizeBytes,
	}

	if len(content) > g.maxSizeBytes {
		result.Error = fmt.Sprintf(
			"playbook exceeds maximum size of %d bytes (got %d)",
			g.maxSizeBytes, len(content),
		)
		return result
	}

	if !utf8.Valid(content) {
		result.Error = "playbook is not valid UTF-8 text"
		return result
	}

	var doc interface{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		// yaml.v3 errors carry "line N:" diagnostics; keep them verbatim.
		result.Error = fmt.Sprintf("invalid YAML format: %s", yamlErrorMessage(err))
		return result
	}

	result.Valid = true
	return result
}

// AllowedFilename reports whether an uploaded filename has a playbook
// extension. The check is case-insensitive.
func AllowedFilename(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}

// yamlErrorMessage flattens a yaml.v3 error to a single line. TypeErrors
// bundle one message per problem; join them so no diagnostic is lost.
func yamlErrorMessage(err error) string {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return strings.Join(typeErr.Errors, "; ")
	}
	return err.Error()
}
