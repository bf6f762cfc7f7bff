package models

import (
	"fmt"

	"github.com/google/uuid"
)

// NewJobID generates a unique identifier for a streaming lint job.
// Example: NewJobID() -> "lint-job:uuid-here"
func NewJobID() string {
	return fmt.Sprintf("lint-job:%s", uuid.New().String())
}
