package dispatcher

import "fmt"

// ToolNotFoundError reports a dispatch request naming an unregistered
// tool. Front ends render it as the uniform not-found body together with
// the available tool list.
type ToolNotFoundError struct {
	Name      string
	Available []string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("Tool '%s' not found", e.Name)
}

// MalformedRequestError reports a request envelope that failed structural
// validation before any component was touched.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return e.Reason
}
