package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/playlint/playlint/internal/governor"
	"github.com/playlint/playlint/internal/guard"
	"github.com/playlint/playlint/internal/invoker"
	"github.com/playlint/playlint/internal/profile"
	"github.com/playlint/playlint/models"
)

// probeTimeout bounds the health endpoint's liveness probe.
const probeTimeout = 5 * time.Second

// LintResponse is the wire projection of a lint run. Downstream
// consumers branch on exit_code (0 = clean, 2 = violations), so the code
// is passed through untouched.
type LintResponse struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// ProfilesResponse lists the supported lint profiles.
type ProfilesResponse struct {
	Profiles       []models.Profile `json:"profiles"`
	DefaultProfile string           `json:"default_profile"`
}

// listProfiles returns the profile registry listing.
func (s *Server) listProfiles(c echo.Context) error {
	return c.JSON(http.StatusOK, ProfilesResponse{
		Profiles:       s.registry.List(),
		DefaultProfile: s.registry.Default().Name,
	})
}

// lintPlaybook accepts a multipart playbook upload and lints it under the
// profile named in the path.
func (s *Server) lintPlaybook(c echo.Context) error {
	prof, err := s.registry.Resolve(c.Param("profile"))
	if err != nil {
		var notFound *profile.ErrNotFound
		if errors.As(err, &notFound) {
			return NotFoundError("Unknown profile", err.Error())
		}
		return InternalError("Profile lookup failed", err.Error())
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return BadRequestError("Missing upload", "multipart field 'file' is required")
	}

	if !guard.AllowedFilename(fileHeader.Filename) {
		return BadRequestError("Invalid file type", "Only .yml/.yaml files are accepted.")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return InternalError("Failed to read upload", err.Error())
	}
	defer src.Close()

	// Read at most ceiling+1 bytes so oversize uploads are detected
	// without buffering arbitrarily large bodies.
	limit := int64(s.guard.MaxSizeBytes())
	body, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return InternalError("Failed to read upload", err.Error())
	}
	if int64(len(body)) > limit {
		return PayloadTooLargeError("File too large",
			fmt.Sprintf("File exceeds %d bytes", s.guard.MaxSizeBytes()))
	}

	if !utf8.Valid(body) {
		return BadRequestError("Invalid encoding", "File is not valid UTF-8 text.")
	}

	var result *models.LintResult
	runErr := s.governor.Run(c.Request().Context(), func(runCtx context.Context) error {
		var invokeErr error
		result, invokeErr = s.invoker.Invoke(runCtx, body, prof)
		return invokeErr
	})

	if runErr != nil {
		if errors.Is(runErr, governor.ErrOverloaded) {
			return TooManyRequestsError("Server busy", runErr.Error())
		}

		// The exit-code projection survives invoker failures: timeouts and
		// environment errors are reported as exit_code 1 with the reason
		// in stderr, matching the documented contract.
		var timeoutErr *governor.TimeoutError
		var invokerTimeout *invoker.TimeoutError
		var invocationErr *invoker.InvocationError
		switch {
		case errors.As(runErr, &timeoutErr), errors.As(runErr, &invokerTimeout):
			return c.JSON(http.StatusOK, LintResponse{ExitCode: 1, Stderr: runErr.Error()})
		case errors.As(runErr, &invocationErr):
			if result != nil {
				return c.JSON(http.StatusOK, LintResponse{
					ExitCode: result.ExitCode,
					Stdout:   result.Stdout,
					Stderr:   result.Stderr,
				})
			}
			return c.JSON(http.StatusOK, LintResponse{ExitCode: 1, Stderr: runErr.Error()})
		default:
			return InternalError("Lint failed", runErr.Error())
		}
	}

	return c.JSON(http.StatusOK, LintResponse{
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	})
}
