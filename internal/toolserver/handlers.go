package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/playlint/playlint/internal/dispatcher"
	"github.com/playlint/playlint/models"
)

// probeTimeout bounds the health endpoint's liveness probe.
const probeTimeout = 5 * time.Second

// serviceDescriptor reports the server identity and its dispatch limits.
func (s *Server) serviceDescriptor(c echo.Context) error {
	gov := s.dispatcher.Governor()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":                  "ok",
		"service":                 "Playlint Tool Server",
		"available_tools":         s.dispatcher.ToolNames(),
		"max_concurrent_requests": gov.Capacity(),
		"request_timeout":         gov.Timeout().Seconds(),
	})
}

// healthCheck reports whether the underlying lint binary is reachable.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	healthy := s.dispatcher.Healthy(ctx) == nil
	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]interface{}{
		"status":       status,
		"ansible_lint": healthy,
		"timestamp":    time.Now().UTC().Format("2006-01-02 15:04:05"),
	})
}

// handleTools serves both tool listing and tool dispatch. Without a
// ?tool query parameter (and with no tool_name in the body) it returns
// the descriptor list; otherwise the named tool is dispatched with the
// body's inputs.
func (s *Server) handleTools(c echo.Context) error {
	req := &models.ToolRequest{}

	if c.Request().ContentLength != 0 {
		if err := json.NewDecoder(c.Request().Body).Decode(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid JSON in request body",
			})
		}
	}
	if tool := c.QueryParam("tool"); tool != "" {
		req.ToolName = tool
	}

	if req.ToolName == "" {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"tools": s.dispatcher.Descriptors(),
		})
	}

	s.debugLog("dispatching tool: %s", req.ToolName)
	envelope, err := s.dispatcher.Dispatch(c.Request().Context(), req)
	if err != nil {
		var notFound *dispatcher.ToolNotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":           notFound.Error(),
				"available_tools": notFound.Available,
			})
		}
		var malformed *dispatcher.MalformedRequestError
		if errors.As(err, &malformed) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": malformed.Reason,
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("Internal server error: %v", err),
		})
	}

	return c.JSON(http.StatusOK, envelope)
}

// handleSSE attaches the caller to the progress-event push channel.
// The subscription is torn down when the client disconnects.
func (s *Server) handleSSE(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil

		case message, ok := <-sub.send:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", eventName, message); err != nil {
				return nil
			}
			res.Flush()

		case <-keepalive.C:
			if _, err := fmt.Fprint(res, ": keepalive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
