// Package playlint wraps the ansible-lint command line tool as a pair of
// network services.
//
// # Overview
//
// Playlint accepts Ansible playbook content over HTTP, runs ansible-lint
// against it in an isolated scratch directory, and returns the results in
// machine-readable form. It ships two front ends over one shared core:
//   - Lint API: synchronous upload-and-lint REST endpoints
//   - Tool Server: an agent-facing tool-dispatch protocol with progress
//     events pushed over SSE and WebSocket channels
//
// # Architecture
//
//	┌─────────────────┐       ┌──────────────────┐
//	│   Lint API      │       │   Tool Server    │
//	│  (Echo REST)    │       │ (tools + events) │
//	└────────┬────────┘       └────────┬─────────┘
//	         │                         │
//	┌────────▼─────────────────────────▼────────┐
//	│  Core: registry → guard → governor →      │
//	│  invoker (ansible-lint subprocess)        │
//	└───────────────────────────────────────────┘
//
// # Core Features
//
// Lint API:
//   - Multipart playbook upload linted under a named profile
//   - Exit-code passthrough (0 = clean, 2 = violations)
//   - Health and readiness probes against the lint binary
//
// Tool Server:
//   - Four dispatchable tools behind a uniform response envelope
//   - Streaming lint jobs with queued/validating/linting progress events
//   - SSE and WebSocket push channels fed by a shared event hub
//
// Core:
//   - Profile registry with a fixed set of supported lint profiles
//   - Input guard enforcing size, UTF-8, and YAML syntax limits
//   - Concurrency governor bounding simultaneous lint subprocesses
//   - Invoker running ansible-lint in a per-request temp directory
//
// # Getting Started
//
// Start the lint API server:
//
//	playlint server
//
// Start the tool server:
//
//	playlint toolserver
//
// Lint a playbook from the command line:
//
//	playlint lint --profile production site.yml
//
// Configuration is read from config.yaml and PL_-prefixed environment
// variables; see the config package for the full reference.
package playlint
