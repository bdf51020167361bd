package types

import "time"

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// OpenRunRequest is the body of POST /v1/runs. All fields are optional.
type OpenRunRequest struct {
	// Free-form label, usually the test file or test name.
	// example: checkout.cy.ts
	Name string `json:"name,omitempty" example:"checkout.cy.ts"`
	// Start the run in degraded-network mode.
	// example: false
	Offline bool `json:"offline,omitempty" example:"false"`
}

// RunInfo describes an open run.
type RunInfo struct {
	// Run identifier used in subsequent requests.
	// example: 3f1c2d4e-9b7a-4c1e-8f7e-2a6b5c4d3e2f
	ID string `json:"id" example:"3f1c2d4e-9b7a-4c1e-8f7e-2a6b5c4d3e2f"`
	// example: checkout.cy.ts
	Name string `json:"name,omitempty" example:"checkout.cy.ts"`
	// example: false
	Offline bool `json:"offline" example:"false"`
	// Number of failures recorded so far.
	// example: 0
	Failures  int       `json:"failures" example:"0"`
	CreatedAt time.Time `json:"created_at"`
}

// RunsResponse is returned by GET /v1/runs.
type RunsResponse struct {
	Runs []RunInfo `json:"runs"`
}

// EventRequest is one observed page event, body of POST /v1/runs/{id}/events.
type EventRequest struct {
	// Source event name; defaults to "console".
	// example: console
	Event string `json:"event,omitempty" example:"console"`
	// Event category, e.g. the console API type.
	// example: error
	Category string `json:"category" example:"error"`
	// Message text.
	// example: Unexpected crash in widget X
	Message string `json:"message" example:"Unexpected crash in widget X"`
}

// EventResponse tells the caller what happened to the event.
type EventResponse struct {
	// One of ignored, suppressed, forwarded. Forwarded means the run failed.
	// example: forwarded
	Verdict string `json:"verdict" example:"forwarded"`
	// Suppressing rule, set only for suppressed.
	// example: global-warning
	Rule string `json:"rule,omitempty" example:"global-warning"`
}

// ModeRequest is the body of PUT /v1/runs/{id}/mode.
type ModeRequest struct {
	// example: true
	Offline bool `json:"offline" example:"true"`
}

// Failure is one forwarded event.
type Failure struct {
	// example: error
	Category string `json:"category" example:"error"`
	// example: Unexpected crash in widget X
	Message string `json:"message" example:"Unexpected crash in widget X"`
}

// RunResult is returned by DELETE /v1/runs/{id}.
type RunResult struct {
	// example: 3f1c2d4e-9b7a-4c1e-8f7e-2a6b5c4d3e2f
	ID string `json:"id" example:"3f1c2d4e-9b7a-4c1e-8f7e-2a6b5c4d3e2f"`
	// Subscriptions removed when the run ended.
	// example: 1
	Removed int `json:"removed" example:"1"`
	// Forwarded events in arrival order. Empty means the run passed.
	Failures []Failure `json:"failures"`
	// Suppressed event counts by rule.
	Suppressed map[string]int `json:"suppressed,omitempty"`
	// Events of untracked categories.
	// example: 3
	Ignored int `json:"ignored" example:"3"`
}

// RulesResponse is returned by GET /v1/rules.
type RulesResponse struct {
	// Rule names in priority order.
	Rules []string `json:"rules"`
}
