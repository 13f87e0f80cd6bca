// ABOUTME: Sentinel errors for the tool registry
// ABOUTME: Callers match these with errors.Is to map onto HTTP status codes

package tools

import "errors"

var (
	// ErrUnknownTool is returned when resolution finds no enabled tool
	// visible to the caller under the requested id.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMisconfiguredTool is returned when a tool fails its per-type
	// field invariants.
	ErrMisconfiguredTool = errors.New("misconfigured tool")

	// ErrDuplicateID is returned when a user already owns a tool with
	// the same id.
	ErrDuplicateID = errors.New("duplicate tool id")

	// ErrLimitExceeded is returned when creating a tool would exceed the
	// per-user cap.
	ErrLimitExceeded = errors.New("user tool limit exceeded")

	// ErrUserToolsDisabled is returned when user-defined tools are turned
	// off in the server settings.
	ErrUserToolsDisabled = errors.New("user tools are disabled")
)
