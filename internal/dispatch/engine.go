// ABOUTME: Dispatch engine turning a tool execution request into an action descriptor
// ABOUTME: Entitlement check, resolution, modality classification, queueing, audit

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/queue"
	"github.com/techguides/techhub/internal/store"
	"github.com/techguides/techhub/internal/tools"
)

var (
	// ErrNotEntitled is returned when the caller lacks external tools access.
	ErrNotEntitled = errors.New("external tools access denied")

	// ErrToolNotFound is returned when no tool the caller may run matches.
	ErrToolNotFound = errors.New("tool not found")

	// ErrUnknownToolType is returned for a resolved tool whose type the
	// engine cannot classify.
	ErrUnknownToolType = errors.New("unknown tool type")
)

// Action kinds returned to the caller.
const (
	ActionOpenURL       = "open_url"
	ActionProtocol      = "protocol"
	ActionClientService = "client_service"
	ActionExecute       = "execute"
)

// Action describes what should happen next. The server never executes
// anything itself: open_url/protocol/execute are descriptors the browser or
// companion acts on, and client_service means a command was queued.
type Action struct {
	Kind       string `json:"action"`
	URL        string `json:"url,omitempty"`
	Executable string `json:"executable,omitempty"`
	ToolID     string `json:"toolId,omitempty"`
	CommandID  string `json:"commandId,omitempty"`
}

// Registry is the slice of the tool registry the engine needs.
type Registry interface {
	Resolve(ctx context.Context, principal auth.Principal, toolID string) (*tools.Tool, error)
	Settings() tools.Settings
}

// Engine coordinates one tool execution request end to end.
type Engine struct {
	registry Registry
	queue    *queue.Queue
	usage    store.UsageStore
	logger   *slog.Logger
}

// NewEngine wires the dispatch engine. usage may be nil to disable auditing
// entirely (tests).
func NewEngine(registry Registry, q *queue.Queue, usage store.UsageStore) *Engine {
	return &Engine{
		registry: registry,
		queue:    q,
		usage:    usage,
		logger:   slog.Default().With("component", "dispatch"),
	}
}

// Execute runs the dispatch pipeline for toolID on behalf of the principal:
// entitlement, resolution, classification, and (for client_service tools)
// queueing. The returned Action is a descriptor; nothing runs server-side.
func (e *Engine) Execute(ctx context.Context, principal auth.Principal, toolID string) (*Action, error) {
	if !principal.CanUseExternalTools() {
		return nil, fmt.Errorf("%w: %s", ErrNotEntitled, principal.Name())
	}

	tool, err := e.registry.Resolve(ctx, principal, toolID)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, toolID)
		}
		return nil, err
	}

	action, err := e.classify(principal, tool)
	if err != nil {
		return nil, err
	}

	e.audit(ctx, principal, tool)
	e.logger.Info("tool dispatched",
		"username", principal.Name(),
		"tool_id", tool.ID,
		"type", tool.Type,
		"action", action.Kind)
	return action, nil
}

// classify maps the tool's modality onto an action descriptor.
func (e *Engine) classify(principal auth.Principal, tool *tools.Tool) (*Action, error) {
	switch tool.Type {
	case tools.TypeWebsite:
		if tool.WebsiteURL == "" {
			return nil, fmt.Errorf("%w: website tool %q has no url", tools.ErrMisconfiguredTool, tool.ID)
		}
		return &Action{Kind: ActionOpenURL, URL: tool.WebsiteURL}, nil

	case tools.TypeProtocol:
		if tool.ProtocolURL == "" {
			return nil, fmt.Errorf("%w: protocol tool %q has no url", tools.ErrMisconfiguredTool, tool.ID)
		}
		return &Action{Kind: ActionProtocol, URL: tool.ProtocolURL}, nil

	case tools.TypeClientService:
		inst := queue.NewToolInstruction(tool.ID, tool.ExecutablePath)
		cmd := e.queue.Enqueue(principal.Name(), inst.Encode())
		return &Action{Kind: ActionClientService, ToolID: tool.ID, CommandID: cmd.ID}, nil

	case tools.TypeExecutable, tools.TypeScript:
		if tool.ExecutablePath == "" {
			return nil, fmt.Errorf("%w: %s tool %q has no executable path", tools.ErrMisconfiguredTool, tool.Type, tool.ID)
		}
		return &Action{Kind: ActionExecute, Executable: tool.ExecutablePath}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownToolType, tool.Type)
	}
}

// audit appends a usage row when logging is enabled. Audit failures are
// logged and never fail the dispatch.
func (e *Engine) audit(ctx context.Context, principal auth.Principal, tool *tools.Tool) {
	if e.usage == nil || !e.registry.Settings().LogToolUsage {
		return
	}

	source := "server"
	if !tool.IsServerTool() {
		source = "user"
	}
	err := e.usage.AppendToolUsage(ctx, &store.ToolUsage{
		Username: principal.Name(),
		ToolID:   tool.ID,
		Source:   source,
		ToolType: tool.Type,
	})
	if err != nil {
		e.logger.Warn("tool usage audit failed", "tool_id", tool.ID, "error", err)
	}
}
