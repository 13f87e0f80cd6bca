// ABOUTME: Tool registry merging server document tools with per-user database tools
// ABOUTME: Visibility and resolution rules live here, not in HTTP handlers

package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/store"
)

// Registry is the single authority on which tools exist and who may see
// them. Server tools come from the JSON document; user tools come from the
// database. The document is read-mostly, so an RWMutex guards it.
type Registry struct {
	mu        sync.RWMutex
	doc       *Document
	path      string
	userTools store.UserToolStore
	logger    *slog.Logger
}

// NewRegistry loads the server tool document from path and wires the
// user-tool store. A legacy-format document is migrated and saved back.
func NewRegistry(path string, userTools store.UserToolStore) (*Registry, error) {
	doc, migrated, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		doc:       doc,
		path:      path,
		userTools: userTools,
		logger:    slog.Default().With("component", "tools"),
	}

	if migrated {
		if err := SaveDocument(path, doc); err != nil {
			return nil, fmt.Errorf("migrating legacy tools config: %w", err)
		}
		r.logger.Info("migrated legacy tools config", "path", path)
	}

	r.logger.Info("tool registry loaded", "path", path, "server_tools", len(doc.ServerTools))
	return r, nil
}

// Settings returns a copy of the current settings.
func (r *Registry) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.Settings
}

// ServerTools returns a copy of all server tools, including disabled and
// hidden ones. Admin surface only.
func (r *Registry) ServerTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, len(r.doc.ServerTools))
	copy(out, r.doc.ServerTools)
	return out
}

// ListEffective returns the tools visible to the caller: enabled, non-hidden
// server tools first in document order, then the caller's own enabled user
// tools when user tools are allowed. Admin principals have no user half.
func (r *Registry) ListEffective(ctx context.Context, principal auth.Principal) ([]Tool, error) {
	r.mu.RLock()
	visible := make([]Tool, 0, len(r.doc.ServerTools))
	for _, t := range r.doc.ServerTools {
		if t.Enabled && !t.Hidden {
			visible = append(visible, t)
		}
	}
	allowUserTools := r.doc.Settings.AllowUserTools
	r.mu.RUnlock()

	if !allowUserTools || principal.IsAdmin() {
		return visible, nil
	}

	rows, err := r.userTools.ListUserTools(ctx, principal.Name())
	if err != nil {
		return nil, fmt.Errorf("listing user tools: %w", err)
	}
	for _, row := range rows {
		if row.Enabled {
			visible = append(visible, fromUserTool(row))
		}
	}
	return visible, nil
}

// Resolve finds the tool the caller may run under toolID. Enabled server
// tools win, hidden ones included; otherwise the caller's own enabled user
// tools are consulted. Another user's tool never resolves. The caller's own
// tools stay resolvable even when allow_user_tools hides them from listings.
func (r *Registry) Resolve(ctx context.Context, principal auth.Principal, toolID string) (*Tool, error) {
	r.mu.RLock()
	for _, t := range r.doc.ServerTools {
		if t.ID == toolID && t.Enabled {
			r.mu.RUnlock()
			found := t
			return &found, nil
		}
	}
	r.mu.RUnlock()

	if principal.IsAdmin() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, toolID)
	}

	row, err := r.userTools.GetUserTool(ctx, principal.Name(), toolID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTool, toolID)
		}
		return nil, fmt.Errorf("resolving user tool: %w", err)
	}
	if !row.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, toolID)
	}
	tool := fromUserTool(row)
	return &tool, nil
}

// CreateUserTool validates and stores a new tool owned by username. When
// admin approval is required the tool starts out disabled.
func (r *Registry) CreateUserTool(ctx context.Context, username string, t Tool) (*Tool, error) {
	settings := r.Settings()
	if !settings.AllowUserTools || !settings.AllowCustomTools {
		return nil, ErrUserToolsDisabled
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	count, err := r.userTools.CountUserTools(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("counting user tools: %w", err)
	}
	if count >= settings.MaxUserTools {
		return nil, fmt.Errorf("%w: limit is %d", ErrLimitExceeded, settings.MaxUserTools)
	}

	if settings.RequireAdminApproval {
		t.Enabled = false
	}

	row := toUserTool(username, t)
	if err := r.userTools.CreateUserTool(ctx, row); err != nil {
		if errors.Is(err, store.ErrDuplicateTool) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		return nil, fmt.Errorf("creating user tool: %w", err)
	}

	created := fromUserTool(row)
	r.logger.Info("user tool created", "username", username, "tool_id", t.ID, "type", t.Type)
	return &created, nil
}

// UpdateUserTool validates and rewrites an existing tool owned by username.
func (r *Registry) UpdateUserTool(ctx context.Context, username string, t Tool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := r.userTools.UpdateUserTool(ctx, toUserTool(username, t)); err != nil {
		return fmt.Errorf("updating user tool: %w", err)
	}
	return nil
}

// DeleteUserTool removes a tool owned by username.
func (r *Registry) DeleteUserTool(ctx context.Context, username, toolID string) error {
	return r.userTools.DeleteUserTool(ctx, username, toolID)
}

// ToggleUserTool flips the enabled bit and returns the new state.
func (r *Registry) ToggleUserTool(ctx context.Context, username, toolID string) (bool, error) {
	return r.userTools.ToggleUserTool(ctx, username, toolID)
}

// ListUserTools returns all of username's tools, enabled or not.
func (r *Registry) ListUserTools(ctx context.Context, username string) ([]Tool, error) {
	rows, err := r.userTools.ListUserTools(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("listing user tools: %w", err)
	}
	out := make([]Tool, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromUserTool(row))
	}
	return out, nil
}

// AddServerTool appends a tool to the server document and persists it.
func (r *Registry) AddServerTool(t Tool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return r.mutateDocument(func(doc *Document) error {
		for _, existing := range doc.ServerTools {
			if existing.ID == t.ID {
				return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
			}
		}
		doc.ServerTools = append(doc.ServerTools, t)
		return nil
	})
}

// UpdateServerTool replaces the server tool with matching id.
func (r *Registry) UpdateServerTool(t Tool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return r.mutateDocument(func(doc *Document) error {
		for i, existing := range doc.ServerTools {
			if existing.ID == t.ID {
				doc.ServerTools[i] = t
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrUnknownTool, t.ID)
	})
}

// DeleteServerTool removes the server tool with matching id.
func (r *Registry) DeleteServerTool(toolID string) error {
	return r.mutateDocument(func(doc *Document) error {
		for i, existing := range doc.ServerTools {
			if existing.ID == toolID {
				doc.ServerTools = append(doc.ServerTools[:i], doc.ServerTools[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrUnknownTool, toolID)
	})
}

// UpdateSettings replaces the settings block and persists the document.
func (r *Registry) UpdateSettings(s Settings) error {
	if s.MaxUserTools < 0 {
		return fmt.Errorf("%w: max_user_tools must not be negative", ErrMisconfiguredTool)
	}
	return r.mutateDocument(func(doc *Document) error {
		doc.Settings = s
		return nil
	})
}

// mutateDocument applies fn to a copy of the document, saves the copy, and
// only swaps it in after the save succeeds. A persistence failure leaves the
// in-memory state untouched.
func (r *Registry) mutateDocument(fn func(*Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := &Document{
		ServerTools: make([]Tool, len(r.doc.ServerTools)),
		Settings:    r.doc.Settings,
	}
	copy(next.ServerTools, r.doc.ServerTools)

	if err := fn(next); err != nil {
		return err
	}
	if err := SaveDocument(r.path, next); err != nil {
		return fmt.Errorf("persisting tools config: %w", err)
	}
	r.doc = next
	return nil
}

// Reload re-reads the document from disk, keeping the current one when the
// read fails. Used by the file watcher for out-of-band edits.
func (r *Registry) Reload() error {
	doc, _, err := LoadDocument(r.path)
	if err != nil {
		r.logger.Warn("tools config reload failed, keeping current document", "error", err)
		return err
	}

	r.mu.Lock()
	r.doc = doc
	r.mu.Unlock()

	r.logger.Info("tools config reloaded", "server_tools", len(doc.ServerTools))
	return nil
}

// Path returns the document location on disk.
func (r *Registry) Path() string {
	return r.path
}
