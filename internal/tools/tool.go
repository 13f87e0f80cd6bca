// ABOUTME: Canonical external tool type shared by the server document and user rows
// ABOUTME: Normalization from both source shapes happens at the ingestion boundary

package tools

import (
	"fmt"

	"github.com/techguides/techhub/internal/store"
)

// Tool modalities. The type decides how the dispatch engine acts on a tool.
const (
	TypeExecutable    = "executable"
	TypeScript        = "script"
	TypeWebsite       = "website"
	TypeProtocol      = "protocol"
	TypeClientService = "client_service"
)

// Tool is the canonical, normalized shape of an external tool regardless of
// where it came from. Server tools have Owner == ""; user tools carry the
// owning username.
type Tool struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Icon           string `json:"icon,omitempty"`
	Type           string `json:"type"`
	ExecutablePath string `json:"executable_path,omitempty"`
	WebsiteURL     string `json:"website_url,omitempty"`
	ProtocolURL    string `json:"protocol_url,omitempty"`
	Enabled        bool   `json:"enabled"`
	Hidden         bool   `json:"hidden,omitempty"`
	Owner          string `json:"owner,omitempty"`
}

// IsServerTool reports whether the tool comes from the server document.
func (t *Tool) IsServerTool() bool {
	return t.Owner == ""
}

// Validate checks the per-type field invariants. A tool that fails
// validation must never reach the dispatch engine.
func (t *Tool) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMisconfiguredTool)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: missing name", ErrMisconfiguredTool)
	}

	switch t.Type {
	case TypeExecutable, TypeScript:
		if t.ExecutablePath == "" {
			return fmt.Errorf("%w: %s tool %q has no executable path", ErrMisconfiguredTool, t.Type, t.ID)
		}
	case TypeWebsite:
		if t.WebsiteURL == "" {
			return fmt.Errorf("%w: website tool %q has no website url", ErrMisconfiguredTool, t.ID)
		}
	case TypeProtocol:
		if t.ProtocolURL == "" {
			return fmt.Errorf("%w: protocol tool %q has no protocol url", ErrMisconfiguredTool, t.ID)
		}
	case TypeClientService:
		// Executable path is optional: client_service tools fall back to
		// the tool id as a standalone service name.
	default:
		return fmt.Errorf("%w: unknown tool type %q", ErrMisconfiguredTool, t.Type)
	}
	return nil
}

// fromUserTool normalizes a database row into the canonical shape.
func fromUserTool(row *store.UserTool) Tool {
	return Tool{
		ID:             row.ToolID,
		Name:           row.Name,
		Description:    row.Description,
		Icon:           row.Icon,
		Type:           row.Type,
		ExecutablePath: row.ExecutablePath,
		WebsiteURL:     row.WebsiteURL,
		ProtocolURL:    row.ProtocolURL,
		Enabled:        row.Enabled,
		Owner:          row.Username,
	}
}

// toUserTool converts a canonical tool into a database row owned by username.
func toUserTool(username string, t Tool) *store.UserTool {
	return &store.UserTool{
		Username:       username,
		ToolID:         t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Icon:           t.Icon,
		Type:           t.Type,
		ExecutablePath: t.ExecutablePath,
		WebsiteURL:     t.WebsiteURL,
		ProtocolURL:    t.ProtocolURL,
		Enabled:        t.Enabled,
	}
}
