// ABOUTME: External tools handlers: entitlement check, listing, run, user tool CRUD
// ABOUTME: Non-entitled listing answers 200 with hasAccess false, not an error

package api

import (
	"net/http"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/dispatch"
	"github.com/techguides/techhub/internal/tools"
)

func (s *Server) handleExternalFeatures(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"has_external_features": principal.CanUseExternalTools(),
	})
}

func (s *Server) handleListExternalTools(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	if !principal.CanUseExternalTools() {
		writeJSON(w, http.StatusOK, map[string]any{
			"hasAccess": false,
			"tools":     []tools.Tool{},
		})
		return
	}

	list, err := s.registry.ListEffective(r.Context(), principal)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hasAccess": true,
		"tools":     list,
	})
}

type runToolRequest struct {
	ToolID string `json:"toolId"`
}

type runToolResponse struct {
	Success bool `json:"success"`
	*dispatch.Action
}

func (s *Server) handleRunTool(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var req runToolRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ToolID == "" {
		writeError(w, http.StatusBadRequest, "toolId required")
		return
	}

	action, err := s.engine.Execute(r.Context(), principal, req.ToolID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runToolResponse{Success: true, Action: action})
}

func (s *Server) handleListUserTools(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	list, err := s.registry.ListUserTools(r.Context(), principal.Name())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tools": list})
}

func (s *Server) handleCreateUserTool(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var tool tools.Tool
	if !decodeJSON(w, r, &tool) {
		return
	}

	created, err := s.registry.CreateUserTool(r.Context(), principal.Name(), tool)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "tool": created})
}

func (s *Server) handleUpdateUserTool(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var tool tools.Tool
	if !decodeJSON(w, r, &tool) {
		return
	}
	tool.ID = r.PathValue("id")

	if err := s.registry.UpdateUserTool(r.Context(), principal.Name(), tool); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteUserTool(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	if err := s.registry.DeleteUserTool(r.Context(), principal.Name(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleToggleUserTool(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	enabled, err := s.registry.ToggleUserTool(r.Context(), principal.Name(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "enabled": enabled})
}
