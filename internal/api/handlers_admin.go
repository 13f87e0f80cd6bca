// ABOUTME: Admin handlers: server tool CRUD, settings, entitlements, usage audit
// ABOUTME: All routes here sit behind the RequireAdmin middleware

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/techguides/techhub/internal/store"
	"github.com/techguides/techhub/internal/tools"
)

func (s *Server) handleAdminListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tools":   s.registry.ServerTools(),
	})
}

func (s *Server) handleAdminCreateTool(w http.ResponseWriter, r *http.Request) {
	var tool tools.Tool
	if !decodeJSON(w, r, &tool) {
		return
	}

	if err := s.registry.AddServerTool(tool); err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.Info("server tool added", "tool_id", tool.ID, "type", tool.Type)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (s *Server) handleAdminUpdateTool(w http.ResponseWriter, r *http.Request) {
	var tool tools.Tool
	if !decodeJSON(w, r, &tool) {
		return
	}
	tool.ID = r.PathValue("id")

	if err := s.registry.UpdateServerTool(tool); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAdminDeleteTool(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.DeleteServerTool(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAdminGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": s.registry.Settings(),
	})
}

func (s *Server) handleAdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings tools.Settings
	if !decodeJSON(w, r, &settings) {
		return
	}

	if err := s.registry.UpdateSettings(settings); err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.Info("tool settings updated",
		"allow_user_tools", settings.AllowUserTools,
		"max_user_tools", settings.MaxUserTools)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]accountResponse, 0, len(users))
	for _, u := range users {
		out = append(out, accountResponse{
			Username:         u.Username,
			Email:            u.Email,
			FirstName:        u.FirstName,
			LastName:         u.LastName,
			ExternalFeatures: u.ExternalFeatures,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": out})
}

type setExternalFeaturesRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleAdminSetExternalFeatures(w http.ResponseWriter, r *http.Request) {
	var req setExternalFeaturesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	username := r.PathValue("username")

	if err := s.store.SetExternalFeatures(r.Context(), username, req.Enabled); err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.Info("external features changed", "username", username, "enabled", req.Enabled)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "enabled": req.Enabled})
}

func (s *Server) handleAdminListToolUsage(w http.ResponseWriter, r *http.Request) {
	filter := store.ToolUsageFilter{}
	q := r.URL.Query()
	if v := q.Get("username"); v != "" {
		filter.Username = &v
	}
	if v := q.Get("tool_id"); v != "" {
		filter.ToolID = &v
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		filter.Since = &since
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	rows, err := s.store.ListToolUsage(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"usage":   rows,
		"count":   len(rows),
	})
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleAdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	c, err := s.content.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "category": c})
}

func (s *Server) handleAdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
