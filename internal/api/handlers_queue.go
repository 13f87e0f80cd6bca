// ABOUTME: Companion polling queue handlers: peek, legacy add, and complete
// ABOUTME: Queue access requires the external tools entitlement

package api

import (
	"net/http"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/queue"
)

func (s *Server) handleQueuePeek(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	if !principal.CanUseExternalTools() {
		writeError(w, http.StatusForbidden, "external tools access denied")
		return
	}

	pending := s.queue.Pending(principal.Name())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"queue":   pending,
		"count":   len(pending),
	})
}

type queueMutateRequest struct {
	Action string `json:"action"`
	ToolID string `json:"tool_id"`
	TaskID string `json:"task_id"`
}

// handleQueueMutate serves the legacy combined endpoint: action "add"
// resolves a tool and enqueues its launch instruction directly; action
// "complete" removes a finished entry.
func (s *Server) handleQueueMutate(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	if !principal.CanUseExternalTools() {
		writeError(w, http.StatusForbidden, "external tools access denied")
		return
	}

	var req queueMutateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	switch req.Action {
	case "add":
		if req.ToolID == "" {
			writeError(w, http.StatusBadRequest, "tool_id required")
			return
		}
		tool, err := s.registry.Resolve(r.Context(), principal, req.ToolID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		inst := queue.NewToolInstruction(tool.ID, tool.ExecutablePath)
		cmd := s.queue.Enqueue(principal.Name(), inst.Encode())
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "task_id": cmd.ID})

	case "complete":
		if req.TaskID == "" {
			writeError(w, http.StatusBadRequest, "task_id required")
			return
		}
		// Completion is idempotent; an absent id is still a success
		s.queue.Complete(principal.Name(), req.TaskID)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
