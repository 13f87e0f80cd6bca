// ABOUTME: Forum, resource library, and chat board handlers
// ABOUTME: Thin adapters over the content service

package api

import (
	"net/http"
	"strconv"

	"github.com/techguides/techhub/internal/auth"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.content.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "categories": categories})
}

func parseLimit(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	posts, err := s.content.ListPosts(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "posts": posts})
}

type createPostRequest struct {
	CategoryID string   `json:"category_id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var req createPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CategoryID == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "category_id and title required")
		return
	}

	p, err := s.content.CreatePost(r.Context(), principal, req.CategoryID, req.Title, req.Body, req.Tags)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "post": p})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	rendered, err := s.content.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"post":    rendered.Post,
		"html":    rendered.HTML,
	})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	if err := s.content.DeletePost(r.Context(), principal, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.content.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "comments": comments})
}

type createCommentRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var req createCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "body required")
		return
	}

	c, err := s.content.CreateComment(r.Context(), principal, r.PathValue("id"), req.Body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "comment": c})
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := s.content.ListResources(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "resources": resources})
}

type createResourceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var req createResourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}

	res, err := s.content.CreateResource(r.Context(), principal, req.Title, req.Description, req.Filename)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "resource": res})
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	if err := s.content.DeleteResource(r.Context(), principal, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleListChat(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	msgs, err := s.content.ListChat(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "messages": msgs})
}

type postChatRequest struct {
	Body  string `json:"body"`
	Image string `json:"image"`
}

func (s *Server) handlePostChat(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var req postChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Body == "" && req.Image == "" {
		writeError(w, http.StatusBadRequest, "body or image required")
		return
	}

	m, err := s.content.PostChatMessage(r.Context(), principal, req.Body, req.Image)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": m})
}
