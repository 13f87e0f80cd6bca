// ABOUTME: HTTP API server wiring routes, auth middleware, and the admin gate
// ABOUTME: Public routes are login and register; everything else needs a bearer token

package api

import (
	"log/slog"
	"net/http"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/content"
	"github.com/techguides/techhub/internal/dispatch"
	"github.com/techguides/techhub/internal/queue"
	"github.com/techguides/techhub/internal/store"
	"github.com/techguides/techhub/internal/tools"
)

// Server holds the API's collaborators and implements every handler.
type Server struct {
	store    store.Store
	registry *tools.Registry
	engine   *dispatch.Engine
	queue    *queue.Queue
	login    *auth.Login
	verifier auth.TokenVerifier
	content  *content.Service
	logger   *slog.Logger
}

// NewServer wires the API server.
func NewServer(
	st store.Store,
	registry *tools.Registry,
	engine *dispatch.Engine,
	q *queue.Queue,
	login *auth.Login,
	verifier auth.TokenVerifier,
	contentSvc *content.Service,
) *Server {
	return &Server{
		store:    st,
		registry: registry,
		engine:   engine,
		queue:    q,
		login:    login,
		verifier: verifier,
		content:  contentSvc,
		logger:   slog.Default().With("component", "api"),
	}
}

// Handler builds the routing tree. Specific public patterns win over the
// catch-all /api/ prefix, which carries the auth middleware.
func (s *Server) Handler() http.Handler {
	protected := http.NewServeMux()
	s.registerProtected(protected)

	authed := auth.Middleware(s.store, s.verifier)(protected)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("/api/", authed)
	return mux
}

func (s *Server) registerProtected(mux *http.ServeMux) {
	adminOnly := auth.RequireAdmin()
	admin := func(h http.HandlerFunc) http.Handler { return adminOnly(h) }

	// External tools
	mux.HandleFunc("GET /api/external-features", s.handleExternalFeatures)
	mux.HandleFunc("GET /api/external-tools", s.handleListExternalTools)
	mux.HandleFunc("POST /api/external-tools/run", s.handleRunTool)

	// Companion polling queue
	mux.HandleFunc("GET /api/client-service/queue", s.handleQueuePeek)
	mux.HandleFunc("POST /api/client-service/queue", s.handleQueueMutate)

	// Per-user tools
	mux.HandleFunc("GET /api/user-tools", s.handleListUserTools)
	mux.HandleFunc("POST /api/user-tools", s.handleCreateUserTool)
	mux.HandleFunc("PUT /api/user-tools/{id}", s.handleUpdateUserTool)
	mux.HandleFunc("DELETE /api/user-tools/{id}", s.handleDeleteUserTool)
	mux.HandleFunc("POST /api/user-tools/{id}/toggle", s.handleToggleUserTool)

	// Account
	mux.HandleFunc("GET /api/account", s.handleGetAccount)
	mux.HandleFunc("PUT /api/account", s.handleUpdateAccount)
	mux.HandleFunc("POST /api/account/password", s.handleChangePassword)
	mux.HandleFunc("DELETE /api/account", s.handleDeleteAccount)

	// Forum, resources, chat
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("POST /api/posts", s.handleCreatePost)
	mux.HandleFunc("GET /api/posts/{id}", s.handleGetPost)
	mux.HandleFunc("DELETE /api/posts/{id}", s.handleDeletePost)
	mux.HandleFunc("GET /api/posts/{id}/comments", s.handleListComments)
	mux.HandleFunc("POST /api/posts/{id}/comments", s.handleCreateComment)
	mux.HandleFunc("GET /api/resources", s.handleListResources)
	mux.HandleFunc("POST /api/resources", s.handleCreateResource)
	mux.HandleFunc("DELETE /api/resources/{id}", s.handleDeleteResource)
	mux.HandleFunc("GET /api/chat", s.handleListChat)
	mux.HandleFunc("POST /api/chat", s.handlePostChat)

	// Admin surface
	mux.Handle("GET /api/admin/tools", admin(s.handleAdminListTools))
	mux.Handle("POST /api/admin/tools", admin(s.handleAdminCreateTool))
	mux.Handle("PUT /api/admin/tools/{id}", admin(s.handleAdminUpdateTool))
	mux.Handle("DELETE /api/admin/tools/{id}", admin(s.handleAdminDeleteTool))
	mux.Handle("GET /api/admin/settings", admin(s.handleAdminGetSettings))
	mux.Handle("PUT /api/admin/settings", admin(s.handleAdminUpdateSettings))
	mux.Handle("GET /api/admin/users", admin(s.handleAdminListUsers))
	mux.Handle("POST /api/admin/users/{username}/external-features", admin(s.handleAdminSetExternalFeatures))
	mux.Handle("GET /api/admin/tool-usage", admin(s.handleAdminListToolUsage))
	mux.Handle("POST /api/admin/categories", admin(s.handleAdminCreateCategory))
	mux.Handle("DELETE /api/admin/categories/{id}", admin(s.handleAdminDeleteCategory))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
