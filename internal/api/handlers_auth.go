// ABOUTME: Login, registration, and account management handlers
// ABOUTME: Registration is open; account mutations act on the caller only

package api

import (
	"errors"
	"net/http"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	token, principal, err := s.login.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrLoginFailed) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"token":    token,
		"username": principal.Name(),
		"isAdmin":  principal.IsAdmin(),
	})
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user := &store.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.store.CreateUser(r.Context(), user, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}

	s.logger.Info("user registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "username": user.Username})
}

type accountResponse struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	ExternalFeatures bool   `json:"external_features"`
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	user, err := s.store.GetUser(r.Context(), principal.Name())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		Username:         user.Username,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		ExternalFeatures: user.ExternalFeatures,
	})
}

type updateAccountRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var req updateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.store.GetUser(r.Context(), principal.Name())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName

	if err := s.store.UpdateUserProfile(r.Context(), user); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "new password required")
		return
	}

	err := s.store.ChangePassword(r.Context(), principal.Name(), req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, store.ErrBadCredentials) {
			writeError(w, http.StatusForbidden, "current password is incorrect")
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	if principal.IsAdmin() {
		writeError(w, http.StatusBadRequest, "admin sessions have no account to delete")
		return
	}

	if err := s.store.DeleteUser(r.Context(), principal.Name()); err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.Info("account deleted", "username", principal.Name())
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
