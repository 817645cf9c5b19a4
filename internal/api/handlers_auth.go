package api

import (
	"net/http"

	"ecotrack.dev/ecotrack/internal/auth"
	"ecotrack.dev/ecotrack/internal/store"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleRegister creates a regular active user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "registration unavailable")
		return
	}

	user := &store.User{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: hash,
		Role:           store.RoleUser,
		IsActive:       true,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.logger.Info("user registered", "username", user.Username)
	respondJSON(w, http.StatusCreated, user)
}

// handleLogin checks credentials and issues a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(req.Password, user.HashedPassword) {
		s.authFailure(w, "bad_credentials", "incorrect username or password")
		return
	}

	if !user.IsActive {
		s.authFailure(w, "inactive_user", "user account is disabled")
		return
	}

	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		s.logger.Error("token issuance failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "login unavailable")
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
