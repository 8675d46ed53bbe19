package api

import (
	"errors"
	"net/http"

	"github.com/parkvault/pv-backend/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		ValidationErr("Invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		ValidationErr("Invalid request body", []ErrorDetail{
			{Field: "email", Message: "email and password are required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	access, refresh, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			Unauthorized("Invalid email or password").Write(w, http.StatusUnauthorized)
		case errors.Is(err, auth.ErrLoginThrottled):
			NewError(CodeRateLimited, "Too many failed login attempts, try again later").Write(w, http.StatusTooManyRequests)
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	respondJSON(w, http.StatusOK, TokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		ValidationErr("Invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}

	access, refresh, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshInvalid) {
			Unauthorized("Invalid or expired refresh token").Write(w, http.StatusUnauthorized)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, TokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		ValidationErr("Invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
