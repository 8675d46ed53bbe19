package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/auth"
	"github.com/parkvault/pv-backend/internal/rbac"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	users, err := s.users.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, convertToUserResponse(u))
	}
	respondJSON(w, http.StatusOK, response)
}

func (s *Server) GetUserByID(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		ValidationErr("Invalid user id", nil).Write(w, http.StatusBadRequest)
		return
	}

	found, err := s.users.Get(r.Context(), userID, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertToUserResponse(found))
}

func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	found, err := s.users.Get(r.Context(), user.ID, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertToUserResponse(found))
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		ValidationErr("Invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}

	var details []ErrorDetail
	if !strings.Contains(req.Email, "@") {
		details = append(details, ErrorDetail{Field: "email", Message: "valid email is required"})
	}
	if len(req.Password) < 8 {
		details = append(details, ErrorDetail{Field: "password", Message: "password must be at least 8 characters"})
	}
	if req.Role == "" {
		req.Role = string(rbac.RoleUser)
	}
	if !rbac.ValidRole(rbac.Role(req.Role)) {
		details = append(details, ErrorDetail{Field: "role", Message: "role must be admin or user"})
	}
	if len(details) > 0 {
		ValidationErr("Invalid request body", details).Write(w, http.StatusBadRequest)
		return
	}

	created, err := s.users.Create(r.Context(), req.Email, req.Password, rbac.Role(req.Role), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertToUserResponse(created))
}

func (s *Server) AssignRole(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		ValidationErr("Invalid user id", nil).Write(w, http.StatusBadRequest)
		return
	}

	var req assignRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		ValidationErr("Invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}
	if !rbac.ValidRole(rbac.Role(req.Role)) {
		ValidationErr("Invalid request body", []ErrorDetail{
			{Field: "role", Message: "role must be admin or user"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	updated, err := s.users.AssignRole(r.Context(), userID, rbac.Role(req.Role), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertToUserResponse(updated))
}
