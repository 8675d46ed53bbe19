package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/auth"
)

type spotRequest struct {
	Name string `json:"name"`
}

func (s *Server) ListSpots(w http.ResponseWriter, r *http.Request) {
	spots, err := s.spots.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]SpotResponse, 0, len(spots))
	for _, spot := range spots {
		response = append(response, convertToSpotResponse(spot))
	}
	respondJSON(w, http.StatusOK, response)
}

func (s *Server) GetSpotByID(w http.ResponseWriter, r *http.Request) {
	spotID, err := uuid.Parse(chi.URLParam(r, "spotID"))
	if err != nil {
		ValidationErr("Invalid spot id", nil).Write(w, http.StatusBadRequest)
		return
	}

	spot, err := s.spots.Get(r.Context(), spotID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertToSpotResponse(spot))
}

func (s *Server) CreateSpot(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	var req spotRequest
	if err := decodeJSON(r, &req); err != nil {
		ValidationErr("Invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		ValidationErr("Invalid request body", []ErrorDetail{
			{Field: "name", Message: "name is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	spot, err := s.spots.Create(r.Context(), strings.TrimSpace(req.Name), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertToSpotResponse(spot))
}

func (s *Server) RenameSpot(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	spotID, err := uuid.Parse(chi.URLParam(r, "spotID"))
	if err != nil {
		ValidationErr("Invalid spot id", nil).Write(w, http.StatusBadRequest)
		return
	}

	var req spotRequest
	if err := decodeJSON(r, &req); err != nil {
		ValidationErr("Invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		ValidationErr("Invalid request body", []ErrorDetail{
			{Field: "name", Message: "name is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	spot, err := s.spots.Rename(r.Context(), spotID, strings.TrimSpace(req.Name), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertToSpotResponse(spot))
}
