package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/auth"
)

type createBookingRequest struct {
	SpotID uuid.UUID `json:"spot_id"`
}

func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		ValidationErr("Invalid request body", nil).Write(w, http.StatusBadRequest)
		return
	}
	if req.SpotID == uuid.Nil {
		ValidationErr("Invalid request body", []ErrorDetail{
			{Field: "spot_id", Message: "spot_id is required"},
		}).Write(w, http.StatusBadRequest)
		return
	}

	detail, err := s.bookings.Create(r.Context(), req.SpotID, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertToBookingResponse(detail))
}

func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	details, err := s.bookings.FindAll(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]BookingResponse, 0, len(details))
	for _, d := range details {
		response = append(response, convertToBookingResponse(d))
	}
	respondJSON(w, http.StatusOK, response)
}

func (s *Server) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		ValidationErr("Invalid booking id", nil).Write(w, http.StatusBadRequest)
		return
	}

	detail, err := s.bookings.FindOne(r.Context(), bookingID, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertToBookingResponse(detail))
}

func (s *Server) EndBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		ValidationErr("Invalid booking id", nil).Write(w, http.StatusBadRequest)
		return
	}

	detail, err := s.bookings.End(r.Context(), bookingID, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, convertToBookingResponse(detail))
}

func (s *Server) GetBookingEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		ValidationErr("Invalid booking id", nil).Write(w, http.StatusBadRequest)
		return
	}

	events, err := s.bookings.Events(r.Context(), bookingID, user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]BookingEventResponse, 0, len(events))
	for _, e := range events {
		response = append(response, convertToBookingEventResponse(e))
	}
	respondJSON(w, http.StatusOK, response)
}

func (s *Server) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetAuthenticatedUser(r.Context())
	if !ok {
		Unauthorized("Unauthorized").Write(w, http.StatusUnauthorized)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		ValidationErr("Invalid booking id", nil).Write(w, http.StatusBadRequest)
		return
	}

	if err := s.bookings.Remove(r.Context(), bookingID, user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
