package api

import (
	"encoding/json"
	"net/http"
)

type Server struct {
	db       DatabaseService
	bookings BookingService
	spots    SpotService
	users    UserService
	auth     AuthService
}

func NewServer(db DatabaseService, bookings BookingService, spots SpotService, users UserService, auth AuthService) *Server {
	return &Server{
		db:       db,
		bookings: bookings,
		spots:    spots,
		users:    users,
		auth:     auth,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
