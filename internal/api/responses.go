package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/database"
)

type BookingResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	UserEmail string     `json:"user_email"`
	SpotID    uuid.UUID  `json:"spot_id"`
	SpotName  string     `json:"spot_name"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Open      bool       `json:"open"`
	CreatedAt time.Time  `json:"created_at"`
}

type SpotResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingEventResponse struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func convertToBookingResponse(d database.BookingDetail) BookingResponse {
	return BookingResponse{
		ID:        d.ID,
		UserID:    d.UserID,
		UserEmail: d.UserEmail,
		SpotID:    d.SpotID,
		SpotName:  d.SpotName,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		Open:      d.EndTime == nil,
		CreatedAt: d.CreatedAt,
	}
}

func convertToBookingEventResponse(e database.BookingEvent) BookingEventResponse {
	return BookingEventResponse{
		BookingID:  e.BookingID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		OccurredAt: e.OccurredAt,
	}
}

func convertToSpotResponse(s database.Spot) SpotResponse {
	return SpotResponse{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
	}
}

func convertToUserResponse(u database.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
