package http

import (
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/engineer"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/request"
)

// ListEngineersRequest defines query parameters for listing engineers.
// room_id keeps only engineers assigned to that room. When date, start_time and
// end_time are all given, each engineer carries is_available.
type ListEngineersRequest struct {
	request.ListParams
	RoomID string `form:"room_id" binding:"omitempty,uuid"`
	Name   string `form:"name"`
	request.WindowQuery
}

type AssignRoomRequest struct {
	RoomID    string `json:"room_id" binding:"required,uuid"`
	IsPrimary bool   `json:"is_primary"`
}

// AssignmentURIRequest binds /engineers/:id/rooms/:roomId.
type AssignmentURIRequest struct {
	ID     string `uri:"id" binding:"required,uuid"`
	RoomID string `uri:"roomId" binding:"required,uuid"`
}

type SetAvailabilityRequest struct {
	Date   string `json:"date" binding:"required,datetime=2006-01-02"`
	Status string `json:"status" binding:"required,oneof=AVAILABLE UNAVAILABLE TIME_OFF"`
	Reason string `json:"reason"`
}

type ListAvailabilityRequest struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

type SetRateRequest struct {
	RoomID     string   `json:"room_id" binding:"required,uuid"`
	HourlyRate *float64 `json:"hourly_rate" binding:"omitempty,min=0"`
	MinRate    *float64 `json:"min_rate" binding:"omitempty,min=0"`
	MaxRate    *float64 `json:"max_rate" binding:"omitempty,min=0"`
}

type EngineerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`

	// Set only when the list was asked about a time window.
	IsAvailable   *bool  `json:"is_available,omitempty"`
	BlockedReason string `json:"blocked_reason,omitempty"`
}

func NewEngineerResponse(e *engineer.Engineer) EngineerResponse {
	return EngineerResponse{
		ID:       e.ID,
		Name:     e.Name,
		Email:    e.Email,
		IsActive: e.IsActive,
	}
}

type EngineerDetailResponse struct {
	EngineerResponse
	Rooms []AssignmentResponse `json:"rooms"`
}

type AssignmentResponse struct {
	RoomID    string    `json:"room_id"`
	RoomName  string    `json:"room_name"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAssignmentResponse(a engineer.Assignment) AssignmentResponse {
	return AssignmentResponse{
		RoomID:    a.RoomID,
		RoomName:  a.RoomName,
		IsPrimary: a.IsPrimary,
		CreatedAt: a.CreatedAt,
	}
}

type AvailabilityResponse struct {
	Date      string                      `json:"date"`
	Status    engineer.AvailabilityStatus `json:"status"`
	Reason    string                      `json:"reason"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

func NewAvailabilityResponse(a *engineer.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		Date:      clock.FormatDate(a.Date),
		Status:    a.Status,
		Reason:    a.Reason,
		UpdatedAt: a.UpdatedAt,
	}
}

type RateResponse struct {
	RoomID     string    `json:"room_id"`
	HourlyRate *float64  `json:"hourly_rate"`
	MinRate    *float64  `json:"min_rate"`
	MaxRate    *float64  `json:"max_rate"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewRateResponse(r *engineer.Rate) RateResponse {
	return RateResponse{
		RoomID:     r.RoomID,
		HourlyRate: r.HourlyRate,
		MinRate:    r.MinRate,
		MaxRate:    r.MaxRate,
		UpdatedAt:  r.UpdatedAt,
	}
}
