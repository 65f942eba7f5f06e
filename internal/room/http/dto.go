package http

import (
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/studio-booking-backend/internal/room"
)

// ListRoomsRequest defines query parameters for listing rooms.
// When date, start_time and end_time are all given, each room carries is_available.
type ListRoomsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=AVAILABLE MAINTENANCE CLOSED"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=name status created_at"`
	request.WindowQuery
}

type CreateRoomRequest struct {
	Name                string   `json:"name" binding:"required"`
	Status              string   `json:"status" binding:"omitempty,oneof=AVAILABLE MAINTENANCE CLOSED"`
	BaseRate            *float64 `json:"base_rate" binding:"omitempty,min=0"`
	RateWithEngineer    *float64 `json:"rate_with_engineer" binding:"omitempty,min=0"`
	RateWithoutEngineer *float64 `json:"rate_without_engineer" binding:"omitempty,min=0"`
}

type UpdateRoomRequest struct {
	Name                *string  `json:"name"`
	Status              *string  `json:"status" binding:"omitempty,oneof=AVAILABLE MAINTENANCE CLOSED"`
	BaseRate            *float64 `json:"base_rate" binding:"omitempty,min=0"`
	RateWithEngineer    *float64 `json:"rate_with_engineer" binding:"omitempty,min=0"`
	RateWithoutEngineer *float64 `json:"rate_without_engineer" binding:"omitempty,min=0"`
}

type CreateLockoutRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"`
}

// LockoutURIRequest binds /rooms/:id/lockouts/:lockoutId.
type LockoutURIRequest struct {
	ID        string `uri:"id" binding:"required,uuid"`
	LockoutID string `uri:"lockoutId" binding:"required,uuid"`
}

type RoomResponse struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Status              room.Status `json:"status"`
	BaseRate            *float64    `json:"base_rate"`
	RateWithEngineer    *float64    `json:"rate_with_engineer"`
	RateWithoutEngineer *float64    `json:"rate_without_engineer"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	// Set only when the list was asked about a time window.
	IsAvailable   *bool  `json:"is_available,omitempty"`
	BlockedReason string `json:"blocked_reason,omitempty"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:                  r.ID,
		Name:                r.Name,
		Status:              r.Status,
		BaseRate:            r.BaseRate,
		RateWithEngineer:    r.RateWithEngineer,
		RateWithoutEngineer: r.RateWithoutEngineer,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

type LockoutResponse struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Reason    string    `json:"reason"`
	CreatedBy *string   `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLockoutResponse(l *room.Lockout) LockoutResponse {
	return LockoutResponse{
		ID:        l.ID,
		RoomID:    l.RoomID,
		StartDate: clock.FormatDate(l.StartDate),
		EndDate:   clock.FormatDate(l.EndDate),
		Reason:    l.Reason,
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
	}
}
