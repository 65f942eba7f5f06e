package room

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "room not found")
	ErrLockoutNotFound  = apperror.New(http.StatusNotFound, "lockout not found")
	ErrEmptyName        = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrNameTaken        = apperror.New(http.StatusConflict, "room name already used")
	ErrInvalidStatus    = apperror.New(http.StatusBadRequest, "invalid room status")
	ErrNegativeRate     = apperror.New(http.StatusBadRequest, "rates cannot be negative")
	ErrInvalidDateRange = apperror.New(http.StatusBadRequest, "start_date must not be after end_date")
	ErrRoomInUse        = apperror.New(http.StatusConflict, "room is referenced by bookings")
)

// Status is the operational state of a room.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusMaintenance Status = "MAINTENANCE"
	StatusClosed      Status = "CLOSED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusClosed:
		return true
	}
	return false
}

// DefaultHourlyRate applies when a room has no rate configured at all.
const DefaultHourlyRate = 150.0

// Room is a bookable studio room with its hourly pricing.
type Room struct {
	ID                  string
	Name                string
	Status              Status
	BaseRate            *float64
	RateWithEngineer    *float64
	RateWithoutEngineer *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HourlyBaseRate returns the base rate or the studio default.
func (r *Room) HourlyBaseRate() float64 {
	if r.BaseRate != nil {
		return *r.BaseRate
	}
	return DefaultHourlyRate
}

// Lockout blocks a room for an inclusive range of calendar dates.
type Lockout struct {
	ID        string
	RoomID    string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	CreatedBy *string
	CreatedAt time.Time
}

// Covers reports whether the lockout applies on date.
func (l *Lockout) Covers(date time.Time) bool {
	d := date.Format(time.DateOnly)
	return l.StartDate.Format(time.DateOnly) <= d && d <= l.EndDate.Format(time.DateOnly)
}

// Filter defines parameters for listing rooms.
type Filter struct {
	Status    Status
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
