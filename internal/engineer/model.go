package engineer

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound                 = apperror.New(http.StatusNotFound, "engineer not found")
	ErrRoomNotFound             = apperror.New(http.StatusNotFound, "room not found")
	ErrAmbiguousName            = apperror.New(http.StatusBadRequest, "more than one engineer has this name")
	ErrAlreadyAssigned          = apperror.New(http.StatusConflict, "engineer is already assigned to this room")
	ErrAssignmentNotFound       = apperror.New(http.StatusNotFound, "engineer is not assigned to this room")
	ErrInvalidAvailability      = apperror.New(http.StatusBadRequest, "invalid availability status")
	ErrInvalidRateRange         = apperror.New(http.StatusBadRequest, "rates must satisfy min_rate <= hourly_rate <= max_rate")
	ErrInvalidAvailabilityRange = apperror.New(http.StatusBadRequest, "from must not be after to")
)

// Engineer is a user in the engineer role.
type Engineer struct {
	ID       string
	Name     string
	Email    string
	IsActive bool
}

// Assignment grants an engineer the capability to work in a room.
type Assignment struct {
	EngineerID string
	RoomID     string
	RoomName   string
	IsPrimary  bool
	CreatedAt  time.Time
}

// AvailabilityStatus is an engineer's declared state for a calendar date.
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "AVAILABLE"
	AvailabilityUnavailable AvailabilityStatus = "UNAVAILABLE"
	AvailabilityTimeOff     AvailabilityStatus = "TIME_OFF"
)

func (s AvailabilityStatus) Valid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityTimeOff:
		return true
	}
	return false
}

// Availability is the per-date record; at most one exists per engineer and date.
type Availability struct {
	ID         string
	EngineerID string
	Date       time.Time
	Status     AvailabilityStatus
	Reason     string
	UpdatedAt  time.Time
}

// Blocks reports whether the record makes the engineer unbookable.
func (a *Availability) Blocks() bool {
	return a != nil && a.Status != AvailabilityAvailable
}

// BlockedReason returns the stored reason, falling back to the status.
func (a *Availability) BlockedReason() string {
	if a.Reason != "" {
		return a.Reason
	}
	return string(a.Status)
}

// Rate is a per-room rate override for an engineer.
type Rate struct {
	EngineerID string
	RoomID     string
	HourlyRate *float64
	MinRate    *float64
	MaxRate    *float64
	UpdatedAt  time.Time
}

// Filter defines parameters for listing engineers.
type Filter struct {
	RoomID   string // only engineers assigned to this room
	Name     string
	Page     int
	PageSize int
}
