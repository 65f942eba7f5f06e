package booking

import (
	"github.com/nekogravitycat/studio-booking-backend/internal/engineer"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/apperror"
)

// ConflictError is an availability failure that carries what the caller
// needs to pick an alternative.
type ConflictError struct {
	Err           *apperror.AppError
	Conflicts     []*Booking
	AssignedRooms []engineer.Assignment
	Reason        string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return e.Err.Message + ": " + e.Reason
	}
	return e.Err.Message
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}
