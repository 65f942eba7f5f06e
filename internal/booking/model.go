package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrRoomNotFound     = apperror.New(http.StatusNotFound, "room not found")
	ErrEngineerNotFound = apperror.New(http.StatusNotFound, "engineer not found")

	ErrUnauthenticated  = apperror.New(http.StatusUnauthorized, "authentication required")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrDiscountTooLarge = apperror.New(http.StatusForbidden, "discount exceeds the limit for your role")

	ErrClientRequired    = apperror.New(http.StatusBadRequest, "client name is required")
	ErrDateRequired      = apperror.New(http.StatusBadRequest, "date is required")
	ErrInvalidTime       = apperror.New(http.StatusBadRequest, "times must be in HH:MM format")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidHours      = apperror.New(http.StatusBadRequest, "additional hours must be between 1 and 24")
	ErrInvalidMethod     = apperror.New(http.StatusBadRequest, "invalid payment method")
	ErrInvalidAmount     = apperror.New(http.StatusBadRequest, "amount must be greater than zero")
	ErrInvalidDiscount   = apperror.New(http.StatusBadRequest, "discount must be between 0 and 100 percent")
	ErrEngineerRequired  = apperror.New(http.StatusBadRequest, "engineer id or name is required")
	ErrEngineerInactive  = apperror.New(http.StatusBadRequest, "engineer is inactive")
	ErrTerminalState     = apperror.New(http.StatusBadRequest, "booking is cancelled or completed")
	ErrInvalidTransition = apperror.New(http.StatusBadRequest, "invalid status transition")

	// Availability failures. These travel inside a ConflictError.
	ErrSlotTaken           = apperror.New(http.StatusConflict, "room is already booked for this time")
	ErrEngineerBooked      = apperror.New(http.StatusConflict, "engineer is already booked for this time")
	ErrRoomUnavailable     = apperror.New(http.StatusBadRequest, "room is not available")
	ErrRoomConflict        = apperror.New(http.StatusBadRequest, "room has a conflicting booking")
	ErrExtensionConflict   = apperror.New(http.StatusBadRequest, "extension conflicts with existing bookings")
	ErrEngineerNotAssigned = apperror.New(http.StatusBadRequest, "Engineer is not assigned to this room")
	ErrEngineerUnavailable = apperror.New(http.StatusBadRequest, "engineer is not available on this date")
	ErrEngineerConflict    = apperror.New(http.StatusBadRequest, "engineer has a conflicting booking")

	ErrConcurrentModification = apperror.New(http.StatusConflict, "booking was modified concurrently, please retry")
)

// MaxExtensionHours caps a single extension at one day.
const MaxExtensionHours = 24

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal statuses reject every time-window mutation.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodCashApp      PaymentMethod = "CASH_APP"
	MethodZelle        PaymentMethod = "ZELLE"
	MethodSquare       PaymentMethod = "SQUARE"
	MethodCreditCard   PaymentMethod = "CREDIT_CARD"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodOther        PaymentMethod = "OTHER"
)

// PaymentMethods lists every accepted method.
var PaymentMethods = []PaymentMethod{
	MethodCash, MethodCashApp, MethodZelle, MethodSquare,
	MethodCreditCard, MethodBankTransfer, MethodOther,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

type PaymentState string

const (
	PaymentUnpaid  PaymentState = "UNPAID"
	PaymentPartial PaymentState = "PARTIAL"
	PaymentPaid    PaymentState = "PAID"
)

// Booking is a session in one room on one date over [StartTime, EndTime).
// The engineer is referenced by id when resolved and otherwise carried as free text.
type Booking struct {
	ID          string
	ClientName  string
	ClientEmail *string
	ClientPhone *string
	Notes       string
	Date        time.Time

	RoomID         string
	RoomName       string
	OriginalRoomID *string
	RoomSwappedAt  *time.Time

	StartTime string // "HH:MM"
	EndTime   string // "HH:MM", may pass 24:00 after an extension

	EngineerID           *string
	EngineerName         *string
	OriginalEngineerID   *string
	OriginalEngineerName *string
	EngineerSwappedAt    *time.Time

	Status          Status
	DiscountPercent float64
	PriceOverride   *float64

	CreatedBy *string
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEngineer reports whether any engineer, resolved or free text, is attached.
func (b *Booking) HasEngineer() bool {
	return b.EngineerID != nil || (b.EngineerName != nil && *b.EngineerName != "")
}

// Interval returns the booked window.
func (b *Booking) Interval() (clock.Interval, error) {
	return clock.ParseInterval(b.StartTime, b.EndTime)
}

// SessionExtension records one successful extension. Rows are never updated.
type SessionExtension struct {
	ID              string
	BookingID       string
	OriginalEndTime string
	NewEndTime      string
	AdditionalHours int
	AdditionalCost  float64
	CreatedBy       *string
	CreatedAt       time.Time
}

// PaymentSplit is one partial or full payment. Rows are never updated.
type PaymentSplit struct {
	ID             string
	BookingID      string
	Method         PaymentMethod
	Amount         float64
	Reference      *string
	Notes          *string
	RecordedBy     *string
	RecordedByName string
	CreatedAt      time.Time
}

type Filter struct {
	Date       *time.Time
	RoomID     string
	EngineerID string
	Status     Status
	Page       int
	PageSize   int
	SortOrder  string
}
