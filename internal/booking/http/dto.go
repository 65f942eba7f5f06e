package http

import (
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/booking"
	"github.com/nekogravitycat/studio-booking-backend/internal/engineer"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Date       string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	RoomID     string `form:"room_id" binding:"omitempty,uuid"`
	EngineerID string `form:"engineer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

type CreateBookingRequest struct {
	ClientName   string `json:"client_name" binding:"required"`
	ClientEmail  string `json:"client_email" binding:"omitempty,email"`
	ClientPhone  string `json:"client_phone"`
	Notes        string `json:"notes"`
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	RoomID       string `json:"room_id" binding:"required,uuid"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	EngineerID   string `json:"engineer_id" binding:"omitempty,uuid"`
	EngineerName string `json:"engineer_name"`
}

type ExtendRequest struct {
	AdditionalHours int `json:"additional_hours" binding:"required,min=1,max=24"`
}

// SwapEngineerRequest names the incoming engineer by id or by name.
type SwapEngineerRequest struct {
	EngineerID   string `json:"engineer_id" binding:"omitempty,uuid"`
	EngineerName string `json:"engineer_name"`
}

type SwapRoomRequest struct {
	RoomID string `json:"room_id" binding:"required,uuid"`
}

type RecordPaymentRequest struct {
	Method    string  `json:"method" binding:"required,oneof=CASH CASH_APP ZELLE SQUARE CREDIT_CARD BANK_TRANSFER OTHER"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Reference string  `json:"reference"`
	Notes     string  `json:"notes"`
}

type DiscountRequest struct {
	Percent *float64 `json:"percent" binding:"required,min=0,max=100"`
}

// PriceOverrideRequest sets the agreed total. A null amount clears the override.
type PriceOverrideRequest struct {
	Amount *float64 `json:"amount" binding:"omitempty,min=0"`
}

type BookingResponse struct {
	ID          string  `json:"id"`
	ClientName  string  `json:"client_name"`
	ClientEmail *string `json:"client_email"`
	ClientPhone *string `json:"client_phone"`
	Notes       string  `json:"notes"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`

	RoomID         string     `json:"room_id"`
	RoomName       string     `json:"room_name"`
	OriginalRoomID *string    `json:"original_room_id"`
	RoomSwappedAt  *time.Time `json:"room_swapped_at"`

	EngineerID           *string    `json:"engineer_id"`
	EngineerName         *string    `json:"engineer_name"`
	OriginalEngineerID   *string    `json:"original_engineer_id"`
	OriginalEngineerName *string    `json:"original_engineer_name"`
	EngineerSwappedAt    *time.Time `json:"engineer_swapped_at"`

	Status          booking.Status `json:"status"`
	DiscountPercent float64        `json:"discount_percent"`
	PriceOverride   *float64       `json:"price_override"`

	CreatedBy *string   `json:"created_by"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                   b.ID,
		ClientName:           b.ClientName,
		ClientEmail:          b.ClientEmail,
		ClientPhone:          b.ClientPhone,
		Notes:                b.Notes,
		Date:                 clock.FormatDate(b.Date),
		StartTime:            b.StartTime,
		EndTime:              b.EndTime,
		RoomID:               b.RoomID,
		RoomName:             b.RoomName,
		OriginalRoomID:       b.OriginalRoomID,
		RoomSwappedAt:        b.RoomSwappedAt,
		EngineerID:           b.EngineerID,
		EngineerName:         b.EngineerName,
		OriginalEngineerID:   b.OriginalEngineerID,
		OriginalEngineerName: b.OriginalEngineerName,
		EngineerSwappedAt:    b.EngineerSwappedAt,
		Status:               b.Status,
		DiscountPercent:      b.DiscountPercent,
		PriceOverride:        b.PriceOverride,
		CreatedBy:            b.CreatedBy,
		Version:              b.Version,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

func NewBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}

type ExtensionResponse struct {
	ID              string    `json:"id"`
	BookingID       string    `json:"booking_id"`
	OriginalEndTime string    `json:"original_end_time"`
	NewEndTime      string    `json:"new_end_time"`
	AdditionalHours int       `json:"additional_hours"`
	AdditionalCost  float64   `json:"additional_cost"`
	CreatedBy       *string   `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewExtensionResponse(e *booking.SessionExtension) ExtensionResponse {
	return ExtensionResponse{
		ID:              e.ID,
		BookingID:       e.BookingID,
		OriginalEndTime: e.OriginalEndTime,
		NewEndTime:      e.NewEndTime,
		AdditionalHours: e.AdditionalHours,
		AdditionalCost:  e.AdditionalCost,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
	}
}

type PaymentResponse struct {
	ID             string                `json:"id"`
	BookingID      string                `json:"booking_id"`
	Method         booking.PaymentMethod `json:"method"`
	Amount         float64               `json:"amount"`
	Reference      *string               `json:"reference"`
	Notes          *string               `json:"notes"`
	RecordedBy     *string               `json:"recorded_by"`
	RecordedByName string                `json:"recorded_by_name"`
	CreatedAt      time.Time             `json:"created_at"`
}

func NewPaymentResponse(p *booking.PaymentSplit) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		BookingID:      p.BookingID,
		Method:         p.Method,
		Amount:         p.Amount,
		Reference:      p.Reference,
		Notes:          p.Notes,
		RecordedBy:     p.RecordedBy,
		RecordedByName: p.RecordedByName,
		CreatedAt:      p.CreatedAt,
	}
}

type ReconciliationResponse struct {
	TotalPaid      float64              `json:"total_paid"`
	ExpectedAmount float64              `json:"expected_amount"`
	Balance        float64              `json:"balance"`
	PaymentStatus  booking.PaymentState `json:"payment_status"`
	IsFullyPaid    bool                 `json:"is_fully_paid"`
}

func NewReconciliationResponse(r booking.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		TotalPaid:      r.TotalPaid,
		ExpectedAmount: r.ExpectedAmount,
		Balance:        r.Balance,
		PaymentStatus:  r.State,
		IsFullyPaid:    r.IsFullyPaid,
	}
}

type BookingDetailsResponse struct {
	Booking    BookingResponse        `json:"booking"`
	Extensions []ExtensionResponse    `json:"extensions"`
	Payments   []PaymentResponse      `json:"payments"`
	Summary    ReconciliationResponse `json:"payment_summary"`
}

func NewBookingDetailsResponse(d *booking.Details) BookingDetailsResponse {
	resp := BookingDetailsResponse{
		Booking:    NewBookingResponse(d.Booking),
		Extensions: make([]ExtensionResponse, len(d.Extensions)),
		Payments:   make([]PaymentResponse, len(d.Payments)),
		Summary:    NewReconciliationResponse(d.Reconciliation),
	}
	for i, e := range d.Extensions {
		resp.Extensions[i] = NewExtensionResponse(e)
	}
	for i, p := range d.Payments {
		resp.Payments[i] = NewPaymentResponse(p)
	}
	return resp
}

type ExtendResponse struct {
	Booking        BookingResponse   `json:"booking"`
	Extension      ExtensionResponse `json:"extension"`
	AdditionalCost float64           `json:"additional_cost"`
}

// PaymentResultResponse is the payment plus the booking's updated position.
type PaymentResultResponse struct {
	Payment       PaymentResponse `json:"payment"`
	Booking       BookingResponse `json:"booking"`
	BookingStatus booking.Status  `json:"booking_status"`
	ReconciliationResponse
}

type AssignedRoomResponse struct {
	RoomID    string `json:"room_id"`
	RoomName  string `json:"room_name"`
	IsPrimary bool   `json:"is_primary"`
}

func NewAssignedRoomResponses(assignments []engineer.Assignment) []AssignedRoomResponse {
	items := make([]AssignedRoomResponse, len(assignments))
	for i, a := range assignments {
		items[i] = AssignedRoomResponse{RoomID: a.RoomID, RoomName: a.RoomName, IsPrimary: a.IsPrimary}
	}
	return items
}
