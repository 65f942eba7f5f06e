package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/studio-booking-backend/internal/auth"
	"github.com/nekogravitycat/studio-booking-backend/internal/booking"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/response"
)

type BookingHandler struct {
	bookingService booking.Service
}

func NewHandler(bookingService booking.Service) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// renderError adds the alternatives carried by a ConflictError to the error body.
func renderError(c *gin.Context, err error) {
	var ce *booking.ConflictError
	if !errors.As(err, &ce) {
		response.Error(c, err)
		return
	}

	extra := gin.H{}
	if len(ce.Conflicts) > 0 {
		extra["conflicts"] = NewBookingResponses(ce.Conflicts)
	}
	if ce.AssignedRooms != nil || errors.Is(ce.Err, booking.ErrEngineerNotAssigned) {
		extra["assigned_rooms"] = NewAssignedRoomResponses(ce.AssignedRooms)
	}
	if ce.Reason != "" {
		extra["reason"] = ce.Reason
	}
	response.ErrorWith(c, ce.Err, extra)
}

func principal(c *gin.Context) auth.Principal {
	p, _ := auth.GetPrincipal(c)
	return p
}

// List retrieves bookings, optionally filtered by date, room, engineer or status.
func (h *BookingHandler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := booking.Filter{
		RoomID:     req.RoomID,
		EngineerID: req.EngineerID,
		Status:     booking.Status(req.Status),
		Page:       req.Page,
		PageSize:   req.PageSize,
		SortOrder:  strings.ToUpper(req.SortOrder),
	}
	if req.Date != "" {
		d, err := clock.ParseDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Date = &d
	}

	bookings, total, err := h.bookingService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(NewBookingResponses(bookings), req.Page, req.PageSize, total))
}

// Get returns a booking with its extensions and payment summary.
func (h *BookingHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	details, err := h.bookingService.GetDetails(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingDetailsResponse(details))
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := clock.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.bookingService.Create(c.Request.Context(), principal(c), booking.CreateRequest{
		ClientName:   req.ClientName,
		ClientEmail:  req.ClientEmail,
		ClientPhone:  req.ClientPhone,
		Notes:        req.Notes,
		Date:         date,
		RoomID:       req.RoomID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		EngineerID:   req.EngineerID,
		EngineerName: req.EngineerName,
	})
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// Extend lengthens the session by whole hours past its current end.
func (h *BookingHandler) Extend(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	res, err := h.bookingService.Extend(c.Request.Context(), principal(c), uri.ID, req.AdditionalHours)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExtendResponse{
		Booking:        NewBookingResponse(res.Booking),
		Extension:      NewExtensionResponse(res.Extension),
		AdditionalCost: res.AdditionalCost,
	})
}

func (h *BookingHandler) SwapEngineer(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req SwapEngineerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.bookingService.SwapEngineer(c.Request.Context(), principal(c), uri.ID, booking.SwapEngineerRequest{
		EngineerID:   req.EngineerID,
		EngineerName: req.EngineerName,
	})
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *BookingHandler) SwapRoom(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req SwapRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.bookingService.SwapRoom(c.Request.Context(), principal(c), uri.ID, req.RoomID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// RecordPayment stores a payment split and returns the updated payment position.
func (h *BookingHandler) RecordPayment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	res, err := h.bookingService.RecordPayment(c.Request.Context(), principal(c), uri.ID, booking.PaymentRequest{
		Method:    booking.PaymentMethod(req.Method),
		Amount:    req.Amount,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, PaymentResultResponse{
		Payment:                NewPaymentResponse(res.Payment),
		Booking:                NewBookingResponse(res.Booking),
		BookingStatus:          res.Booking.Status,
		ReconciliationResponse: NewReconciliationResponse(res.Reconciliation),
	})
}

func (h *BookingHandler) ListPayments(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	payments, err := h.bookingService.ListPayments(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = NewPaymentResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *BookingHandler) ListExtensions(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	extensions, err := h.bookingService.ListExtensions(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ExtensionResponse, len(extensions))
	for i, e := range extensions {
		items[i] = NewExtensionResponse(e)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *BookingHandler) ApplyDiscount(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.bookingService.ApplyDiscount(c.Request.Context(), principal(c), uri.ID, *req.Percent)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *BookingHandler) OverridePrice(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req PriceOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.bookingService.OverridePrice(c.Request.Context(), principal(c), uri.ID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	b, err := h.bookingService.Cancel(c.Request.Context(), principal(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *BookingHandler) Complete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	b, err := h.bookingService.Complete(c.Request.Context(), principal(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}
