package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/studio-booking-backend/internal/booking"
	"github.com/nekogravitycat/studio-booking-backend/internal/engineer"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/response"
)

// AvailabilityChecker answers whether an engineer is free for a window.
type AvailabilityChecker interface {
	CheckEngineerAvailability(ctx context.Context, engineerID string, date time.Time, window clock.Interval) (*booking.EngineerAvailability, error)
}

type EngineerHandler struct {
	engineerService engineer.Service
	checker         AvailabilityChecker
}

func NewHandler(engineerService engineer.Service, checker AvailabilityChecker) *EngineerHandler {
	return &EngineerHandler{
		engineerService: engineerService,
		checker:         checker,
	}
}

func (h *EngineerHandler) List(c *gin.Context) {
	var req ListEngineersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	withAvailability := req.Requested()
	var date time.Time
	var window clock.Interval
	if withAvailability {
		var err error
		if date, window, err = req.Parse(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time window", "details": err.Error()})
			return
		}
	}

	engineers, total, err := h.engineerService.List(c.Request.Context(), engineer.Filter{
		RoomID:   req.RoomID,
		Name:     req.Name,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]EngineerResponse, len(engineers))
	for i, e := range engineers {
		items[i] = NewEngineerResponse(e)
		if !withAvailability {
			continue
		}
		avail, err := h.checker.CheckEngineerAvailability(c.Request.Context(), e.ID, date, window)
		if err != nil {
			response.Error(c, err)
			return
		}
		items[i].IsAvailable = &avail.Available
		items[i].BlockedReason = avail.Reason
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Get returns an engineer with the rooms they may work in.
func (h *EngineerHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	e, err := h.engineerService.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	assignments, err := h.engineerService.AssignedRooms(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := EngineerDetailResponse{
		EngineerResponse: NewEngineerResponse(e),
		Rooms:            make([]AssignmentResponse, len(assignments)),
	}
	for i, a := range assignments {
		resp.Rooms[i] = NewAssignmentResponse(a)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EngineerHandler) AssignRoom(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	a, err := h.engineerService.AssignRoom(c.Request.Context(), uri.ID, req.RoomID, req.IsPrimary)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewAssignmentResponse(*a))
}

func (h *EngineerHandler) UnassignRoom(c *gin.Context) {
	var uri AssignmentURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.engineerService.UnassignRoom(c.Request.Context(), uri.ID, uri.RoomID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetAvailability upserts the engineer's record for one date.
func (h *EngineerHandler) SetAvailability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := clock.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.engineerService.SetAvailability(c.Request.Context(), uri.ID, engineer.SetAvailabilityRequest{
		Date:   date,
		Status: engineer.AvailabilityStatus(req.Status),
		Reason: req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}

func (h *EngineerHandler) ListAvailability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req ListAvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	from, err := clock.ParseDate(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := clock.ParseDate(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.engineerService.ListAvailability(c.Request.Context(), uri.ID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]AvailabilityResponse, len(records))
	for i, a := range records {
		items[i] = NewAvailabilityResponse(a)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *EngineerHandler) SetRate(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	rt, err := h.engineerService.SetRate(c.Request.Context(), uri.ID, engineer.SetRateRequest{
		RoomID:     req.RoomID,
		HourlyRate: req.HourlyRate,
		MinRate:    req.MinRate,
		MaxRate:    req.MaxRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRateResponse(rt))
}

func (h *EngineerHandler) ListRates(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	rates, err := h.engineerService.ListRates(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RateResponse, len(rates))
	for i, r := range rates {
		items[i] = NewRateResponse(r)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
