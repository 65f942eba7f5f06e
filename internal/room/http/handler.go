package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/studio-booking-backend/internal/auth"
	"github.com/nekogravitycat/studio-booking-backend/internal/booking"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/studio-booking-backend/internal/room"
)

// AvailabilityChecker answers whether a room is free for a window.
type AvailabilityChecker interface {
	CheckRoomAvailability(ctx context.Context, roomID string, date time.Time, window clock.Interval) (*booking.RoomAvailability, error)
}

type RoomHandler struct {
	roomService room.Service
	checker     AvailabilityChecker
}

func NewHandler(roomService room.Service, checker AvailabilityChecker) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		checker:     checker,
	}
}

// List retrieves rooms. With a date and window it also reports availability per room.
func (h *RoomHandler) List(c *gin.Context) {
	var req ListRoomsRequest
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

	rooms, total, err := h.roomService.List(c.Request.Context(), room.Filter{
		Status:    room.Status(req.Status),
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: strings.ToUpper(req.SortOrder),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewRoomResponse(r)
		if !withAvailability {
			continue
		}
		avail, err := h.checker.CheckRoomAvailability(c.Request.Context(), r.ID, date, window)
		if err != nil {
			response.Error(c, err)
			return
		}
		items[i].IsAvailable = &avail.Available
		items[i].BlockedReason = avail.Reason
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *RoomHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	r, err := h.roomService.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRoomResponse(r))
}

func (h *RoomHandler) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	r, err := h.roomService.Create(c.Request.Context(), room.CreateRequest{
		Name:                req.Name,
		Status:              room.Status(req.Status),
		BaseRate:            req.BaseRate,
		RateWithEngineer:    req.RateWithEngineer,
		RateWithoutEngineer: req.RateWithoutEngineer,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRoomResponse(r))
}

func (h *RoomHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body UpdateRoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	req := room.UpdateRequest{
		Name:                body.Name,
		BaseRate:            body.BaseRate,
		RateWithEngineer:    body.RateWithEngineer,
		RateWithoutEngineer: body.RateWithoutEngineer,
	}
	if body.Status != nil {
		st := room.Status(*body.Status)
		req.Status = &st
	}

	r, err := h.roomService.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRoomResponse(r))
}

func (h *RoomHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.roomService.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateLockout blocks the room for an inclusive date range.
func (h *RoomHandler) CreateLockout(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var req CreateLockoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	start, err := clock.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := clock.ParseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.roomService.AddLockout(c.Request.Context(), uri.ID, room.LockoutRequest{
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		CreatedBy: auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewLockoutResponse(l))
}

func (h *RoomHandler) ListLockouts(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	lockouts, err := h.roomService.ListLockouts(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]LockoutResponse, len(lockouts))
	for i, l := range lockouts {
		items[i] = NewLockoutResponse(l)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *RoomHandler) DeleteLockout(c *gin.Context) {
	var uri LockoutURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.roomService.DeleteLockout(c.Request.Context(), uri.ID, uri.LockoutID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
