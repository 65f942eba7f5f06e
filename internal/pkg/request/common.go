package request

import (
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
)

// ByIDRequest binds the :id path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds the paging and ordering query parameters shared by list endpoints.
type ListParams struct {
	Page      int    `form:"page,default=1" binding:"min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"min=1,max=100"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// WindowQuery asks a list endpoint to report availability for one session window.
type WindowQuery struct {
	Date      string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime string `form:"start_time"`
	EndTime   string `form:"end_time"`
}

// Requested reports whether all three window parameters were supplied.
func (q WindowQuery) Requested() bool {
	return q.Date != "" && q.StartTime != "" && q.EndTime != ""
}

// Parse returns the date and half-open window. Call it only when Requested.
func (q WindowQuery) Parse() (time.Time, clock.Interval, error) {
	date, err := clock.ParseDate(q.Date)
	if err != nil {
		return time.Time{}, clock.Interval{}, err
	}
	window, err := clock.ParseInterval(q.StartTime, q.EndTime)
	if err != nil {
		return time.Time{}, clock.Interval{}, err
	}
	return date, window, nil
}
