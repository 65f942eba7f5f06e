package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/engineer"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/room"
)

// BookingReader lists bookings that still occupy time, i.e. neither
// cancelled nor completed. Both the repository and an open Tx implement it.
type BookingReader interface {
	ActiveForRoom(ctx context.Context, roomID string, date time.Time) ([]*Booking, error)
	ActiveForEngineer(ctx context.Context, engineerID string, date time.Time) ([]*Booking, error)
}

// RoomDirectory is the part of the room service scheduling depends on.
type RoomDirectory interface {
	GetByID(ctx context.Context, id string) (*room.Room, error)
	ActiveLockout(ctx context.Context, roomID string, date time.Time) (*room.Lockout, error)
}

// EngineerDirectory is the part of the engineer service scheduling depends on.
type EngineerDirectory interface {
	GetByID(ctx context.Context, id string) (*engineer.Engineer, error)
	FindByName(ctx context.Context, name string) (*engineer.Engineer, error)
	IsAssigned(ctx context.Context, engineerID, roomID string) (bool, error)
	AssignedRooms(ctx context.Context, engineerID string) ([]engineer.Assignment, error)
	GetAvailability(ctx context.Context, engineerID string, date time.Time) (*engineer.Availability, error)
}

// RoomAvailability is the answer for one room and window.
type RoomAvailability struct {
	Available bool
	Reason    string // set when the room itself is blocked
	Conflicts []*Booking
}

// EngineerAvailability is the answer for one engineer and window.
type EngineerAvailability struct {
	Available bool
	Reason    string // set when the engineer's day record blocks them
	Conflicts []*Booking
}

// Checker answers availability questions. It never writes.
type Checker struct {
	rooms     RoomDirectory
	engineers EngineerDirectory
}

func NewChecker(rooms RoomDirectory, engineers EngineerDirectory) *Checker {
	return &Checker{rooms: rooms, engineers: engineers}
}

// IsRoomAvailable reports whether window on date is free in roomID.
// A room that is not AVAILABLE, or is locked out on date, is blocked regardless of bookings.
// excludeID skips the booking being mutated.
func (c *Checker) IsRoomAvailable(ctx context.Context, reader BookingReader, roomID string, date time.Time, window clock.Interval, excludeID string) (*RoomAvailability, error) {
	rm, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if rm.Status != room.StatusAvailable {
		return &RoomAvailability{Reason: fmt.Sprintf("room is %s", rm.Status)}, nil
	}

	lockout, err := c.rooms.ActiveLockout(ctx, roomID, date)
	if err != nil {
		return nil, err
	}
	if lockout != nil {
		reason := "room is locked out"
		if lockout.Reason != "" {
			reason += ": " + lockout.Reason
		}
		return &RoomAvailability{Reason: reason}, nil
	}

	existing, err := reader.ActiveForRoom(ctx, roomID, date)
	if err != nil {
		return nil, err
	}
	conflicts := overlapping(existing, window, excludeID, halfOpen)
	return &RoomAvailability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// IsEngineerAvailable checks the engineer's day record first, then their bookings.
func (c *Checker) IsEngineerAvailable(ctx context.Context, reader BookingReader, engineerID string, date time.Time, window clock.Interval, excludeID string) (*EngineerAvailability, error) {
	return c.engineerAvailability(ctx, reader, engineerID, date, window, excludeID, halfOpen)
}

// IsEngineerAvailableForSwap is IsEngineerAvailable with the stricter swap rule:
// an existing booking conflicts when the requested start or end falls within
// it, boundaries included, or when it lies inside the requested window.
func (c *Checker) IsEngineerAvailableForSwap(ctx context.Context, reader BookingReader, engineerID string, date time.Time, window clock.Interval, excludeID string) (*EngineerAvailability, error) {
	return c.engineerAvailability(ctx, reader, engineerID, date, window, excludeID, touching)
}

func (c *Checker) engineerAvailability(ctx context.Context, reader BookingReader, engineerID string, date time.Time, window clock.Interval, excludeID string, rule overlapRule) (*EngineerAvailability, error) {
	record, err := c.engineers.GetAvailability(ctx, engineerID, date)
	if err != nil {
		return nil, err
	}
	if record.Blocks() {
		return &EngineerAvailability{Reason: record.BlockedReason()}, nil
	}

	existing, err := reader.ActiveForEngineer(ctx, engineerID, date)
	if err != nil {
		return nil, err
	}
	conflicts := overlapping(existing, window, excludeID, rule)
	return &EngineerAvailability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// overlapRule decides whether an existing booking window conflicts with a requested one.
type overlapRule func(existing, requested clock.Interval) bool

func halfOpen(existing, requested clock.Interval) bool {
	return existing.Overlaps(requested)
}

func touching(existing, requested clock.Interval) bool {
	return existing.Touches(requested)
}

// overlapping returns the active bookings that conflict with w under rule.
// Rows with unparseable times are treated as conflicts so they surface to a human.
func overlapping(bookings []*Booking, w clock.Interval, excludeID string, rule overlapRule) []*Booking {
	var out []*Booking
	for _, b := range bookings {
		if b.ID == excludeID || b.Status.Terminal() {
			continue
		}
		iv, err := b.Interval()
		if err != nil || rule(iv, w) {
			out = append(out, b)
		}
	}
	return out
}
