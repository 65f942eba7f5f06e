package engineer

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

type SetAvailabilityRequest struct {
	Date   time.Time
	Status AvailabilityStatus
	Reason string
}

type SetRateRequest struct {
	RoomID     string
	HourlyRate *float64
	MinRate    *float64
	MaxRate    *float64
}

type Service interface {
	GetByID(ctx context.Context, id string) (*Engineer, error)
	// FindByName resolves a display name to exactly one active engineer.
	FindByName(ctx context.Context, name string) (*Engineer, error)
	List(ctx context.Context, filter Filter) ([]*Engineer, int, error)

	AssignedRooms(ctx context.Context, engineerID string) ([]Assignment, error)
	IsAssigned(ctx context.Context, engineerID, roomID string) (bool, error)
	AssignRoom(ctx context.Context, engineerID, roomID string, primary bool) (*Assignment, error)
	UnassignRoom(ctx context.Context, engineerID, roomID string) error

	// GetAvailability returns nil when no record exists for the date.
	GetAvailability(ctx context.Context, engineerID string, date time.Time) (*Availability, error)
	SetAvailability(ctx context.Context, engineerID string, req SetAvailabilityRequest) (*Availability, error)
	ListAvailability(ctx context.Context, engineerID string, from, to time.Time) ([]*Availability, error)

	SetRate(ctx context.Context, engineerID string, req SetRateRequest) (*Rate, error)
	ListRates(ctx context.Context, engineerID string) ([]*Rate, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("service", "engineer"),
	}
}

func (s *service) GetByID(ctx context.Context, id string) (*Engineer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByName(ctx context.Context, name string) (*Engineer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNotFound
	}
	matches, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, ErrAmbiguousName
	}
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Engineer, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) AssignedRooms(ctx context.Context, engineerID string) ([]Assignment, error) {
	return s.repo.ListAssignments(ctx, engineerID)
}

func (s *service) IsAssigned(ctx context.Context, engineerID, roomID string) (bool, error) {
	return s.repo.IsAssigned(ctx, engineerID, roomID)
}

func (s *service) AssignRoom(ctx context.Context, engineerID, roomID string, primary bool) (*Assignment, error) {
	if _, err := s.repo.GetByID(ctx, engineerID); err != nil {
		return nil, err
	}

	a := &Assignment{EngineerID: engineerID, RoomID: roomID, IsPrimary: primary}
	if err := s.repo.Assign(ctx, a); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "engineer assigned to room",
		"engineer_id", engineerID, "room_id", roomID, "is_primary", primary)
	return a, nil
}

func (s *service) UnassignRoom(ctx context.Context, engineerID, roomID string) error {
	if err := s.repo.Unassign(ctx, engineerID, roomID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "engineer unassigned from room", "engineer_id", engineerID, "room_id", roomID)
	return nil
}

func (s *service) GetAvailability(ctx context.Context, engineerID string, date time.Time) (*Availability, error) {
	return s.repo.GetAvailability(ctx, engineerID, date)
}

func (s *service) SetAvailability(ctx context.Context, engineerID string, req SetAvailabilityRequest) (*Availability, error) {
	if !req.Status.Valid() {
		return nil, ErrInvalidAvailability
	}
	if _, err := s.repo.GetByID(ctx, engineerID); err != nil {
		return nil, err
	}

	a := &Availability{
		EngineerID: engineerID,
		Date:       req.Date,
		Status:     req.Status,
		Reason:     strings.TrimSpace(req.Reason),
	}
	if err := s.repo.UpsertAvailability(ctx, a); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "engineer availability set",
		"engineer_id", engineerID,
		"date", a.Date.Format(time.DateOnly),
		"status", a.Status,
	)
	return a, nil
}

func (s *service) ListAvailability(ctx context.Context, engineerID string, from, to time.Time) ([]*Availability, error) {
	if to.Before(from) {
		return nil, ErrInvalidAvailabilityRange
	}
	if _, err := s.repo.GetByID(ctx, engineerID); err != nil {
		return nil, err
	}
	return s.repo.ListAvailability(ctx, engineerID, from, to)
}

func (s *service) SetRate(ctx context.Context, engineerID string, req SetRateRequest) (*Rate, error) {
	if !rateRangeValid(req.MinRate, req.HourlyRate, req.MaxRate) {
		return nil, ErrInvalidRateRange
	}
	if _, err := s.repo.GetByID(ctx, engineerID); err != nil {
		return nil, err
	}

	rt := &Rate{
		EngineerID: engineerID,
		RoomID:     req.RoomID,
		HourlyRate: req.HourlyRate,
		MinRate:    req.MinRate,
		MaxRate:    req.MaxRate,
	}
	if err := s.repo.UpsertRate(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *service) ListRates(ctx context.Context, engineerID string) ([]*Rate, error) {
	if _, err := s.repo.GetByID(ctx, engineerID); err != nil {
		return nil, err
	}
	return s.repo.ListRates(ctx, engineerID)
}

// rateRangeValid checks every ordering between the rates that are set.
func rateRangeValid(minRate, hourly, maxRate *float64) bool {
	vals := []*float64{minRate, hourly, maxRate}
	for _, v := range vals {
		if v != nil && *v < 0 {
			return false
		}
	}
	for i := 0; i < len(vals); i++ {
		for j := i + 1; j < len(vals); j++ {
			if vals[i] != nil && vals[j] != nil && *vals[i] > *vals[j] {
				return false
			}
		}
	}
	return true
}
