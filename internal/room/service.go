package room

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

type CreateRequest struct {
	Name                string
	Status              Status
	BaseRate            *float64
	RateWithEngineer    *float64
	RateWithoutEngineer *float64
}

type UpdateRequest struct {
	Name                *string
	Status              *Status
	BaseRate            *float64
	RateWithEngineer    *float64
	RateWithoutEngineer *float64
}

type LockoutRequest struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	CreatedBy string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Room, error)
	Delete(ctx context.Context, id string) error

	AddLockout(ctx context.Context, roomID string, req LockoutRequest) (*Lockout, error)
	ListLockouts(ctx context.Context, roomID string) ([]*Lockout, error)
	DeleteLockout(ctx context.Context, roomID, lockoutID string) error
	// ActiveLockout returns the lockout blocking roomID on date, or nil.
	ActiveLockout(ctx context.Context, roomID string, date time.Time) (*Lockout, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("service", "room"),
	}
}

func validateRates(rates ...*float64) error {
	for _, r := range rates {
		if r != nil && *r < 0 {
			return ErrNegativeRate
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if req.Status == "" {
		req.Status = StatusAvailable
	}
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := validateRates(req.BaseRate, req.RateWithEngineer, req.RateWithoutEngineer); err != nil {
		return nil, err
	}

	rm := &Room{
		Name:                name,
		Status:              req.Status,
		BaseRate:            req.BaseRate,
		RateWithEngineer:    req.RateWithEngineer,
		RateWithoutEngineer: req.RateWithoutEngineer,
	}
	if err := s.repo.Create(ctx, rm); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "room created", "room_id", rm.ID, "name", rm.Name)
	return rm, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		rm.Name = name
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		rm.Status = *req.Status
	}
	if err := validateRates(req.BaseRate, req.RateWithEngineer, req.RateWithoutEngineer); err != nil {
		return nil, err
	}
	if req.BaseRate != nil {
		rm.BaseRate = req.BaseRate
	}
	if req.RateWithEngineer != nil {
		rm.RateWithEngineer = req.RateWithEngineer
	}
	if req.RateWithoutEngineer != nil {
		rm.RateWithoutEngineer = req.RateWithoutEngineer
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) AddLockout(ctx context.Context, roomID string, req LockoutRequest) (*Lockout, error) {
	if _, err := s.repo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, ErrInvalidDateRange
	}

	l := &Lockout{
		RoomID:    roomID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    strings.TrimSpace(req.Reason),
	}
	if req.CreatedBy != "" {
		l.CreatedBy = &req.CreatedBy
	}
	if err := s.repo.CreateLockout(ctx, l); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "room locked out",
		"room_id", roomID,
		"start_date", l.StartDate.Format(time.DateOnly),
		"end_date", l.EndDate.Format(time.DateOnly),
	)
	return l, nil
}

func (s *service) ListLockouts(ctx context.Context, roomID string) ([]*Lockout, error) {
	if _, err := s.repo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.ListLockouts(ctx, roomID)
}

func (s *service) DeleteLockout(ctx context.Context, roomID, lockoutID string) error {
	return s.repo.DeleteLockout(ctx, roomID, lockoutID)
}

func (s *service) ActiveLockout(ctx context.Context, roomID string, date time.Time) (*Lockout, error) {
	return s.repo.LockoutOn(ctx, roomID, date)
}
