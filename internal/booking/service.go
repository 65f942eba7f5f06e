package booking

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nekogravitycat/studio-booking-backend/internal/auth"
	"github.com/nekogravitycat/studio-booking-backend/internal/engineer"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/room"
)

type CreateRequest struct {
	ClientName   string
	ClientEmail  string
	ClientPhone  string
	Notes        string
	Date         time.Time
	RoomID       string
	StartTime    string
	EndTime      string
	EngineerID   string
	EngineerName string
}

// SwapEngineerRequest names the new engineer by id or by display name.
type SwapEngineerRequest struct {
	EngineerID   string
	EngineerName string
}

type PaymentRequest struct {
	Method    PaymentMethod
	Amount    float64
	Reference string
	Notes     string
}

type ExtendResult struct {
	Booking        *Booking
	Extension      *SessionExtension
	AdditionalCost float64
}

type PaymentResult struct {
	Payment *PaymentSplit
	Booking *Booking
	Reconciliation
}

// Details is a booking with its child records and payment position.
type Details struct {
	Booking    *Booking
	Extensions []*SessionExtension
	Payments   []*PaymentSplit
	Reconciliation
}

type Service interface {
	Create(ctx context.Context, actor auth.Principal, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetDetails(ctx context.Context, id string) (*Details, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	ListPayments(ctx context.Context, id string) ([]*PaymentSplit, error)
	ListExtensions(ctx context.Context, id string) ([]*SessionExtension, error)

	Extend(ctx context.Context, actor auth.Principal, id string, additionalHours int) (*ExtendResult, error)
	SwapEngineer(ctx context.Context, actor auth.Principal, id string, req SwapEngineerRequest) (*Booking, error)
	SwapRoom(ctx context.Context, actor auth.Principal, id, roomID string) (*Booking, error)
	RecordPayment(ctx context.Context, actor auth.Principal, id string, req PaymentRequest) (*PaymentResult, error)
	ApplyDiscount(ctx context.Context, actor auth.Principal, id string, percent float64) (*Booking, error)
	// OverridePrice replaces the computed charge; nil clears the override.
	OverridePrice(ctx context.Context, actor auth.Principal, id string, amount *float64) (*Booking, error)
	Cancel(ctx context.Context, actor auth.Principal, id string) (*Booking, error)
	Complete(ctx context.Context, actor auth.Principal, id string) (*Booking, error)

	CheckRoomAvailability(ctx context.Context, roomID string, date time.Time, window clock.Interval) (*RoomAvailability, error)
	CheckEngineerAvailability(ctx context.Context, engineerID string, date time.Time, window clock.Interval) (*EngineerAvailability, error)
}

type service struct {
	repo      Repository
	rooms     RoomDirectory
	engineers EngineerDirectory
	checker   *Checker
	events    EventPublisher
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewService(repo Repository, rooms RoomDirectory, engineers EngineerDirectory, events EventPublisher, logger *slog.Logger) Service {
	if events == nil {
		events = NopPublisher{}
	}
	return &service{
		repo:      repo,
		rooms:     rooms,
		engineers: engineers,
		checker:   NewChecker(rooms, engineers),
		events:    events,
		logger:    logger.With("service", "booking"),
		tracer:    otel.Tracer("github.com/nekogravitycat/studio-booking-backend/internal/booking"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) startSpan(ctx context.Context, operation, bookingID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "booking."+operation, trace.WithAttributes(
		attribute.String("booking.id", bookingID),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func authorize(actor auth.Principal, action auth.Action) error {
	if actor.ID == "" {
		return ErrUnauthenticated
	}
	if !auth.HasPermission(actor.Role, action) {
		return ErrPermissionDenied.WithDetails("action", action)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseWindow validates a requested session on a single calendar day.
func parseWindow(start, end string) (clock.Interval, error) {
	s, err := clock.ParseWallClock(start)
	if err != nil {
		return clock.Interval{}, ErrInvalidTime
	}
	e, err := clock.ParseClock(end)
	if err != nil || e > 24*60 {
		return clock.Interval{}, ErrInvalidTime
	}
	if s >= e {
		return clock.Interval{}, ErrInvalidTimeRange
	}
	return clock.Interval{Start: s, End: e}, nil
}

func (s *service) getRoom(ctx context.Context, id string) (*room.Room, error) {
	rm, err := s.rooms.GetByID(ctx, id)
	if errors.Is(err, room.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// engineerRef is a resolved engineer or a free-text name.
type engineerRef struct {
	ID   *string
	Name string
}

// resolveEngineer turns an id or a display name into a reference.
// A name matching exactly one engineer resolves to that engineer; any other
// name is kept as free text and skips capability checks. Deactivated
// engineers cannot be attached by id.
func (s *service) resolveEngineer(ctx context.Context, id, name string) (*engineerRef, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)

	var e *engineer.Engineer
	var err error
	switch {
	case id != "":
		e, err = s.engineers.GetByID(ctx, id)
		if errors.Is(err, engineer.ErrNotFound) {
			return nil, ErrEngineerNotFound
		}
	case name != "":
		e, err = s.engineers.FindByName(ctx, name)
		if errors.Is(err, engineer.ErrNotFound) {
			return &engineerRef{Name: name}, nil
		}
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !e.IsActive {
		return nil, ErrEngineerInactive
	}
	id = e.ID
	return &engineerRef{ID: &id, Name: e.Name}, nil
}

// checkEngineerFits runs, in order, the room capability check, the day record
// check and the booking overlap check for engineerID. A swap uses the stricter
// swap overlap rule and reports ErrEngineerConflict; otherwise ErrEngineerBooked.
func (s *service) checkEngineerFits(ctx context.Context, tx Tx, engineerID, roomID string, date time.Time, window clock.Interval, excludeID string, swap bool) error {
	if err := s.checkAssigned(ctx, engineerID, roomID); err != nil {
		return err
	}

	if err := tx.LockEngineerDay(ctx, engineerID, date); err != nil {
		return err
	}
	check, bookedErr := s.checker.IsEngineerAvailable, ErrEngineerBooked
	if swap {
		check, bookedErr = s.checker.IsEngineerAvailableForSwap, ErrEngineerConflict
	}
	avail, err := check(ctx, tx, engineerID, date, window, excludeID)
	if err != nil {
		return err
	}
	if avail.Reason != "" {
		return &ConflictError{Err: ErrEngineerUnavailable, Reason: avail.Reason}
	}
	if !avail.Available {
		return &ConflictError{Err: bookedErr, Conflicts: avail.Conflicts}
	}
	return nil
}

func (s *service) checkAssigned(ctx context.Context, engineerID, roomID string) error {
	assigned, err := s.engineers.IsAssigned(ctx, engineerID, roomID)
	if err != nil {
		return err
	}
	if assigned {
		return nil
	}
	rooms, err := s.engineers.AssignedRooms(ctx, engineerID)
	if err != nil {
		return err
	}
	return &ConflictError{Err: ErrEngineerNotAssigned, AssignedRooms: rooms}
}

// roomConflict reports a blocked room with its reason, or overlapping bookings under conflictErr.
func roomConflict(conflictErr *apperror.AppError, avail *RoomAvailability) *ConflictError {
	if avail.Reason != "" {
		return &ConflictError{Err: ErrRoomUnavailable, Reason: avail.Reason}
	}
	return &ConflictError{Err: conflictErr, Conflicts: avail.Conflicts}
}

// reconcile recomputes the payment position and confirms a fully paid
// pending booking. It reports whether the status flipped.
func (s *service) reconcile(ctx context.Context, tx Tx, b *Booking) (Reconciliation, bool, error) {
	rm, err := s.getRoom(ctx, b.RoomID)
	if err != nil {
		return Reconciliation{}, false, err
	}
	paid, err := tx.SumPayments(ctx, b.ID)
	if err != nil {
		return Reconciliation{}, false, err
	}
	expected, err := ExpectedCharge(b, rm)
	if err != nil {
		return Reconciliation{}, false, err
	}

	rec := Reconcile(paid, expected)
	if !rec.IsFullyPaid || b.Status != StatusPending {
		return rec, false, nil
	}
	b.Status = StatusConfirmed
	if err := tx.Update(ctx, b); err != nil {
		return Reconciliation{}, false, err
	}
	return rec, true, nil
}

func (s *service) Create(ctx context.Context, actor auth.Principal, req CreateRequest) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "Create", "")
	defer func() { endSpan(span, err) }()

	if err := authorize(actor, auth.ActionCreateBookings); err != nil {
		return nil, err
	}
	clientName := strings.TrimSpace(req.ClientName)
	if clientName == "" {
		return nil, ErrClientRequired
	}
	if req.Date.IsZero() {
		return nil, ErrDateRequired
	}
	window, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	rm, err := s.getRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	ref, err := s.resolveEngineer(ctx, req.EngineerID, req.EngineerName)
	if err != nil {
		return nil, err
	}

	b = &Booking{
		ClientName:  clientName,
		ClientEmail: optional(req.ClientEmail),
		ClientPhone: optional(req.ClientPhone),
		Notes:       strings.TrimSpace(req.Notes),
		Date:        req.Date,
		RoomID:      rm.ID,
		RoomName:    rm.Name,
		StartTime:   clock.FormatClock(window.Start),
		EndTime:     clock.FormatClock(window.End),
		Status:      StatusPending,
		CreatedBy:   optional(actor.ID),
	}
	if ref != nil {
		b.EngineerID = ref.ID
		b.EngineerName = &ref.Name
	}

	err = s.repo.WithTx(ctx, func(tx Tx) error {
		if err := tx.LockRoomDay(ctx, b.RoomID, b.Date); err != nil {
			return err
		}
		avail, err := s.checker.IsRoomAvailable(ctx, tx, b.RoomID, b.Date, window, "")
		if err != nil {
			return err
		}
		if !avail.Available {
			return roomConflict(ErrSlotTaken, avail)
		}
		if b.EngineerID != nil {
			if err := s.checkEngineerFits(ctx, tx, *b.EngineerID, b.RoomID, b.Date, window, "", false); err != nil {
				return err
			}
		}
		return tx.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.id", b.ID))
	s.logger.InfoContext(ctx, "booking created",
		"operation", "create",
		"booking_id", b.ID,
		"room_id", b.RoomID,
		"date", clock.FormatDate(b.Date),
		"window", window.String(),
		"actor_id", actor.ID,
	)
	s.publish(ctx, EventCreated, b, actor, nil)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetDetails(ctx context.Context, id string) (*Details, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	extensions, err := s.repo.ListExtensions(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	rm, err := s.getRoom(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	expected, err := ExpectedCharge(b, rm)
	if err != nil {
		return nil, err
	}

	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}

	return &Details{
		Booking:        b,
		Extensions:     extensions,
		Payments:       payments,
		Reconciliation: Reconcile(paid, expected),
	}, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListPayments(ctx context.Context, id string) ([]*PaymentSplit, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, id)
}

func (s *service) ListExtensions(ctx context.Context, id string) ([]*SessionExtension, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListExtensions(ctx, id)
}

func (s *service) Extend(ctx context.Context, actor auth.Principal, id string, additionalHours int) (res *ExtendResult, err error) {
	ctx, span := s.startSpan(ctx, "Extend", id)
	defer func() { endSpan(span, err) }()

	if actor.ID == "" {
		return nil, ErrUnauthenticated
	}
	if additionalHours < 1 || additionalHours > MaxExtensionHours {
		return nil, ErrInvalidHours
	}

	err = s.repo.WithTx(ctx, func(tx Tx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if b.Status.Terminal() {
			return ErrTerminalState
		}

		newEnd, err := clock.AddHours(b.EndTime, additionalHours)
		if err != nil {
			return err
		}
		// Only the added region needs checking; the booked window cannot conflict with itself.
		delta, err := clock.ParseInterval(b.EndTime, newEnd)
		if err != nil {
			return ErrInvalidHours
		}

		if err := tx.LockRoomDay(ctx, b.RoomID, b.Date); err != nil {
			return err
		}
		avail, err := s.checker.IsRoomAvailable(ctx, tx, b.RoomID, b.Date, delta, b.ID)
		if err != nil {
			return err
		}
		if !avail.Available {
			return roomConflict(ErrExtensionConflict, avail)
		}

		if b.EngineerID != nil {
			if err := tx.LockEngineerDay(ctx, *b.EngineerID, b.Date); err != nil {
				return err
			}
			engineerAvail, err := s.checker.IsEngineerAvailable(ctx, tx, *b.EngineerID, b.Date, delta, b.ID)
			if err != nil {
				return err
			}
			if len(engineerAvail.Conflicts) > 0 {
				return &ConflictError{Err: ErrEngineerConflict, Conflicts: engineerAvail.Conflicts}
			}
		}

		rm, err := s.getRoom(ctx, b.RoomID)
		if err != nil {
			return err
		}
		cost := ExtensionCost(rm, additionalHours)

		ext := &SessionExtension{
			BookingID:       b.ID,
			OriginalEndTime: b.EndTime,
			NewEndTime:      newEnd,
			AdditionalHours: additionalHours,
			AdditionalCost:  cost,
			CreatedBy:       optional(actor.ID),
		}
		if err := tx.CreateExtension(ctx, ext); err != nil {
			return err
		}

		b.EndTime = newEnd
		if err := tx.Update(ctx, b); err != nil {
			return err
		}

		res = &ExtendResult{Booking: b, Extension: ext, AdditionalCost: cost}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session extended",
		"operation", "extend",
		"booking_id", id,
		"original_end_time", res.Extension.OriginalEndTime,
		"new_end_time", res.Extension.NewEndTime,
		"additional_cost", res.AdditionalCost,
		"actor_id", actor.ID,
	)
	s.publish(ctx, EventExtended, res.Booking, actor, map[string]any{
		"original_end_time": res.Extension.OriginalEndTime,
		"new_end_time":      res.Extension.NewEndTime,
		"additional_hours":  additionalHours,
		"additional_cost":   res.AdditionalCost,
	})
	return res, nil
}

func (s *service) SwapEngineer(ctx context.Context, actor auth.Principal, id string, req SwapEngineerRequest) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "SwapEngineer", id)
	defer func() { endSpan(span, err) }()

	if err := authorize(actor, auth.ActionSwapEngineers); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.EngineerID) == "" && strings.TrimSpace(req.EngineerName) == "" {
		return nil, ErrEngineerRequired
	}

	var previous string
	err = s.repo.WithTx(ctx, func(tx Tx) error {
		b, err = tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if b.Status.Terminal() {
			return ErrTerminalState
		}

		ref, err := s.resolveEngineer(ctx, req.EngineerID, req.EngineerName)
		if err != nil {
			return err
		}
		window, err := b.Interval()
		if err != nil {
			return err
		}
		// The whole session moves to the new engineer, so the full window is checked.
		if ref.ID != nil {
			if err := s.checkEngineerFits(ctx, tx, *ref.ID, b.RoomID, b.Date, window, b.ID, true); err != nil {
				return err
			}
		}

		// The original engineer is captured on the first swap only.
		if b.EngineerSwappedAt == nil && b.OriginalEngineerID == nil && b.OriginalEngineerName == nil {
			b.OriginalEngineerID = b.EngineerID
			b.OriginalEngineerName = b.EngineerName
		}
		if b.EngineerName != nil {
			previous = *b.EngineerName
		}

		now := s.now()
		name := ref.Name
		b.EngineerID = ref.ID
		b.EngineerName = &name
		b.EngineerSwappedAt = &now
		return tx.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "engineer swapped",
		"operation", "swap_engineer",
		"booking_id", b.ID,
		"from", previous,
		"to", *b.EngineerName,
		"resolved", b.EngineerID != nil,
		"actor_id", actor.ID,
	)
	s.publish(ctx, EventEngineerSwapped, b, actor, map[string]any{
		"from": previous,
		"to":   *b.EngineerName,
	})
	return b, nil
}

func (s *service) SwapRoom(ctx context.Context, actor auth.Principal, id, roomID string) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "SwapRoom", id)
	defer func() { endSpan(span, err) }()

	if err := authorize(actor, auth.ActionSwapRooms); err != nil {
		return nil, err
	}
	if strings.TrimSpace(roomID) == "" {
		return nil, ErrRoomNotFound
	}

	var previous string
	err = s.repo.WithTx(ctx, func(tx Tx) error {
		b, err = tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if b.Status.Terminal() {
			return ErrTerminalState
		}

		rm, err := s.getRoom(ctx, roomID)
		if err != nil {
			return err
		}
		window, err := b.Interval()
		if err != nil {
			return err
		}
		if b.EngineerID != nil {
			if err := s.checkAssigned(ctx, *b.EngineerID, rm.ID); err != nil {
				return err
			}
		}

		if err := tx.LockRoomDay(ctx, rm.ID, b.Date); err != nil {
			return err
		}
		avail, err := s.checker.IsRoomAvailable(ctx, tx, rm.ID, b.Date, window, b.ID)
		if err != nil {
			return err
		}
		if !avail.Available {
			return roomConflict(ErrRoomConflict, avail)
		}

		if b.RoomSwappedAt == nil && b.OriginalRoomID == nil {
			original := b.RoomID
			b.OriginalRoomID = &original
		}
		previous = b.RoomID

		now := s.now()
		b.RoomID = rm.ID
		b.RoomName = rm.Name
		b.RoomSwappedAt = &now
		return tx.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "room swapped",
		"operation", "swap_room",
		"booking_id", b.ID,
		"from_room_id", previous,
		"to_room_id", b.RoomID,
		"actor_id", actor.ID,
	)
	s.publish(ctx, EventRoomSwapped, b, actor, map[string]any{
		"from_room_id": previous,
		"to_room_id":   b.RoomID,
	})
	return b, nil
}

func (s *service) RecordPayment(ctx context.Context, actor auth.Principal, id string, req PaymentRequest) (res *PaymentResult, err error) {
	ctx, span := s.startSpan(ctx, "RecordPayment", id)
	defer func() { endSpan(span, err) }()

	if err := authorize(actor, auth.ActionRecordPayments); err != nil {
		return nil, err
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidMethod
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || cents(req.Amount) <= 0 {
		return nil, ErrInvalidAmount
	}

	var confirmed bool
	err = s.repo.WithTx(ctx, func(tx Tx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}

		p := &PaymentSplit{
			BookingID:      b.ID,
			Method:         req.Method,
			Amount:         roundCents(req.Amount),
			Reference:      optional(req.Reference),
			Notes:          optional(req.Notes),
			RecordedBy:     optional(actor.ID),
			RecordedByName: actor.Name,
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}

		rec, flipped, err := s.reconcile(ctx, tx, b)
		if err != nil {
			return err
		}
		confirmed = flipped
		res = &PaymentResult{Payment: p, Booking: b, Reconciliation: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment recorded",
		"operation", "record_payment",
		"booking_id", id,
		"method", res.Payment.Method,
		"amount", res.Payment.Amount,
		"total_paid", res.TotalPaid,
		"expected_amount", res.ExpectedAmount,
		"actor_id", actor.ID,
	)
	s.publish(ctx, EventPaymentRecorded, res.Booking, actor, map[string]any{
		"payment_id":      res.Payment.ID,
		"method":          res.Payment.Method,
		"amount":          res.Payment.Amount,
		"total_paid":      res.TotalPaid,
		"expected_amount": res.ExpectedAmount,
	})
	if confirmed {
		s.logger.InfoContext(ctx, "booking confirmed", "operation", "record_payment", "booking_id", id)
		s.publish(ctx, EventConfirmed, res.Booking, actor, nil)
	}
	return res, nil
}

// adjustPricing applies a pricing change to a live booking and re-runs reconciliation.
func (s *service) adjustPricing(ctx context.Context, actor auth.Principal, id string, apply func(b *Booking)) (*Booking, bool, error) {
	var b *Booking
	var confirmed bool
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		var err error
		b, err = tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if b.Status.Terminal() {
			return ErrTerminalState
		}

		apply(b)
		if err := tx.Update(ctx, b); err != nil {
			return err
		}
		_, confirmed, err = s.reconcile(ctx, tx, b)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if confirmed {
		s.logger.InfoContext(ctx, "booking confirmed", "operation", "pricing", "booking_id", id)
		s.publish(ctx, EventConfirmed, b, actor, nil)
	}
	return b, confirmed, nil
}

func (s *service) ApplyDiscount(ctx context.Context, actor auth.Principal, id string, percent float64) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "ApplyDiscount", id)
	defer func() { endSpan(span, err) }()

	if err := authorize(actor, auth.ActionApplyDiscounts); err != nil {
		return nil, err
	}
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return nil, ErrInvalidDiscount
	}
	if ceiling := auth.MaxDiscountPercent(actor.Role); percent > ceiling {
		return nil, ErrDiscountTooLarge.WithDetails("max_percent", ceiling)
	}

	b, _, err = s.adjustPricing(ctx, actor, id, func(b *Booking) {
		b.DiscountPercent = percent
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "discount applied",
		"operation", "apply_discount",
		"booking_id", id,
		"percent", percent,
		"actor_id", actor.ID,
	)
	return b, nil
}

func (s *service) OverridePrice(ctx context.Context, actor auth.Principal, id string, amount *float64) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "OverridePrice", id)
	defer func() { endSpan(span, err) }()

	if err := authorize(actor, auth.ActionOverridePricing); err != nil {
		return nil, err
	}
	var override *float64
	if amount != nil {
		if math.IsNaN(*amount) || math.IsInf(*amount, 0) || *amount < 0 {
			return nil, ErrInvalidAmount
		}
		v := roundCents(*amount)
		override = &v
	}

	b, _, err = s.adjustPricing(ctx, actor, id, func(b *Booking) {
		b.PriceOverride = override
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "price overridden",
		"operation", "override_price",
		"booking_id", id,
		"cleared", override == nil,
		"actor_id", actor.ID,
	)
	return b, nil
}

// transition moves a booking to target when its current status is in from.
func (s *service) transition(ctx context.Context, id string, target Status, from ...Status) (*Booking, error) {
	var b *Booking
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		var err error
		b, err = tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		allowed := false
		for _, st := range from {
			if b.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrInvalidTransition.WithDetails("status", b.Status)
		}
		b.Status = target
		return tx.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Cancel(ctx context.Context, actor auth.Principal, id string) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "Cancel", id)
	defer func() { endSpan(span, err) }()

	if err := authorize(actor, auth.ActionCancelBookings); err != nil {
		return nil, err
	}
	b, err = s.transition(ctx, id, StatusCancelled, StatusPending, StatusConfirmed)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking cancelled", "operation", "cancel", "booking_id", id, "actor_id", actor.ID)
	s.publish(ctx, EventCancelled, b, actor, nil)
	return b, nil
}

func (s *service) Complete(ctx context.Context, actor auth.Principal, id string) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "Complete", id)
	defer func() { endSpan(span, err) }()

	if err := authorize(actor, auth.ActionCompleteBookings); err != nil {
		return nil, err
	}
	b, err = s.transition(ctx, id, StatusCompleted, StatusConfirmed)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking completed", "operation", "complete", "booking_id", id, "actor_id", actor.ID)
	s.publish(ctx, EventCompleted, b, actor, nil)
	return b, nil
}

func (s *service) CheckRoomAvailability(ctx context.Context, roomID string, date time.Time, window clock.Interval) (*RoomAvailability, error) {
	return s.checker.IsRoomAvailable(ctx, s.repo, roomID, date, window, "")
}

func (s *service) CheckEngineerAvailability(ctx context.Context, engineerID string, date time.Time, window clock.Interval) (*EngineerAvailability, error) {
	return s.checker.IsEngineerAvailable(ctx, s.repo, engineerID, date, window, "")
}
