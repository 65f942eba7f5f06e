package booking

import (
	"context"
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/auth"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
)

// Routing keys of the domain events published after a mutation commits.
const (
	EventCreated         = "booking.created"
	EventExtended        = "booking.extended"
	EventEngineerSwapped = "booking.engineer_swapped"
	EventRoomSwapped     = "booking.room_swapped"
	EventPaymentRecorded = "booking.payment_recorded"
	EventConfirmed       = "booking.confirmed"
	EventCancelled       = "booking.cancelled"
	EventCompleted       = "booking.completed"
)

const publishTimeout = 5 * time.Second

// EventPublisher delivers domain events. *mq.Publisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishJSON(context.Context, string, any) error { return nil }

type Event struct {
	Type       string         `json:"type"`
	BookingID  string         `json:"booking_id"`
	RoomID     string         `json:"room_id"`
	EngineerID *string        `json:"engineer_id,omitempty"`
	Date       string         `json:"date"`
	StartTime  string         `json:"start_time"`
	EndTime    string         `json:"end_time"`
	Status     Status         `json:"status"`
	ActorID    string         `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// publish is best effort: the mutation has already committed, so a failure is only logged.
func (s *service) publish(ctx context.Context, key string, b *Booking, actor auth.Principal, data map[string]any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := Event{
		Type:       key,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		EngineerID: b.EngineerID,
		Date:       clock.FormatDate(b.Date),
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     b.Status,
		ActorID:    actor.ID,
		OccurredAt: s.now(),
		Data:       data,
	}
	if err := s.events.PublishJSON(ctx, key, evt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish booking event", "event", key, "booking_id", b.ID, "error", err)
	}
}
