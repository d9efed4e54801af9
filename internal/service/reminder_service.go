package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/veridian/gatepass/internal/push"
	"github.com/veridian/gatepass/internal/repo/postgres"
	"github.com/veridian/gatepass/pkg/events"
	"github.com/veridian/gatepass/pkg/logger"
)

// The trigger is expected to fire exactly once per minute; successive windows
// then tile without overlap and no booking is selected twice. That cadence is
// a deployment contract: there is no persisted already-notified marker, and
// overlapping invocations are not mutually excluded.
const (
	reminderLead   = 9 * time.Minute
	reminderWindow = time.Minute
)

type ReminderService interface {
	Run(ctx context.Context) (int, error)
}

type reminderService struct {
	bookings postgres.BookingRepository
	notifier Notifier
	bus      events.Publisher
	now      func() time.Time
}

func NewReminderService(bookings postgres.BookingRepository, notifier Notifier, bus events.Publisher) ReminderService {
	return &reminderService{
		bookings: bookings,
		notifier: notifier,
		bus:      bus,
		now:      time.Now,
	}
}

// Run selects confirmed bookings entering the lookahead window and fires a
// reminder to each owner with a push token. Returns the number sent.
func (s *reminderService) Run(ctx context.Context) (int, error) {
	now := s.now()
	windowStart := now.Add(reminderLead)
	windowEnd := now.Add(reminderLead + reminderWindow)

	bookings, err := s.bookings.ListConfirmedStartingBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to select bookings for reminders: %w", err)
	}

	sent := 0
	for _, b := range bookings {
		if b.OwnerPushToken == nil || *b.OwnerPushToken == "" {
			continue
		}

		s.notifier.SendOne(ctx, *b.OwnerPushToken, push.Notification{
			Title:    "Booking reminder",
			Body:     fmt.Sprintf("Your %s booking starts at %s.", b.FacilityName, b.StartsAt.Format("3:04 PM")),
			Type:     push.TypeBookingReminder,
			EntityID: strconv.FormatInt(b.ID, 10),
		})
		sent++

		if s.bus != nil {
			if err := s.bus.Publish(ctx, events.ReminderSent, events.ReminderSentEvent{
				BookingID: b.ID,
				StartsAt:  b.StartsAt,
				SentAt:    now,
			}); err != nil {
				logger.ErrorContext(ctx, "Failed to publish reminder event", "error", err, "booking_id", b.ID)
			}
		}
	}

	logger.InfoContext(ctx, "Booking reminder run completed",
		"window_start", windowStart, "window_end", windowEnd,
		"selected", len(bookings), "sent", sent)

	return sent, nil
}
