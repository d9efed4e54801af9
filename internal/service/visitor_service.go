package service

import (
	"context"
	"fmt"
	"time"

	"github.com/veridian/gatepass/internal/domain"
	"github.com/veridian/gatepass/internal/mailer"
	"github.com/veridian/gatepass/internal/pass"
	"github.com/veridian/gatepass/internal/push"
	"github.com/veridian/gatepass/internal/repo/postgres"
	"github.com/veridian/gatepass/pkg/events"
	"github.com/veridian/gatepass/pkg/logger"
)

// Notifier is the dispatcher surface services depend on. Satisfied by
// *push.Dispatcher.
type Notifier interface {
	SendOne(ctx context.Context, token string, n push.Notification)
	SendBulk(ctx context.Context, tokens []string, n push.Notification)
}

type VisitorService interface {
	Create(ctx context.Context, communityID string, hostID int64, req *domain.CreateVisitorReq) (*domain.Visitor, error)
	Transition(ctx context.Context, communityID, id string, target domain.VisitorStatus) (*domain.Visitor, error)
	Verify(ctx context.Context, communityID, token string) (*domain.VisitorDTO, error)
	List(ctx context.Context, communityID string, filter domain.VisitorFilter) ([]domain.VisitorDTO, error)
	Stats(ctx context.Context, communityID string, day time.Time) (*domain.VisitorStats, error)
}

type visitorService struct {
	visitors postgres.VisitorRepository
	users    postgres.UserRepository
	issuer   *pass.Issuer
	notifier Notifier
	mailer   mailer.Service
	bus      events.Publisher
	now      func() time.Time
}

func NewVisitorService(
	visitors postgres.VisitorRepository,
	users postgres.UserRepository,
	issuer *pass.Issuer,
	notifier Notifier,
	mailSvc mailer.Service,
	bus events.Publisher,
) VisitorService {
	return &visitorService{
		visitors: visitors,
		users:    users,
		issuer:   issuer,
		notifier: notifier,
		mailer:   mailSvc,
		bus:      bus,
		now:      time.Now,
	}
}

func (s *visitorService) Create(ctx context.Context, communityID string, hostID int64, req *domain.CreateVisitorReq) (*domain.Visitor, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if req.Contact == "" {
		return nil, domain.NewValidationError("contact", "is required")
	}
	if req.VisitDate.IsZero() {
		return nil, domain.NewValidationError("visit_date", "is required")
	}
	visitorType, ok := domain.ParseVisitorType(req.VisitorType)
	if !ok {
		return nil, domain.NewValidationError("visitor_type", "must be one of guest, delivery, cab_auto")
	}

	visitor, err := s.visitors.Create(ctx, communityID, hostID, req, visitorType)
	if err != nil {
		return nil, fmt.Errorf("failed to create visitor: %w", err)
	}

	// Pass email and domain event are best-effort; the visitor record is
	// already committed.
	go s.emailPass(context.WithoutCancel(ctx), visitor)

	s.publish(ctx, events.VisitorCreated, events.VisitorCreatedEvent{
		VisitorID:   visitor.ID,
		CommunityID: visitor.CommunityID,
		HostID:      visitor.HostID,
		Name:        visitor.Name,
		VisitorType: string(visitor.Type),
		VisitDate:   visitor.VisitDate,
		CreatedAt:   visitor.CreatedAt,
	})

	return visitor, nil
}

func (s *visitorService) emailPass(ctx context.Context, visitor *domain.Visitor) {
	host, err := s.users.FindByID(ctx, visitor.CommunityID, visitor.HostID)
	if err != nil || host == nil {
		logger.WarnContext(ctx, "Skipping pass email, host not resolved",
			"error", err, "visitor_id", visitor.ID, "host_id", visitor.HostID)
		return
	}

	rendered, err := s.issuer.Issue(visitor)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render gate pass", "error", err, "visitor_id", visitor.ID)
		return
	}

	if err := s.mailer.SendVisitorPass(ctx, host.Email, host.Name, visitor, rendered.PNG, rendered.ContentID); err != nil {
		logger.ErrorContext(ctx, "Failed to email gate pass", "error", err, "visitor_id", visitor.ID)
	}
}

func (s *visitorService) Transition(ctx context.Context, communityID, id string, target domain.VisitorStatus) (*domain.Visitor, error) {
	visitor, err := s.visitors.GetByID(ctx, communityID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load visitor: %w", err)
	}
	if visitor == nil {
		return nil, domain.ErrNotFound
	}

	switch target {
	case domain.VisitorCheckedIn:
		if visitor.CheckInAt != nil {
			return nil, domain.ErrAlreadyCheckedIn
		}
		updated, err := s.visitors.SetCheckIn(ctx, communityID, id, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to check in visitor: %w", err)
		}
		if updated == nil {
			return nil, domain.ErrNotFound
		}

		go s.notifyHostCheckin(context.WithoutCancel(ctx), updated)
		s.publish(ctx, events.VisitorCheckedIn, events.VisitorTransitionEvent{
			VisitorID:   updated.ID,
			CommunityID: updated.CommunityID,
			Status:      string(domain.VisitorCheckedIn),
			At:          *updated.CheckInAt,
		})
		return updated, nil

	case domain.VisitorCheckedOut:
		if visitor.CheckOutAt != nil {
			return nil, domain.ErrAlreadyCheckedOut
		}
		if visitor.CheckInAt == nil {
			return nil, domain.ErrNotCheckedIn
		}
		updated, err := s.visitors.SetCheckOut(ctx, communityID, id, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to check out visitor: %w", err)
		}
		if updated == nil {
			return nil, domain.ErrNotFound
		}

		s.publish(ctx, events.VisitorCheckedOut, events.VisitorTransitionEvent{
			VisitorID:   updated.ID,
			CommunityID: updated.CommunityID,
			Status:      string(domain.VisitorCheckedOut),
			At:          *updated.CheckOutAt,
		})
		return updated, nil

	case domain.VisitorPending:
		updated, err := s.visitors.ResetTimestamps(ctx, communityID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reset visitor: %w", err)
		}
		if updated == nil {
			return nil, domain.ErrNotFound
		}

		s.publish(ctx, events.VisitorReset, events.VisitorTransitionEvent{
			VisitorID:   updated.ID,
			CommunityID: updated.CommunityID,
			Status:      string(domain.VisitorPending),
			At:          s.now(),
		})
		return updated, nil

	default:
		return nil, domain.NewValidationError("status", "must be one of checked_in, checked_out, pending")
	}
}

func (s *visitorService) notifyHostCheckin(ctx context.Context, visitor *domain.Visitor) {
	host, err := s.users.FindByID(ctx, visitor.CommunityID, visitor.HostID)
	if err != nil || host == nil {
		logger.WarnContext(ctx, "Skipping check-in notification, host not resolved",
			"error", err, "visitor_id", visitor.ID, "host_id", visitor.HostID)
		return
	}
	if host.PushToken == nil || *host.PushToken == "" {
		return
	}

	s.notifier.SendOne(ctx, *host.PushToken, push.Notification{
		Title:    "Visitor at the gate",
		Body:     fmt.Sprintf("%s has checked in.", visitor.Name),
		Type:     push.TypeVisitorCheckin,
		EntityID: visitor.ID,
	})
}

func (s *visitorService) Verify(ctx context.Context, communityID, token string) (*domain.VisitorDTO, error) {
	id, err := pass.TokenVisitorID(token)
	if err != nil {
		return nil, err
	}

	visitor, err := s.visitors.GetByID(ctx, communityID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load visitor: %w", err)
	}
	if visitor == nil {
		return nil, domain.ErrNotFound
	}

	dto := domain.NewVisitorDTO(*visitor)
	return &dto, nil
}

func (s *visitorService) List(ctx context.Context, communityID string, filter domain.VisitorFilter) ([]domain.VisitorDTO, error) {
	visitors, err := s.visitors.List(ctx, communityID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}

	dtos := make([]domain.VisitorDTO, 0, len(visitors))
	for _, v := range visitors {
		dtos = append(dtos, domain.NewVisitorDTO(v))
	}
	return dtos, nil
}

// Stats scopes counts to [startOfDay, startOfDay+24h) and seeds the type
// breakdown so every declared type is present in the result.
func (s *visitorService) Stats(ctx context.Context, communityID string, day time.Time) (*domain.VisitorStats, error) {
	from := day.Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	stats, err := s.visitors.CountByRange(ctx, communityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate visitor stats: %w", err)
	}

	breakdown := make(map[domain.VisitorType]int, len(domain.AllVisitorTypes()))
	for _, t := range domain.AllVisitorTypes() {
		breakdown[t] = 0
	}
	for t, n := range stats.TypeBreakdown {
		breakdown[t] = n
	}
	stats.TypeBreakdown = breakdown

	return stats, nil
}

func (s *visitorService) publish(ctx context.Context, subject string, event interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
