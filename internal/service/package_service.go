package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/veridian/gatepass/internal/domain"
	"github.com/veridian/gatepass/internal/mailer"
	"github.com/veridian/gatepass/internal/push"
	"github.com/veridian/gatepass/internal/repo/postgres"
	"github.com/veridian/gatepass/pkg/events"
	"github.com/veridian/gatepass/pkg/logger"
)

type PackageService interface {
	Create(ctx context.Context, communityID string, req *domain.CreatePackageReq) (*domain.Package, error)
	MarkPicked(ctx context.Context, communityID string, id int64) (*domain.Package, error)
	ListByUser(ctx context.Context, communityID string, userID int64) ([]domain.Package, error)
}

type packageService struct {
	packages postgres.PackageRepository
	users    postgres.UserRepository
	notifier Notifier
	mailer   mailer.Service
	bus      events.Publisher
}

func NewPackageService(
	packages postgres.PackageRepository,
	users postgres.UserRepository,
	notifier Notifier,
	mailSvc mailer.Service,
	bus events.Publisher,
) PackageService {
	return &packageService{
		packages: packages,
		users:    users,
		notifier: notifier,
		mailer:   mailSvc,
		bus:      bus,
	}
}

func (s *packageService) Create(ctx context.Context, communityID string, req *domain.CreatePackageReq) (*domain.Package, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if req.UserID == 0 {
		return nil, domain.NewValidationError("user_id", "is required")
	}

	pkg, err := s.packages.Create(ctx, communityID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	go s.notifyOwner(context.WithoutCancel(ctx), pkg)

	s.publish(ctx, events.PackageCreated, events.PackageEvent{
		PackageID:   pkg.ID,
		CommunityID: pkg.CommunityID,
		UserID:      pkg.UserID,
		Status:      string(pkg.Status),
		At:          pkg.CreatedAt,
	})

	return pkg, nil
}

func (s *packageService) notifyOwner(ctx context.Context, pkg *domain.Package) {
	owner, err := s.users.FindByID(ctx, pkg.CommunityID, pkg.UserID)
	if err != nil || owner == nil {
		logger.WarnContext(ctx, "Skipping package notification, owner not resolved",
			"error", err, "package_id", pkg.ID, "user_id", pkg.UserID)
		return
	}
	if owner.PushToken == nil || *owner.PushToken == "" {
		return
	}

	s.notifier.SendOne(ctx, *owner.PushToken, push.Notification{
		Title:    "Package at the gate office",
		Body:     fmt.Sprintf("A package has arrived for you: %s", pkg.Name),
		Type:     push.TypePackage,
		EntityID: strconv.FormatInt(pkg.ID, 10),
	})
}

func (s *packageService) MarkPicked(ctx context.Context, communityID string, id int64) (*domain.Package, error) {
	existing, err := s.packages.GetByID(ctx, communityID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load package: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if existing.Status == domain.PackagePicked {
		return nil, domain.ErrAlreadyPicked
	}

	picked, err := s.packages.MarkPicked(ctx, communityID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark package picked: %w", err)
	}
	if picked == nil {
		// Lost a race with a concurrent pickup
		return nil, domain.ErrAlreadyPicked
	}

	go s.emailPicked(context.WithoutCancel(ctx), picked)

	s.publish(ctx, events.PackagePicked, events.PackageEvent{
		PackageID:   picked.ID,
		CommunityID: picked.CommunityID,
		UserID:      picked.UserID,
		Status:      string(picked.Status),
		At:          picked.UpdatedAt,
	})

	return picked, nil
}

func (s *packageService) emailPicked(ctx context.Context, pkg *domain.Package) {
	owner, err := s.users.FindByID(ctx, pkg.CommunityID, pkg.UserID)
	if err != nil || owner == nil {
		logger.WarnContext(ctx, "Skipping pickup email, owner not resolved",
			"error", err, "package_id", pkg.ID, "user_id", pkg.UserID)
		return
	}

	if err := s.mailer.SendPackagePicked(ctx, owner.Email, owner.Name, pkg); err != nil {
		logger.ErrorContext(ctx, "Failed to email pickup confirmation", "error", err, "package_id", pkg.ID)
	}
}

func (s *packageService) ListByUser(ctx context.Context, communityID string, userID int64) ([]domain.Package, error) {
	return s.packages.ListByUser(ctx, communityID, userID)
}

func (s *packageService) publish(ctx context.Context, subject string, event interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
