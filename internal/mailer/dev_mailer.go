package mailer

import (
	"context"

	"github.com/veridian/gatepass/internal/domain"
	"github.com/veridian/gatepass/pkg/logger"
)

// DevMailer logs instead of sending. Used when no MailerSend key is set.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendVisitorPass(ctx context.Context, toEmail, toName string, visitor *domain.Visitor, passPNG []byte, contentID string) error {
	logger.InfoContext(ctx, "[DEV MAIL] Visitor pass",
		"to", toEmail,
		"name", toName,
		"visitor_id", visitor.ID,
		"visitor_name", visitor.Name,
		"pass_bytes", len(passPNG),
		"content_id", contentID,
	)
	return nil
}

func (d *DevMailer) SendPackagePicked(ctx context.Context, toEmail, toName string, pkg *domain.Package) error {
	logger.InfoContext(ctx, "[DEV MAIL] Package picked up",
		"to", toEmail,
		"name", toName,
		"package_id", pkg.ID,
		"package_name", pkg.Name,
		"image_bytes", len(pkg.Image),
	)
	return nil
}
