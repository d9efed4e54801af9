package mailer

import (
	"context"

	"github.com/veridian/gatepass/internal/domain"
)

type Service interface {
	// SendVisitorPass emails the host a gate pass with the QR image embedded
	// inline by content id.
	SendVisitorPass(ctx context.Context, toEmail, toName string, visitor *domain.Visitor, passPNG []byte, contentID string) error

	// SendPackagePicked emails the owner a pickup confirmation with the stored
	// package image attached.
	SendPackagePicked(ctx context.Context, toEmail, toName string, pkg *domain.Package) error
}
