// Package pass renders scannable visitor passes and resolves scanned tokens
// back to visitor ids. The token is the visitor's id in clear text; anyone
// holding a valid id can satisfy the gate verifier.
package pass

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/veridian/gatepass/internal/domain"
	"github.com/veridian/gatepass/pkg/config"
)

// Pass is a rendered gate pass ready for inline email embedding.
type Pass struct {
	PNG       []byte
	ContentID string
	URL       string
}

type Issuer struct {
	baseURL string
	size    int
}

func NewIssuer(cfg config.PassConfig) *Issuer {
	size := cfg.ImageSize
	if size <= 0 {
		size = 300
	}
	return &Issuer{baseURL: cfg.VerifyBaseURL, size: size}
}

// VerifyURL builds the canonical verification string embedded in the QR code.
func (i *Issuer) VerifyURL(visitorID string) string {
	return i.baseURL + "?id=" + url.QueryEscape(visitorID)
}

func (i *Issuer) Issue(v *domain.Visitor) (*Pass, error) {
	verifyURL := i.VerifyURL(v.ID)

	png, err := qrcode.Encode(verifyURL, qrcode.Medium, i.size)
	if err != nil {
		return nil, fmt.Errorf("failed to render pass: %w", err)
	}

	return &Pass{
		PNG:       png,
		ContentID: "visitor-pass-" + v.ID,
		URL:       verifyURL,
	}, nil
}

// TokenVisitorID extracts the visitor id from a scanned token. Gate devices
// may send either the full verification URL or the bare id.
func TokenVisitorID(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.NewValidationError("token", "must not be empty")
	}

	if strings.Contains(token, "://") {
		u, err := url.Parse(token)
		if err != nil {
			return "", domain.NewValidationError("token", "malformed verification URL")
		}
		id := u.Query().Get("id")
		if id == "" {
			return "", domain.NewValidationError("token", "missing id parameter")
		}
		return id, nil
	}

	return token, nil
}
