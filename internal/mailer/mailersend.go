package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/veridian/gatepass/internal/domain"
)

type MailerSendClient struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	return &MailerSendClient{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
}

func (m *MailerSendClient) SendVisitorPass(ctx context.Context, toEmail, toName string, visitor *domain.Visitor, passPNG []byte, contentID string) error {
	subject := fmt.Sprintf("Gate pass for %s", visitor.Name)

	html := fmt.Sprintf(`
		<h2>Your visitor gate pass</h2>
		<p>Hi %s,</p>
		<p>A gate pass has been issued for <strong>%s</strong> (%s), expected on %s.</p>
		<p>Show this code at the gate:</p>
		<p><img src="cid:%s" alt="Gate pass QR code" width="300" height="300"/></p>
		<p>The guard can also look the visitor up by id: <code>%s</code></p>
	`, toName, visitor.Name, visitor.Type, visitor.VisitDate.Format("Mon, 02 Jan 2006"), contentID, visitor.ID)

	text := fmt.Sprintf("A gate pass has been issued for %s, expected on %s.\nVisitor id: %s",
		visitor.Name, visitor.VisitDate.Format("Mon, 02 Jan 2006"), visitor.ID)

	attachment := mailersend.Attachment{
		Content:     base64.StdEncoding.EncodeToString(passPNG),
		Filename:    "gate-pass.png",
		ID:          contentID,
		Disposition: mailersend.DispositionInline,
	}

	return m.send(ctx, toEmail, toName, subject, text, html, &attachment)
}

func (m *MailerSendClient) SendPackagePicked(ctx context.Context, toEmail, toName string, pkg *domain.Package) error {
	subject := fmt.Sprintf("Package picked up: %s", pkg.Name)

	html := fmt.Sprintf(`
		<h2>Package picked up</h2>
		<p>Hi %s,</p>
		<p>Your package <strong>%s</strong> was collected at the gate office.</p>
		<p>The photo taken at drop-off is attached for your records.</p>
	`, toName, pkg.Name)

	text := fmt.Sprintf("Your package %q was collected at the gate office.", pkg.Name)

	var attachment *mailersend.Attachment
	if len(pkg.Image) > 0 {
		attachment = &mailersend.Attachment{
			Content:     base64.StdEncoding.EncodeToString(pkg.Image),
			Filename:    "package.jpg",
			Disposition: mailersend.DispositionAttachment,
		}
	}

	return m.send(ctx, toEmail, toName, subject, text, html, attachment)
}

func (m *MailerSendClient) send(ctx context.Context, toEmail, toName, subject, text, html string, attachment *mailersend.Attachment) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)
	if attachment != nil {
		msg.AddAttachment(*attachment)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailersend send failed: %w", err)
	}
	return checkResponse(res)
}

// checkResponse closes the response body and surfaces API rejections, which
// the SDK reports only through the HTTP status.
func checkResponse(res *mailersend.Response) error {
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
