package handlers

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	templates "github.com/jonasfh/picobell-api/templates/html"
)

// MailSender delivers the fallback alert used when an apartment has no
// push-addressable devices at all.
type MailSender interface {
	SendRingAlert(toEmail, address string) error
}

// SendgridMailer sends ring alerts through SendGrid.
type SendgridMailer struct {
	APIKey string
}

// NewSendgridMailer returns a mailer using the given SendGrid API key.
func NewSendgridMailer(apiKey string) *SendgridMailer {
	return &SendgridMailer{APIKey: apiKey}
}

// SendRingAlert emails a single "someone is at the door" notice.
func (m *SendgridMailer) SendRingAlert(toEmail, address string) error {
	from := mail.NewEmail("Picobell", "no-reply@picobell.app")
	subject := fmt.Sprintf("Doorbell: someone is at %s", address)
	to := mail.NewEmail("", toEmail)
	plain := fmt.Sprintf("Someone rang the doorbell at %s. Open the app to answer.", address)
	html := templates.RenderRingAlertEmail(address)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(m.APIKey)
	_, err := client.Send(msg)
	return err
}
