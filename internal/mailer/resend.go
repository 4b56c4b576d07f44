// internal/mailer/resend.go
package mailer

import (
    "context"
    "fmt"
    "os"

    "github.com/resend/resend-go/v2"
)

// ResendMailer sends transactional email through Resend.
type ResendMailer struct {
    client    *resend.Client
    fromEmail string
}

func NewResendMailer(apiKey string) *ResendMailer {
    if apiKey == "" {
        apiKey = os.Getenv("RESEND_API_KEY")
    }

    from := os.Getenv("FROM_EMAIL")
    if from == "" {
        from = "notifications@dicode.app"
    }

    return &ResendMailer{
        client:    resend.NewClient(apiKey),
        fromEmail: from,
    }
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
    params := &resend.SendEmailRequest{
        From:    m.fromEmail,
        To:      []string{to},
        Subject: subject,
        Html:    html,
    }

    _, err := m.client.Emails.SendWithContext(ctx, params)
    if err != nil {
        return fmt.Errorf("failed to send email via Resend: %w", err)
    }

    return nil
}

var _ Mailer = (*ResendMailer)(nil)
