// internal/mailer/mailer.go
package mailer

import "context"

// Mailer is the external delivery gateway: one synchronous send, no
// delivery confirmation beyond the returned error.
type Mailer interface {
    Send(ctx context.Context, to, subject, html string) error
}
