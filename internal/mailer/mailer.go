// Package mailer delivers notification text to account mailboxes over SMTP.
// Messages are sent from the account's own mailbox: the delivery logs in with
// the account's credentials and mails the account to itself.
package mailer

import "context"

// Mailer is the outbound delivery capability consumed by the notification
// handlers.
type Mailer interface {
	Deliver(ctx context.Context, identity, secret, subject, body string) error
}
