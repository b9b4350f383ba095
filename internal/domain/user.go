package domain

// User represents a registered account. Accounts are identified by email.
//
// Password is stored as provided at registration: the notification delivery
// path authenticates to the SMTP relay as the user, so the secret must be
// recoverable. See internal/mailer.
type User struct {
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Password      string          `json:"-"`
	StreetAddress string          `json:"street_address"`
	Games         map[string]Game `json:"games"`
}
