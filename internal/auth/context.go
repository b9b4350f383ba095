package auth

import "context"

type contextKey struct{}

var accountKey contextKey

// WithAccount returns a context carrying the authenticated account email.
func WithAccount(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, accountKey, email)
}

// AccountFromContext returns the authenticated account email, if any.
func AccountFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(accountKey).(string)
	return email, ok && email != ""
}
