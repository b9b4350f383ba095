package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPMailer delivers over SMTP with STARTTLS.
type SMTPMailer struct {
	host string
	port int
}

// NewSMTPMailer creates a mailer for the given SMTP server.
func NewSMTPMailer(host string, port int) *SMTPMailer {
	return &SMTPMailer{host: host, port: port}
}

// Deliver sends a message from identity to identity, authenticating with the
// account's own credentials. The context bounds the initial dial; SMTP
// conversation timeouts ride on the connection's deadline.
func (m *SMTPMailer) Deliver(ctx context.Context, identity, secret, subject, body string) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open smtp session: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
		return fmt.Errorf("failed to start tls: %w", err)
	}
	if err := client.Auth(smtp.PlainAuth("", identity, secret, m.host)); err != nil {
		return fmt.Errorf("failed to authenticate as %s: %w", identity, err)
	}

	if err := client.Mail(identity); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(identity); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := wc.Write([]byte(formatMessage(identity, subject, body))); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

func formatMessage(identity, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", identity)
	fmt.Fprintf(&b, "To: %s\r\n", identity)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}
