package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// SMTPNotifier delivers mail over plain SMTP. In development the portal
// points this at a MailHog instance; there is no TLS or authentication
// because the relay is assumed to sit on the local network.
type SMTPNotifier struct {
	Host     string
	Port     int
	From     string
	FromName string
	Timeout  time.Duration // connection and IO deadline when ctx has none
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(n.Host, strconv.Itoa(n.Port))

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(timeout)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, n.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.Mail(n.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}

	msg := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n",
		n.FromName, n.From, to, subject, body,
	)
	if _, err := fmt.Fprint(wc, msg); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return c.Quit()
}
