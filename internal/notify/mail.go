package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"regexp"
	"strings"

	"github.com/lanternworks/scopeline/internal/config"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether addr looks like a deliverable address.
func ValidEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}

// MailAdapter delivers notices over SMTP as multipart text+HTML messages.
type MailAdapter struct {
	cfg    config.EmailConfig
	server string
	auth   smtp.Auth
	// send is swappable for tests; defaults to sendSMTP.
	send func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailAdapter creates an SMTP adapter from email configuration.
func NewMailAdapter(cfg config.EmailConfig) (*MailAdapter, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("notify: mail: host and from are required")
	}
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &MailAdapter{
		cfg:    cfg,
		server: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:   auth,
		send:   sendSMTP,
	}, nil
}

// Name implements Adapter.
func (m *MailAdapter) Name() string { return "mail" }

// Send implements Adapter. Invalid recipients are skipped rather than
// failing the whole notice.
func (m *MailAdapter) Send(ctx context.Context, n Notice) error {
	to := make([]string, 0, len(n.Emails))
	for _, addr := range n.Emails {
		if ValidEmail(addr) {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return fmt.Errorf("no valid recipients")
	}

	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	msg := buildMessage(from, to, n)
	if err := m.send(ctx, m.server, m.auth, m.cfg.From, to, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// sendSMTP is smtp.SendMail with the context's deadline applied to the
// connection, so a stalled server cannot hold the caller past its timeout.
func sendSMTP(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		conn.Close()
		return err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMessage assembles a multipart/alternative message with a plain text
// part and, when the notice carries one, an HTML part.
func buildMessage(from string, to []string, n Notice) []byte {
	const boundary = "boundary-scopeline"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", n.Subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")

	if n.HTML == "" {
		fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
		fmt.Fprintf(&msg, "\r\n")
		fmt.Fprintf(&msg, "%s\r\n", n.Body)
		return msg.Bytes()
	}

	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", n.Body)
	fmt.Fprintf(&msg, "\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", n.HTML)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return msg.Bytes()
}
