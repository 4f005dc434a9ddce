// Package notify fans organization-facing notices out to the configured
// channels: SMTP email plus optional Slack and Discord. Delivery is always
// best-effort; failures are logged, never returned to callers.
package notify

import (
	"context"
	"log"
)

// Notice is one notification, already formatted for delivery.
type Notice struct {
	Subject string
	Body    string   // plain text
	HTML    string   // optional rich body; adapters without HTML use Body
	Fields  []Field  // key-value metadata for chat attachments
	Emails  []string // recipients for the mail adapter; others ignore it
}

// Field is a key-value pair displayed in a chat attachment.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Sender delivers notices. The negotiation core depends on this interface
// only, so tests can capture notices without any transport.
type Sender interface {
	Notify(ctx context.Context, n Notice)
}

// Adapter delivers one notice over a single channel.
type Adapter interface {
	Name() string
	Send(ctx context.Context, n Notice) error
}

// Notifier fans a notice out to all configured adapters.
type Notifier struct {
	adapters []Adapter
}

// NewNotifier creates a Notifier over the given adapters. Zero adapters is
// valid: every Notify becomes a no-op beyond a log line.
func NewNotifier(adapters ...Adapter) *Notifier {
	return &Notifier{adapters: adapters}
}

// Notify sends the notice on every adapter. Failures are logged and
// swallowed so side effects can never fail the operation that raised them.
func (n *Notifier) Notify(ctx context.Context, notice Notice) {
	if len(n.adapters) == 0 {
		log.Printf("notify: no channels configured, dropping %q", notice.Subject)
		return
	}
	for _, a := range n.adapters {
		if err := a.Send(ctx, notice); err != nil {
			log.Printf("notify: %s: send %q: %v", a.Name(), notice.Subject, err)
		}
	}
}
