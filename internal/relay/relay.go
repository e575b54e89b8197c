// Package relay forwards contact-form messages to the site owner's inbox.
package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/folio-cms/folio/internal/model"
)

// ErrDisabled is returned by Disabled for every message.
var ErrDisabled = errors.New("contact relay is not configured")

// Relay delivers a contact message.
type Relay interface {
	Send(ctx context.Context, msg model.ContactMessage) error
}

// Noop logs the message and drops it. Used in development when no SMTP
// server is configured.
type Noop struct {
	Logger *slog.Logger
}

func (n Noop) Send(ctx context.Context, msg model.ContactMessage) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "contact message dropped (no SMTP configured)",
		"from", msg.Email,
		"subject", Subject(msg),
	)
	return nil
}

// Disabled rejects every message with ErrDisabled.
type Disabled struct{}

func (Disabled) Send(context.Context, model.ContactMessage) error {
	return ErrDisabled
}

// Subject is the subject line used for a relayed message.
func Subject(msg model.ContactMessage) string {
	return "Portfolio Contact Form: " + msg.Name + " - " + msg.Subject
}
