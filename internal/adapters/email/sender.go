package email

import (
	"context"
	"time"
)

// Message kinds, sent to the provider as a tag.
const (
	KindPasswordReset = "password_reset"
	KindWelcome       = "welcome"
	KindCoachApproved = "coach_approved"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address (e.g. "FitGym Pro <noreply@fitgympro.com>"); empty uses the sender default
	Subject string
	HTML    string // HTML body
	ReplyTo string // Reply-to address
	Kind    string // One of the Kind constants
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
