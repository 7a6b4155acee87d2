package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrNoRecipients is returned for a request with an empty To list.
var ErrNoRecipients = errors.New("email has no recipients")

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a new ResendSender with the given API key and default from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send sends a single email via Resend.
// PRE: req has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	params := buildParams(req, s.from)

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "kind", req.Kind, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("resend_sent", "message_id", sent.Id, "kind", req.Kind, "subject", req.Subject)
	return SendResult{
		MessageID: sent.Id,
		SentAt:    time.Now(),
	}, nil
}

func buildParams(req SendRequest, defaultFrom string) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = defaultFrom
	}
	params := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if req.ReplyTo != "" {
		params.ReplyTo = req.ReplyTo
	}
	if req.Kind != "" {
		params.Tags = []resend.Tag{{Name: "kind", Value: req.Kind}}
	}
	return params
}
