package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// noopKeep is how many requests NoopSender remembers.
const noopKeep = 50

// NoopSender is a no-op email sender for development and testing.
// It logs sends and keeps the most recent requests, but does not deliver emails.
type NoopSender struct {
	mu   sync.Mutex
	sent []SendRequest
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email but does not deliver it.
// PRE: req is a valid SendRequest
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	slog.Info("noop_email_send", "kind", req.Kind, "subject", req.Subject, "recipients", len(req.To))

	s.mu.Lock()
	s.sent = append(s.sent, req)
	if len(s.sent) > noopKeep {
		s.sent = s.sent[len(s.sent)-noopKeep:]
	}
	s.mu.Unlock()

	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// Sent returns the remembered requests, oldest first.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.sent...)
}
