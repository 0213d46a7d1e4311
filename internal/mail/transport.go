// Package mail delivers claim notifications over an ordered list of
// transports: the first configured transport that succeeds wins, and the
// last failure is surfaced when none does.
package mail

import (
	"context"
	"fmt"

	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

type Transport interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

type Chain struct {
	log        *logger.Logger
	transports []Transport
}

func NewChain(log *logger.Logger, transports ...Transport) *Chain {
	return &Chain{
		log:        log.With("service", "MailChain"),
		transports: transports,
	}
}

// Send tries each configured transport in order, once each. An empty
// recipient list is a no-op success.
func (c *Chain) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		c.log.Debug("No recipients, skipping notification")
		return nil
	}

	var lastErr error
	attempted := false
	for _, t := range c.transports {
		if !t.Configured() {
			continue
		}
		attempted = true
		err := t.Send(ctx, msg)
		if err == nil {
			c.log.Info("Notification sent", "transport", t.Name(), "recipients", len(msg.To))
			return nil
		}
		c.log.Warn("Notification transport failed", "transport", t.Name(), "error", err.Error())
		lastErr = err
	}

	if !attempted {
		return fmt.Errorf("no mail transport configured")
	}
	return lastErr
}
