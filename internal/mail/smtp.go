package mail

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/claimintake-backend/internal/pkg/ctxutil"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
}

// SMTPTransport submits one message per recipient over an authenticated,
// TLS-protected connection. Recipients are sent concurrently; every send
// is attempted even when an earlier one fails, and the first failure is
// the one reported.
type SMTPTransport struct {
	log *logger.Logger
	cfg SMTPConfig
}

func NewSMTP(log *logger.Logger, cfg SMTPConfig) *SMTPTransport {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &SMTPTransport{
		log: log.With("client", "SMTPTransport"),
		cfg: cfg,
	}
}

func (t *SMTPTransport) Name() string { return "smtp" }

func (t *SMTPTransport) Configured() bool {
	return strings.TrimSpace(t.cfg.Host) != "" && strings.TrimSpace(t.cfg.FromEmail) != ""
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if !t.Configured() {
		return fmt.Errorf("smtp: not configured")
	}
	ctx = ctxutil.Default(ctx)

	var g errgroup.Group
	for _, addr := range msg.To {
		g.Go(func() error {
			if err := t.sendOne(ctx, addr, msg.Subject, msg.HTML); err != nil {
				t.log.Warn("SMTP send failed", "error", err.Error())
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func (t *SMTPTransport) sendOne(ctx context.Context, to, subject, html string) error {
	m := gomail.NewMsg()
	if err := m.From(t.cfg.FromEmail); err != nil {
		return fmt.Errorf("smtp from %q: %w", t.cfg.FromEmail, err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("smtp to %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetBodyString(gomail.TypeTextHTML, html)

	opts := []gomail.Option{
		gomail.WithPort(t.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	if strings.TrimSpace(t.cfg.Username) != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.cfg.Username),
			gomail.WithPassword(t.cfg.Password),
		)
	}
	client, err := gomail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %q: %w", to, err)
	}
	return nil
}
