package mail

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/claimintake-backend/internal/pkg/ctxutil"
	"github.com/yungbote/claimintake-backend/internal/pkg/httpx"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
)

type SendGridConfig struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// SendGridTransport posts one mail/send request addressing all
// recipients. A single attempt is made per Send call.
type SendGridTransport struct {
	log        *logger.Logger
	cfg        SendGridConfig
	httpClient *http.Client
}

func NewSendGrid(log *logger.Logger, cfg SendGridConfig) *SendGridTransport {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SendGridTransport{
		log:        log.With("client", "SendGridTransport"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (t *SendGridTransport) Name() string { return "sendgrid" }

func (t *SendGridTransport) Configured() bool {
	return strings.TrimSpace(t.cfg.APIKey) != ""
}

// --- SendGrid mail send wire types ---

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

func (t *SendGridTransport) Send(ctx context.Context, msg Message) error {
	if !t.Configured() {
		return fmt.Errorf("sendgrid: not configured")
	}
	if strings.TrimSpace(t.cfg.FromEmail) == "" {
		return fmt.Errorf("sendgrid: From email required (set SENDGRID_FROM_EMAIL)")
	}

	to := make([]emailAddress, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, emailAddress{Email: addr})
	}

	wire := mailSendRequest{
		Personalizations: []personalization{{To: to}},
		From:             emailAddress{Email: t.cfg.FromEmail, Name: t.cfg.FromName},
		Subject:          msg.Subject,
		Content:          []mailContent{{Type: "text/html", Value: msg.HTML}},
	}

	headers := map[string]string{"Authorization": "Bearer " + t.cfg.APIKey}
	err := httpx.DoJSON(ctxutil.Default(ctx), t.httpClient, "sendgrid", http.MethodPost,
		t.cfg.BaseURL+"/v3/mail/send", headers, wire, nil)
	if err != nil {
		return err
	}
	t.log.Debug("SendGrid request accepted", "recipients", len(msg.To))
	return nil
}
