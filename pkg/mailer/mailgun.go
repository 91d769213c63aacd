package mailer

import (
	"context"
	"errors"
	"strings"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ErrMissingBody is returned when neither a text nor an html body is given.
var ErrMissingBody = errors.New("mailer: empty message body")

// MailgunConfig holds account settings. Region "eu" targets the EU API host.
type MailgunConfig struct {
	Domain  string
	APIKey  string
	Sender  string
	Region  string
	Timeout time.Duration
}

// Mailgun sends email through the Mailgun API.
type Mailgun struct {
	sender  string
	timeout time.Duration
	client  *mg.MailgunImpl
}

func NewMailgun(cfg MailgunConfig) *Mailgun {
	client := mg.NewMailgun(cfg.Domain, cfg.APIKey)
	if strings.EqualFold(cfg.Region, "eu") {
		client.SetAPIBase(mg.APIBaseEU)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailgun{sender: cfg.Sender, timeout: timeout, client: client}
}

// Send delivers one message. html is optional and sent alongside text.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if text == "" && html == "" {
		return ErrMissingBody
	}
	msg := m.client.NewMessage(m.sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
