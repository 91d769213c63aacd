package rabbitmq

import (
	"context"
	"time"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

// Publisher puts JSON jobs on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier queues email jobs for the email worker.
type Notifier struct {
	Pub         Publisher
	CompanyName string
	SupportURL  string
}

func NewNotifier(pub Publisher, companyName, supportURL string) *Notifier {
	return &Notifier{Pub: pub, CompanyName: companyName, SupportURL: supportURL}
}

func (n *Notifier) PasswordChanged(ctx context.Context, u *entity.User) error {
	return n.Pub.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.PasswordChanged,
		Data: map[string]any{
			"Name":        u.Name,
			"Email":       u.Email,
			"Time":        u.UpdatedAt.UTC().Format(time.RFC1123),
			"CompanyName": n.CompanyName,
			"SupportURL":  n.SupportURL,
		},
	})
}

func (n *Notifier) OrderStatusChanged(ctx context.Context, o *entity.Order, buyer *entity.User, from entity.OrderStatus) error {
	return n.Pub.PublishJSON(ctx, mailer.EmailJob{
		To:       buyer.Email,
		Template: mailtpl.OrderStatus,
		Data: map[string]any{
			"Name":        buyer.Name,
			"OrderID":     o.ID,
			"From":        string(from),
			"Status":      string(o.Status),
			"Amount":      o.Payment.Transaction.Amount,
			"CompanyName": n.CompanyName,
		},
	})
}
