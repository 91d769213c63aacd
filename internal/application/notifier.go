package application

import (
	"context"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// Notifier delivers user-facing notifications out of band.
// Failures are logged by callers and never fail the originating operation.
type Notifier interface {
	PasswordChanged(ctx context.Context, u *entity.User) error
	OrderStatusChanged(ctx context.Context, o *entity.Order, buyer *entity.User, from entity.OrderStatus) error
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) PasswordChanged(context.Context, *entity.User) error { return nil }

func (NoopNotifier) OrderStatusChanged(context.Context, *entity.Order, *entity.User, entity.OrderStatus) error {
	return nil
}

// OrderIndexer mirrors orders into a search index.
type OrderIndexer interface {
	IndexOrder(ctx context.Context, o *entity.Order) error
	SearchOrders(ctx context.Context, q OrderQuery) ([]entity.Order, error)
}

// OrderQuery filters the administrator order search.
type OrderQuery struct {
	Status  string
	BuyerID string
	Size    int
}

// NoopIndexer is used when no search backend is configured.
type NoopIndexer struct{}

func (NoopIndexer) IndexOrder(context.Context, *entity.Order) error { return nil }

func (NoopIndexer) SearchOrders(context.Context, OrderQuery) ([]entity.Order, error) {
	return []entity.Order{}, nil
}
