package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// ErrStatusChanged is returned by UpdateStatus when the stored status no
// longer matches the expected one.
var ErrStatusChanged = errors.New("order status changed concurrently")

// OrderRepository persists orders. List methods return newest first.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]entity.Order, error)
	ListAll(ctx context.Context) ([]entity.Order, error)
	// UpdateStatus moves the order from status from to status to. It fails
	// with ErrStatusChanged if the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to entity.OrderStatus) (*entity.Order, error)
}
