package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/payment"
)

// OrderService manages checkout, order listings and status transitions.
type OrderService struct {
	Orders   repo.OrderRepository
	Users    repo.UserRepository
	Policy   TransitionPolicy
	Indexer  OrderIndexer
	Notifier Notifier
	Logger   *logrus.Logger

	now func() time.Time
}

func NewOrderService(orders repo.OrderRepository, users repo.UserRepository, policy TransitionPolicy, indexer OrderIndexer, notifier Notifier, logger *logrus.Logger) *OrderService {
	if policy == nil {
		policy = ForwardPolicy{}
	}
	if indexer == nil {
		indexer = NoopIndexer{}
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &OrderService{
		Orders:   orders,
		Users:    users,
		Policy:   policy,
		Indexer:  indexer,
		Notifier: notifier,
		Logger:   logger,
		now:      time.Now,
	}
}

// CartItem is one line of the checkout cart.
type CartItem struct {
	ProductID string
	Price     float64
	Quantity  int
}

type CheckoutInput struct {
	Cart  []CartItem
	Nonce string
	Card  *payment.Card
	// RequireMethod rejects carts submitted without a nonce or card.
	RequireMethod bool
}

// ListOrdersForBuyer returns the buyer's orders, newest first.
func (s *OrderService) ListOrdersForBuyer(ctx context.Context, buyerID string) ([]entity.Order, error) {
	orders, err := s.Orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	s.attachBuyerNames(ctx, orders)
	return orders, nil
}

// ListAllOrders returns every order across all buyers, newest first.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.Orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	s.attachBuyerNames(ctx, orders)
	return orders, nil
}

// SearchOrders queries the order index.
func (s *OrderService) SearchOrders(ctx context.Context, q OrderQuery) ([]entity.Order, error) {
	if q.Status != "" {
		if _, ok := entity.ParseOrderStatus(q.Status); !ok {
			return nil, ErrUnknownStatus
		}
	}
	return s.Indexer.SearchOrders(ctx, q)
}

// Transition moves an order to status on behalf of actor, who must be an administrator.
func (s *OrderService) Transition(ctx context.Context, actor *entity.User, orderID, status string) (*entity.Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrInsufficientPrivilege
	}
	to, ok := entity.ParseOrderStatus(status)
	if !ok {
		return nil, ErrUnknownStatus
	}
	current, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	from := current.Status
	if from == to {
		return current, nil
	}
	if !s.Policy.Allow(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	updated, err := s.Orders.UpdateStatus(ctx, orderID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, repo.ErrStatusChanged):
			return nil, fmt.Errorf("%w: %s changed before %s", ErrInvalidTransition, from, to)
		}
		return nil, err
	}
	orderTransitions.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"actor_id": actor.ID,
			"from":     from,
			"to":       to,
			"policy":   s.Policy.Name(),
		}).Info("order status changed")
	}

	s.index(ctx, updated)
	if buyer, err := s.Users.GetByID(ctx, updated.BuyerID); err == nil {
		updated.BuyerName = buyer.Name
		if nErr := s.Notifier.OrderStatusChanged(ctx, updated, buyer, from); nErr != nil && s.Logger != nil {
			s.Logger.WithError(nErr).WithField("order_id", orderID).Warn("order status notification failed")
		}
	}
	return updated, nil
}

// Checkout charges the cart through gw and records the order for buyerID.
func (s *OrderService) Checkout(ctx context.Context, gw payment.Gateway, buyerID string, in CheckoutInput) (*entity.Order, error) {
	if len(in.Cart) == 0 {
		return nil, ErrEmptyCart
	}
	if in.RequireMethod && in.Nonce == "" && in.Card == nil {
		return nil, ErrPaymentMethodRequired
	}

	res, err := gw.Sale(ctx, payment.Charge{Amount: CartTotal(in.Cart), Nonce: in.Nonce, Card: in.Card})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrDeclined):
			paymentsDeclined.Add(1)
			return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		case errors.Is(err, payment.ErrNotConfigured):
			return nil, ErrPaymentNotConfigured
		}
		return nil, err
	}

	products := make([]string, 0, len(in.Cart))
	for _, it := range in.Cart {
		products = append(products, it.ProductID)
	}
	now := s.clock().UTC()
	o := &entity.Order{
		ID:       uuid.NewString(),
		Products: products,
		BuyerID:  buyerID,
		Payment: entity.Payment{
			Success: true,
			Transaction: entity.PaymentTransaction{
				ID:            res.TransactionID,
				Amount:        res.Amount,
				Status:        res.Status,
				PaymentMethod: res.Method,
				CardLast4:     res.CardLast4,
			},
		},
		Status:    entity.OrderNotProcess,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{
				"buyer_id":       buyerID,
				"transaction_id": res.TransactionID,
			}).Error("order save failed after successful payment")
		}
		return nil, fmt.Errorf("%w: %v", ErrOrderNotSaved, err)
	}
	ordersCreated.Add(1)
	s.index(ctx, o)
	return o, nil
}

// CartTotal sums price times quantity in cents and formats it with two decimals.
// Missing quantities count as one.
func CartTotal(cart []CartItem) string {
	var cents int64
	for _, it := range cart {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		cents += int64(math.Round(it.Price*100)) * int64(qty)
	}
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

func (s *OrderService) index(ctx context.Context, o *entity.Order) {
	if err := s.Indexer.IndexOrder(ctx, o); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Warn("order index failed")
	}
}

// attachBuyerNames fills BuyerName using one lookup per distinct buyer.
// Names live only for this call.
func (s *OrderService) attachBuyerNames(ctx context.Context, orders []entity.Order) {
	if s.Users == nil {
		return
	}
	names := make(map[string]string)
	for i := range orders {
		id := orders[i].BuyerID
		name, seen := names[id]
		if !seen {
			if u, err := s.Users.GetByID(ctx, id); err == nil {
				name = u.Name
			}
			names[id] = name
		}
		orders[i].BuyerName = name
	}
}

func sortNewestFirst(orders []entity.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func (s *OrderService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
