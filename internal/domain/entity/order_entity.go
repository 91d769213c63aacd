package entity

import "time"

// OrderStatus is one of the five lifecycle states of a placed order.
type OrderStatus string

const (
	OrderNotProcess OrderStatus = "Not Process"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancel     OrderStatus = "Cancel"
)

// OrderStatuses lists every accepted status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderNotProcess,
	OrderProcessing,
	OrderShipped,
	OrderDelivered,
	OrderCancel,
}

// ParseOrderStatus returns the status matching s exactly.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is expected from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancel
}

// Payment is the opaque record returned by the payment gateway.
type Payment struct {
	Success     bool               `json:"success"`
	Transaction PaymentTransaction `json:"transaction"`
}

type PaymentTransaction struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	CardLast4     string `json:"cardLast4,omitempty"`
}

// Order is a checkout result owned by a single buyer.
// Products keeps the insertion order of the cart.
type Order struct {
	ID        string      `json:"_id"`
	Products  []string    `json:"products"`
	BuyerID   string      `json:"buyer"`
	BuyerName string      `json:"buyerName,omitempty"`
	Payment   Payment     `json:"payment"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
