// Package payment holds the checkout gateway abstraction. Gateways are built
// at process start and passed to the handlers that need them.
package payment

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("payment gateway not configured")
	ErrDeclined      = errors.New("payment declined")
	ErrUnavailable   = errors.New("payment gateway unavailable")
)

// Card carries raw card input from the checkout form.
type Card struct {
	Number string `json:"number"`
	Expiry string `json:"expiry,omitempty"`
	CVV    string `json:"cvv,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Charge is a single sale request.
type Charge struct {
	Amount string
	Nonce  string
	Card   *Card
}

// Result describes an authorized sale.
type Result struct {
	TransactionID string
	Amount        string
	Status        string
	Method        string
	CardLast4     string
}

// Gateway is the external payment service.
type Gateway interface {
	ClientToken(ctx context.Context) (string, error)
	Sale(ctx context.Context, ch Charge) (Result, error)
}
