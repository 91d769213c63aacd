package payment

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credentials identify the merchant account at the gateway.
type Credentials struct {
	MerchantID string
	PublicKey  string
	PrivateKey string
}

func (c Credentials) complete() bool {
	return c.MerchantID != "" && c.PublicKey != "" && c.PrivateKey != ""
}

// Sandbox authorizes every well-formed sale after an optional delay.
// It stands in for the hosted gateway in sandbox mode and for the mock
// checkout endpoint.
type Sandbox struct {
	Creds  Credentials
	Prefix string
	Method string
	Delay  time.Duration
}

// NewSandbox returns a gateway issuing "txn_" transactions.
func NewSandbox(creds Credentials, delay time.Duration) *Sandbox {
	return &Sandbox{Creds: creds, Prefix: "txn_", Method: "braintree", Delay: delay}
}

// NewMock returns the credential-free gateway behind the mock checkout.
func NewMock(delay time.Duration) *Sandbox {
	return &Sandbox{
		Creds:  Credentials{MerchantID: "mock", PublicKey: "mock", PrivateKey: "mock"},
		Prefix: "mock_",
		Method: "mock",
		Delay:  delay,
	}
}

func (s *Sandbox) ClientToken(ctx context.Context) (string, error) {
	if !s.Creds.complete() {
		return "", ErrNotConfigured
	}
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return s.Creds.MerchantID + "." + base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Sandbox) Sale(ctx context.Context, ch Charge) (Result, error) {
	if !s.Creds.complete() {
		return Result{}, ErrNotConfigured
	}
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-t.C:
		}
	}

	res := Result{
		Amount: ch.Amount,
		Status: "authorized",
		Method: s.Method,
	}
	if ch.Card != nil {
		num := strings.ReplaceAll(ch.Card.Number, " ", "")
		if len(num) < 4 {
			return Result{}, fmt.Errorf("%w: invalid card number", ErrDeclined)
		}
		res.Method = "credit_card"
		res.CardLast4 = num[len(num)-4:]
	}
	res.TransactionID = s.Prefix + uuid.NewString()
	return res, nil
}
