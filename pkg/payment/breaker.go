package payment

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Breaker fails fast while the wrapped gateway keeps erroring.
// Declines and missing credentials do not count as failures.
type Breaker struct {
	gw Gateway
	cb *gobreaker.CircuitBreaker
}

func NewBreaker(name string, gw Gateway, logger *logrus.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDeclined) || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("payment breaker state changed")
			}
		},
	})
	return &Breaker{gw: gw, cb: cb}
}

func (b *Breaker) ClientToken(ctx context.Context) (string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.gw.ClientToken(ctx)
	})
	if err != nil {
		return "", b.translate(err)
	}
	return v.(string), nil
}

func (b *Breaker) Sale(ctx context.Context, ch Charge) (Result, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.gw.Sale(ctx, ch)
	})
	if err != nil {
		return Result{}, b.translate(err)
	}
	return v.(Result), nil
}

// State exposes the breaker state for diagnostics.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
