package application

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// TransitionPolicy decides whether an order may move between two statuses.
type TransitionPolicy interface {
	Name() string
	Allow(from, to entity.OrderStatus) bool
}

const (
	PolicyForward    = "forward"
	PolicyPermissive = "permissive"
)

// ParsePolicy returns the policy registered under name.
func ParsePolicy(name string) (TransitionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyForward:
		return ForwardPolicy{}, nil
	case PolicyPermissive:
		return PermissivePolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown order transition policy %q", name)
	}
}

// stage orders the non-cancel statuses along the fulfilment path.
var stage = map[entity.OrderStatus]int{
	entity.OrderNotProcess: 0,
	entity.OrderProcessing: 1,
	entity.OrderShipped:    2,
	entity.OrderDelivered:  3,
}

// ForwardPolicy only lets orders advance. Stages may be skipped, Cancel is
// reachable from any non-terminal status, and terminal statuses never change.
type ForwardPolicy struct{}

func (ForwardPolicy) Name() string { return PolicyForward }

func (ForwardPolicy) Allow(from, to entity.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == entity.OrderCancel {
		return true
	}
	return stage[to] > stage[from]
}

// PermissivePolicy accepts any move between enumerated statuses.
type PermissivePolicy struct{}

func (PermissivePolicy) Name() string { return PolicyPermissive }

func (PermissivePolicy) Allow(_, _ entity.OrderStatus) bool { return true }
