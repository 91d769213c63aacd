package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ClientToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) Sale(ctx context.Context, ch Charge) (Result, error) {
	args := m.Called(ctx, ch)
	return args.Get(0).(Result), args.Error(1)
}

func TestBreakerPassesThrough(t *testing.T) {
	gw := &mockGateway{}
	gw.On("Sale", mock.Anything, mock.Anything).Return(Result{TransactionID: "txn_1"}, nil).Once()
	gw.On("ClientToken", mock.Anything).Return("tok", nil).Once()

	b := NewBreaker("test", gw, nil)
	res, err := b.Sale(context.Background(), Charge{Amount: "1.00"})
	require.NoError(t, err)
	assert.Equal(t, "txn_1", res.TransactionID)

	tok, err := b.ClientToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	gw.AssertExpectations(t)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	gw := &mockGateway{}
	boom := errors.New("connection reset")
	gw.On("Sale", mock.Anything, mock.Anything).Return(Result{}, boom).Times(5)

	b := NewBreaker("test", gw, nil)
	for i := 0; i < 5; i++ {
		_, err := b.Sale(context.Background(), Charge{})
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Sale(context.Background(), Charge{})
	assert.ErrorIs(t, err, ErrUnavailable)
	gw.AssertNumberOfCalls(t, "Sale", 5)
}

func TestBreakerIgnoresDeclines(t *testing.T) {
	gw := &mockGateway{}
	gw.On("Sale", mock.Anything, mock.Anything).Return(Result{}, ErrDeclined)

	b := NewBreaker("test", gw, nil)
	for i := 0; i < 10; i++ {
		_, err := b.Sale(context.Background(), Charge{})
		assert.ErrorIs(t, err, ErrDeclined)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
