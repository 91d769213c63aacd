package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/infrastructure/memory"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PasswordChanged(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockNotifier) OrderStatusChanged(ctx context.Context, o *entity.Order, buyer *entity.User, from entity.OrderStatus) error {
	return m.Called(ctx, o, buyer, from).Error(0)
}

func newAuthService(t *testing.T, notifier Notifier) (*AuthService, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	svc := NewAuthService(users, helpers.NewBcryptHasher(bcrypt.MinCost), helpers.NewJWTManager("test-secret", time.Hour), notifier, helpers.NewDiscardLogger())
	return svc, users
}

func validRegistration(email string) RegisterInput {
	return RegisterInput{
		Name:     "Alice",
		Email:    email,
		Password: "secret1",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Answer:   "Blue",
	}
}

func mustRegister(t *testing.T, svc *AuthService, email string) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), validRegistration(email))
	require.NoError(t, err)
	return u
}
