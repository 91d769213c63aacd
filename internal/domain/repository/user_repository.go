package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

var (
	// ErrNotFound is returned by stores when no record matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a unique email constraint is violated.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserPatch carries the profile columns a user may change. Empty strings
// leave the stored value untouched. Role and security answer are not
// patchable; role changes go through SetRole.
type UserPatch struct {
	Name         string
	PasswordHash string
	Phone        string
	Address      string
	UpdatedAt    time.Time
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update applies p to the stored row and returns the result.
	Update(ctx context.Context, id string, p UserPatch) (*entity.User, error)
}
