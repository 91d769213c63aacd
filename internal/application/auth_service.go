package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// AuthService owns registration, login, password reset and profile updates.
type AuthService struct {
	Users    repo.UserRepository
	Hasher   helpers.Hasher
	JWT      *helpers.JWTManager
	Notifier Notifier
	Logger   *logrus.Logger

	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repo.UserRepository, hasher helpers.Hasher, jwt *helpers.JWTManager, notifier Notifier, logger *logrus.Logger) *AuthService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &AuthService{
		Users:    users,
		Hasher:   hasher,
		JWT:      jwt,
		Notifier: notifier,
		Logger:   logger,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User      entity.PublicUser
	Token     string
	ExpiresAt time.Time
}

type UpdateProfileInput struct {
	Name     string
	Password string
	Phone    string
	Address  string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Register validates the fields in a fixed order, rejects duplicate emails and
// stores the user with hashed password and security answer.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	switch {
	case blank(in.Name):
		return nil, required("name", "Name")
	case blank(in.Email):
		return nil, required("email", "Email")
	case in.Password == "":
		return nil, required("password", "Password")
	case blank(in.Phone):
		return nil, required("phone", "Phone number")
	case blank(in.Address):
		return nil, required("address", "Address")
	case blank(in.Answer):
		return nil, required("answer", "Security answer")
	}

	email := normalizeEmail(in.Email)
	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	pwHash, err := s.hash("password", "Password", in.Password)
	if err != nil {
		return nil, err
	}
	answerHash, err := s.hash("answer", "Security answer", normalizeAnswer(in.Answer))
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	u := &entity.User{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		Password:       pwHash,
		Phone:          strings.TrimSpace(in.Phone),
		Address:        strings.TrimSpace(in.Address),
		SecurityAnswer: answerHash,
		Role:           entity.RoleUser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	registrations.Add(1)
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	return u, nil
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if blank(email) || password == "" {
		return nil, &ValidationError{Field: "credentials", Message: "Invalid email or password"}
	}
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			loginFailures.Add(1)
			return nil, ErrEmailNotFound
		}
		return nil, err
	}
	if !s.Hasher.Compare(u.Password, password) {
		loginFailures.Add(1)
		return nil, ErrInvalidPassword
	}
	token, exp, err := s.JWT.Issue(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		}
		return nil, err
	}
	logins.Add(1)
	return &LoginResult{User: u.Public(), Token: token, ExpiresAt: exp}, nil
}

// ForgotPassword replaces the password when both email and security answer match.
// Any mismatch yields ErrNoMatch so callers cannot tell which one was wrong.
func (s *AuthService) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	switch {
	case blank(email):
		return required("email", "Email")
	case blank(answer):
		return required("answer", "Security answer")
	case newPassword == "":
		return required("newPassword", "New password")
	}

	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if u == nil {
		// burn a comparison so unknown emails cost the same as wrong answers
		s.Hasher.Compare(s.dummy(), answer)
		return ErrNoMatch
	}
	if !s.Hasher.Compare(u.SecurityAnswer, normalizeAnswer(answer)) {
		return ErrNoMatch
	}

	hash, err := s.hash("newPassword", "New password", newPassword)
	if err != nil {
		return err
	}
	u, err = s.Users.Update(ctx, u.ID, repo.UserPatch{PasswordHash: hash, UpdatedAt: s.clock().UTC()})
	if err != nil {
		return err
	}
	passwordResets.Add(1)
	if err := s.Notifier.PasswordChanged(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("password changed notification failed")
	}
	return nil
}

// CurrentUser loads the identity behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies the supplied fields. Email is immutable and
// empty fields keep their previous values.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	if in.Password != "" && utf8.RuneCountInString(in.Password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}
	patch := repo.UserPatch{
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		UpdatedAt: s.clock().UTC(),
	}
	if in.Password != "" {
		hash, err := s.hash("password", "Password", in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = hash
	}
	u, err := s.Users.Update(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// hash reports inputs bcrypt cannot take as a validation error on field.
func (s *AuthService) hash(field, label, plain string) (string, error) {
	h, err := s.Hasher.Hash(plain)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d bytes", label, helpers.MaxPasswordBytes)}
	}
	return h, err
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}

// Answers compare case-insensitively, ignoring surrounding spaces.
func normalizeAnswer(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}

func (s *AuthService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
