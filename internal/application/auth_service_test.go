package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/memory"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

func TestRegisterReportsFirstMissingField(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	cases := []struct {
		name    string
		mutate  func(*RegisterInput)
		field   string
		message string
	}{
		{"name", func(in *RegisterInput) { in.Name = "" }, "name", "Name is required"},
		{"email", func(in *RegisterInput) { in.Email = "  " }, "email", "Email is required"},
		{"password", func(in *RegisterInput) { in.Password = "" }, "password", "Password is required"},
		{"phone", func(in *RegisterInput) { in.Phone = "" }, "phone", "Phone number is required"},
		{"address", func(in *RegisterInput) { in.Address = "" }, "address", "Address is required"},
		{"answer", func(in *RegisterInput) { in.Answer = "" }, "answer", "Security answer is required"},
		{"name before answer", func(in *RegisterInput) { in.Name = ""; in.Answer = "" }, "name", "Name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration("a@example.com")
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.message, ve.Message)
		})
	}
}

func TestRegisterHashesSecretsAndNormalizesEmail(t *testing.T) {
	svc, users := newAuthService(t, nil)
	u, err := svc.Register(context.Background(), validRegistration("  Alice@Example.COM "))
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, entity.RoleUser, u.Role)

	stored, err := users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.NotEqual(t, "Blue", stored.SecurityAnswer)
	assert.True(t, svc.Hasher.Compare(stored.Password, "secret1"))
	assert.True(t, svc.Hasher.Compare(stored.SecurityAnswer, "blue"))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	mustRegister(t, svc, "a@example.com")

	_, err := svc.Register(context.Background(), validRegistration("A@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

// duplicateOnCreate simulates a concurrent insert winning the unique index.
type duplicateOnCreate struct {
	repo.UserRepository
}

func (duplicateOnCreate) Create(context.Context, *entity.User) error { return repo.ErrDuplicateEmail }

func TestRegisterMapsStoreUniqueViolation(t *testing.T) {
	svc, users := newAuthService(t, nil)
	svc.Users = duplicateOnCreate{users}

	_, err := svc.Register(context.Background(), validRegistration("a@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	u := mustRegister(t, svc, "a@example.com")

	res, err := svc.Login(context.Background(), "A@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	sub, err := svc.JWT.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	mustRegister(t, svc, "a@example.com")

	_, err := svc.Login(context.Background(), "", "secret1")
	assert.True(t, IsValidation(err))

	_, err = svc.Login(context.Background(), "a@example.com", "")
	assert.True(t, IsValidation(err))

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailNotFound)

	_, err = svc.Login(context.Background(), "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestForgotPasswordReplacesPassword(t *testing.T) {
	n := &mockNotifier{}
	n.On("PasswordChanged", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "a@example.com"
	})).Return(nil).Once()
	svc, _ := newAuthService(t, n)
	mustRegister(t, svc, "a@example.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@example.com", " BLUE ", "newpass1"))

	_, err := svc.Login(context.Background(), "a@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = svc.Login(context.Background(), "a@example.com", "newpass1")
	assert.NoError(t, err)
	n.AssertExpectations(t)
}

func TestForgotPasswordMismatchIsIndistinguishable(t *testing.T) {
	n := &mockNotifier{}
	svc, _ := newAuthService(t, n)
	mustRegister(t, svc, "a@example.com")

	errWrongAnswer := svc.ForgotPassword(context.Background(), "a@example.com", "red", "newpass1")
	errUnknownEmail := svc.ForgotPassword(context.Background(), "nobody@example.com", "blue", "newpass1")
	assert.ErrorIs(t, errWrongAnswer, ErrNoMatch)
	assert.ErrorIs(t, errUnknownEmail, ErrNoMatch)
	assert.Equal(t, errWrongAnswer.Error(), errUnknownEmail.Error())

	_, err := svc.Login(context.Background(), "a@example.com", "secret1")
	assert.NoError(t, err)
	n.AssertNotCalled(t, "PasswordChanged", mock.Anything, mock.Anything)
}

func TestForgotPasswordRequiredFieldOrder(t *testing.T) {
	svc, _ := newAuthService(t, nil)

	err := svc.ForgotPassword(context.Background(), "", "", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	err = svc.ForgotPassword(context.Background(), "a@example.com", "", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "answer", ve.Field)

	err = svc.ForgotPassword(context.Background(), "a@example.com", "blue", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "newPassword", ve.Field)
}

func TestForgotPasswordNotifierFailureIsNotFatal(t *testing.T) {
	n := &mockNotifier{}
	n.On("PasswordChanged", mock.Anything, mock.Anything).Return(errors.New("queue down"))
	svc, _ := newAuthService(t, n)
	mustRegister(t, svc, "a@example.com")

	assert.NoError(t, svc.ForgotPassword(context.Background(), "a@example.com", "blue", "newpass1"))
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	u := mustRegister(t, svc, "a@example.com")

	updated, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Name: "Alicia", Address: ""})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "1 Main St", updated.Address)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "a@example.com", updated.Email)

	// password untouched
	_, err = svc.Login(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Password: "newpass"})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "a@example.com", "newpass")
	assert.NoError(t, err)
}

func TestUpdateProfileRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	u := mustRegister(t, svc, "a@example.com")

	_, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{Password: "12345"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Login(context.Background(), "a@example.com", "secret1")
	assert.NoError(t, err)
}

// demotingHasher revokes admin rights while a hash is being computed,
// standing in for a concurrent role change between read and write.
type demotingHasher struct {
	helpers.Hasher
	users *memory.UserRepository
	email string
}

func (h demotingHasher) Hash(plain string) (string, error) {
	if err := h.users.SetRole(context.Background(), h.email, entity.RoleUser); err != nil {
		return "", err
	}
	return h.Hasher.Hash(plain)
}

func TestPasswordChangesKeepConcurrentRoleChange(t *testing.T) {
	svc, users := newAuthService(t, nil)
	u := mustRegister(t, svc, "a@example.com")
	ctx := context.Background()
	svc.Hasher = demotingHasher{Hasher: svc.Hasher, users: users, email: "a@example.com"}

	require.NoError(t, users.SetRole(ctx, "a@example.com", entity.RoleAdmin))
	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Name: "Alicia", Password: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, updated.Role)
	stored, _ := users.GetByID(ctx, u.ID)
	assert.Equal(t, entity.RoleUser, stored.Role)
	assert.Equal(t, "Alicia", stored.Name)

	require.NoError(t, users.SetRole(ctx, "a@example.com", entity.RoleAdmin))
	require.NoError(t, svc.ForgotPassword(ctx, "a@example.com", "blue", "newpass2"))
	stored, _ = users.GetByID(ctx, u.ID)
	assert.Equal(t, entity.RoleUser, stored.Role)
	assert.True(t, svc.Hasher.Compare(stored.Password, "newpass2"))
}

func TestOverlongSecretsAreValidationErrors(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	long := strings.Repeat("x", helpers.MaxPasswordBytes+1)
	ctx := context.Background()

	in := validRegistration("a@example.com")
	in.Password = long
	_, err := svc.Register(ctx, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	in = validRegistration("a@example.com")
	in.Answer = long
	_, err = svc.Register(ctx, in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "answer", ve.Field)

	u := mustRegister(t, svc, "a@example.com")
	err = svc.ForgotPassword(ctx, "a@example.com", "blue", long)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "newPassword", ve.Field)

	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Password: long})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	_, err = svc.Login(ctx, "a@example.com", "secret1")
	assert.NoError(t, err)
}

func TestUpdateProfileMissingUser(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	_, err := svc.UpdateProfile(context.Background(), "missing", UpdateProfileInput{Name: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCurrentUserMissing(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	_, err := svc.CurrentUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
