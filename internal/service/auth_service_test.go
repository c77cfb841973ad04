package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/models"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	svc := NewAuthService(users, validator.New(validator.WithRequiredStructEnabled()), testLogger(), "test-secret", time.Hour, bcrypt.MinCost)
	return svc, users
}

func TestRegisterNormalizesEmailAndDefaultsRole(t *testing.T) {
	svc, users := newAuthFixture(t)

	response, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "  Ada@Example.COM ",
		Name:     "Ada",
		Password: "secret1",
	})
	require.NoError(t, err)

	require.Equal(t, "ada@example.com", response.Email)
	require.Equal(t, models.RoleUser, response.Role)

	stored, err := users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	payload := dto.RegisterRequest{Email: "ada@example.com", Name: "Ada", Password: "secret1"}
	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidatesPayload(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "not-an-email",
		Name:     "Ada",
		Password: "secret1",
	})
	require.Error(t, err)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "short",
	})
	require.Error(t, err)
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "secret1",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)

	response, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "  ADA@example.com ",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, response.Role)

	token, err := jwt.Parse(response.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleTeacher, claims["role"])
	require.Equal(t, float64(1), claims["sub"])
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	svc, _ := newAuthFixture(t)

	created, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "secret1",
	})
	require.NoError(t, err)

	profile, err := svc.Profile(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", profile.Name)

	_, err = svc.Profile(context.Background(), 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}
