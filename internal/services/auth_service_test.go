package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/services"
	"harvest/pkg/mailer"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo *MockUserRepository, m *MockMailer, devOTP bool) *services.AuthService {
	return services.NewAuthService(repo, m, services.AuthConfig{
		JWTSecret:     testJWTSecret,
		TokenDuration: time.Hour,
		AllowDevOTP:   devOTP,
	})
}

func TestAuthService_SendAndVerifyOTP(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := newAuthService(mockRepo, mockMailer, true)
	ctx := context.Background()

	var created *models.User
	mockRepo.On("GetByEmail", ctx, "ada@example.com").Return(nil, apperror.NotFoundf("user not found")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.User)
	}).Return(nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	mockMailer.On("Send", ctx, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "ada@example.com"
	})).Return(nil).Once()

	dispatch, err := authService.SendOTP(ctx, "Ada", "  Ada@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", dispatch.Email)
	require.Len(t, dispatch.DevOTP, 4)
	require.NotNil(t, created)
	assert.NotEqual(t, dispatch.DevOTP, created.OTPHash)
	require.NotNil(t, created.OTPExpiry)

	mockRepo.On("GetByEmail", ctx, "ada@example.com").Return(created, nil)

	_, err = authService.VerifyOTP(ctx, "ada@example.com", "0000")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	session, err := authService.VerifyOTP(ctx, "ada@example.com", dispatch.DevOTP)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.User.IsVerified)
	assert.Empty(t, session.User.OTPHash)

	claims, err := authService.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims["user_id"])
	assert.Equal(t, models.RoleUser, claims["role"])

	// The code is single use.
	_, err = authService.VerifyOTP(ctx, "ada@example.com", dispatch.DevOTP)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	mockMailer.AssertExpectations(t)
}

func TestAuthService_SendOTP_Rules(t *testing.T) {
	ctx := context.Background()

	t.Run("new user needs a name", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, apperror.NotFoundf("user not found"))
		_, err := newAuthService(mockRepo, new(MockMailer), false).SendOTP(ctx, "", "new@example.com")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("blocked user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByEmail", ctx, "bad@example.com").Return(&models.User{ID: "u1", IsBlocked: true}, nil)
		_, err := newAuthService(mockRepo, new(MockMailer), false).SendOTP(ctx, "", "bad@example.com")
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("mail failure without dev codes", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockMailer := new(MockMailer)
		mockRepo.On("GetByEmail", ctx, "ada@example.com").Return(&models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}, nil)
		mockRepo.On("Update", ctx, mock.Anything).Return(nil)
		mockMailer.On("Send", ctx, mock.Anything).Return(errors.New("smtp down"))

		_, err := newAuthService(mockRepo, mockMailer, false).SendOTP(ctx, "", "ada@example.com")
		assert.ErrorIs(t, err, apperror.ErrExternalService)
	})
}

func TestAuthService_VerifyOTP_Expired(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	expired := time.Now().Add(-time.Minute)

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", ctx, "ada@example.com").Return(&models.User{ID: "u1", OTPHash: string(hash), OTPExpiry: &expired}, nil)
	mockRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperror.NotFoundf("user not found"))
	authService := newAuthService(mockRepo, new(MockMailer), false)

	_, err = authService.VerifyOTP(ctx, "ada@example.com", "1234")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "OTP has expired. Please request a new one.", apperror.Message(err))

	_, err = authService.VerifyOTP(ctx, "ghost@example.com", "1234")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAuthService_AdminLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", ctx, "admin@example.com").Return(&models.User{ID: "a1", Email: "admin@example.com", Role: models.RoleAdmin, Password: string(hash)}, nil)
	mockRepo.On("GetByEmail", ctx, "user@example.com").Return(&models.User{ID: "u1", Role: models.RoleUser}, nil)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperror.NotFoundf("user not found"))
	authService := newAuthService(mockRepo, new(MockMailer), false)

	session, err := authService.AdminLogin(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	claims, err := authService.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims["role"])

	_, err = authService.AdminLogin(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = authService.AdminLogin(ctx, "user@example.com", "password123")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = authService.AdminLogin(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	isAdmin, err := authService.CheckAdmin(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = authService.CheckAdmin(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository), new(MockMailer), false)

	_, err := authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = authService.ValidateToken(tokenString)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1"})
	tokenString, err = foreign.SignedString([]byte("another_secret"))
	require.NoError(t, err)
	_, err = authService.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByID", ctx, "u1").Return(user, nil)
	mockRepo.On("GetByID", ctx, "u2").Return(nil, apperror.NotFoundf("user not found"))
	mockRepo.On("Update", ctx, user).Return(nil).Once()
	authService := newAuthService(mockRepo, new(MockMailer), false)

	name := " Ada Lovelace "
	updated, err := authService.UpdateProfile(ctx, "u1", services.ProfileUpdate{
		Name:    &name,
		Address: &models.Address{City: "London", Country: "UK"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "London", updated.Address.City)
	assert.Equal(t, "ada@example.com", updated.Email)

	_, err = authService.GetProfile(ctx, "u2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
