package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/repositories"
	"harvest/pkg/mailer"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const otpValidity = 10 * time.Minute

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo    repositories.UserRepository
	mailer      mailer.Mailer
	jwtSecret   []byte
	tokenDurat  time.Duration // Duration for which JWT is valid
	allowDevOTP bool
	now         func() time.Time
}

// AuthConfig configures token issuing and OTP delivery.
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	// AllowDevOTP returns the code to the caller and tolerates mail failures.
	AllowDevOTP bool
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, m mailer.Mailer, cfg AuthConfig) *AuthService {
	if cfg.TokenDuration <= 0 {
		cfg.TokenDuration = 24 * time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		mailer:      m,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenDurat:  cfg.TokenDuration,
		allowDevOTP: cfg.AllowDevOTP,
		now:         time.Now,
	}
}

// Session is an issued token and the user it belongs to.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// OTPDispatch reports where a code was sent. DevOTP is only set when
// development codes are allowed.
type OTPDispatch struct {
	Email  string `json:"email"`
	DevOTP string `json:"dev_otp,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", 1000+n.Int64()), nil
}

// SendOTP emails a one-time login code, creating the user on first contact.
func (s *AuthService) SendOTP(ctx context.Context, name, email string) (*OTPDispatch, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.Validationf("Email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case isNotFound(err):
		if strings.TrimSpace(name) == "" {
			return nil, apperror.Validationf("Name is required for new users")
		}
		user = &models.User{Name: strings.TrimSpace(name), Email: email, Role: models.RoleUser}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case user.IsBlocked:
		return nil, apperror.Forbiddenf("Your account has been blocked")
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP: %w", err)
	}
	expiry := s.now().Add(otpValidity)
	user.OTPHash = string(hash)
	user.OTPExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	out := &OTPDispatch{Email: email}
	err = s.mailer.Send(ctx, mailer.Message{
		To:      email,
		Subject: "Your login code",
		Body:    fmt.Sprintf("Hello %s,\n\nYour login code is %s. It expires in %d minutes.\n", user.Name, otp, int(otpValidity.Minutes())),
	})
	if s.allowDevOTP {
		if err != nil {
			log.Printf("Failed to email OTP to %s: %v", email, err)
		}
		log.Printf("OTP Code for %s: %s", email, otp)
		out.DevOTP = otp
		return out, nil
	}
	if err != nil {
		return nil, apperror.External("Failed to send OTP email", err)
	}
	return out, nil
}

// VerifyOTP checks a login code and issues a token. The code is single use.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("User not found. Please request OTP first.")
		}
		return nil, err
	}
	if user.IsBlocked {
		return nil, apperror.Forbiddenf("Your account has been blocked")
	}
	if user.OTPHash == "" || bcrypt.CompareHashAndPassword([]byte(user.OTPHash), []byte(strings.TrimSpace(otp))) != nil {
		return nil, apperror.Validationf("Invalid OTP")
	}
	if user.OTPExpiry == nil || s.now().After(*user.OTPExpiry) {
		return nil, apperror.Validationf("OTP has expired. Please request a new one.")
	}

	user.OTPHash = ""
	user.OTPExpiry = nil
	user.IsVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// AdminLogin authenticates an administrator by password.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			// Do not reveal whether the email exists.
			return nil, apperror.Unauthorizedf("Invalid email or password")
		}
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, apperror.Forbiddenf("Admin access required. Please use OTP login for regular users.")
	}
	if user.Password == "" {
		return nil, apperror.Unauthorizedf("Password not set. Please contact administrator to set your password.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.Unauthorizedf("Invalid email or password")
	}
	if user.IsBlocked {
		return nil, apperror.Forbiddenf("Your account has been blocked")
	}
	return s.issue(user)
}

// CheckAdmin reports whether email belongs to an administrator.
func (s *AuthService) CheckAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}

// CreateAdmin creates an administrator, or promotes an existing user, with
// the given password.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < 8 {
		return nil, apperror.Validationf("email and a password of at least 8 characters are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case isNotFound(err):
		user = &models.User{Name: name, Email: email, Role: models.RoleAdmin, IsVerified: true, Password: string(hash)}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case err != nil:
		return nil, err
	}

	user.Role = models.RoleAdmin
	user.Password = string(hash)
	if name != "" {
		user.Name = name
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns the user.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("User not found")
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate lists the fields a user may change. Nil fields are kept.
type ProfileUpdate struct {
	Name        *string
	PhoneNumber *string
	CountryCode *string
	Address     *models.Address
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.PhoneNumber != nil {
		user.PhoneNumber = *upd.PhoneNumber
	}
	if upd.CountryCode != nil {
		user.CountryCode = *upd.CountryCode
	}
	if upd.Address != nil {
		user.Address = *upd.Address
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{Token: tokenString, User: user}, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, apperror.Unauthorizedf("invalid token: %v", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperror.Unauthorizedf("invalid token")
}

// Authorize resolves the token's user and refuses blocked accounts.
func (s *AuthService) Authorize(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, apperror.Unauthorizedf("invalid token")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthorizedf("User not found")
		}
		return nil, err
	}
	if user.IsBlocked {
		return nil, apperror.Forbiddenf("Your account has been blocked")
	}
	return user, nil
}
