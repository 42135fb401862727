package handlers

import (
	"harvest/internal/middleware"
	"harvest/internal/models"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes. Profile routes sit
// behind auth.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/send-otp", h.HandleSendOTP)
	authRoutes.Post("/verify-otp", h.HandleVerifyOTP)
	authRoutes.Post("/admin-login", h.HandleAdminLogin)
	authRoutes.Post("/check-admin", h.HandleCheckAdmin)
	authRoutes.Get("/profile", auth, h.HandleGetProfile)
	authRoutes.Put("/profile", auth, h.HandleUpdateProfile)
}

type sendOTPRequest struct {
	Name  string `json:"name" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4,numeric"`
}

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type checkAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type updateProfileRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=100"`
	PhoneNumber *string         `json:"phone_number" validate:"omitempty,max=30"`
	CountryCode *string         `json:"country_code" validate:"omitempty,max=8"`
	Address     *models.Address `json:"address"`
}

// HandleSendOTP emails a one-time code, creating the user on first sign-in.
func (h *AuthHandler) HandleSendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	dispatch, err := h.authService.SendOTP(c.UserContext(), req.Name, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "OTP sent successfully", dispatch)
}

// HandleVerifyOTP exchanges a valid code for a token.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	session, err := h.authService.VerifyOTP(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Login successful", session)
}

// HandleAdminLogin authenticates an administrator by password.
func (h *AuthHandler) HandleAdminLogin(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	session, err := h.authService.AdminLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Admin login successful", session)
}

// HandleCheckAdmin tells the login page which flow to show for an email.
func (h *AuthHandler) HandleCheckAdmin(c *fiber.Ctx) error {
	var req checkAdminRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	isAdmin, err := h.authService.CheckAdmin(c.UserContext(), req.Email)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", fiber.Map{"is_admin": isAdmin})
}

func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", user)
}

func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), middleware.UserID(c), services.ProfileUpdate{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		CountryCode: req.CountryCode,
		Address:     req.Address,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Profile updated successfully", user)
}
