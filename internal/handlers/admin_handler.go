package handlers

import (
	"strings"

	"harvest/internal/middleware"
	"harvest/internal/repositories"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the dashboard and user management.
type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// RegisterRoutes registers the admin routes. admin must already require an
// administrator.
func (h *AdminHandler) RegisterRoutes(admin fiber.Router) {
	admin.Get("/dashboard", h.HandleDashboard)
	admin.Get("/users", h.HandleListUsers)
	admin.Put("/users/:id/role", h.HandleUpdateRole)
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.adminService.Dashboard(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", dashboard)
}

func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	filter := repositories.UserFilter{
		Role:   c.Query("role"),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   pageQuery(c, 20),
	}
	users, total, err := h.adminService.ListUsers(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, users, total, filter.Page)
}

func (h *AdminHandler) HandleUpdateRole(c *fiber.Ctx) error {
	var req updateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.adminService.UpdateUserRole(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Role)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "User role updated successfully", user)
}
