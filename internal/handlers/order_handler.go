package handlers

import (
	"harvest/internal/middleware"
	"harvest/internal/models"
	"harvest/internal/repositories"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers the customer order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/order", auth)
	orderRoutes.Post("/create", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Put("/:id/cancel", h.HandleCancelOrder)
}

// RegisterAdminRoutes registers order management on an admin group.
func (h *OrderHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/orders", h.HandleListAllOrders)
	admin.Put("/orders/:id/status", h.HandleUpdateStatus)
}

type createOrderRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	SizeSelected string           `json:"size_selected" validate:"required"`
	Quantity     int              `json:"quantity" validate:"required,min=1"`
	Address      models.Address   `json:"address" validate:"required"`
	AmountPaid   *decimal.Decimal `json:"amount_paid"`
	FromCart     bool             `json:"from_cart"`
	CartItemID   string           `json:"cart_item_id"`
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// HandleCreateOrder prices and stores a Pending order for the caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	result, err := h.orderService.CreateOrder(c.UserContext(), services.CreateOrderInput{
		UserID:       middleware.UserID(c),
		ProductID:    req.ProductID,
		Size:         req.SizeSelected,
		Quantity:     req.Quantity,
		Address:      req.Address,
		ClientAmount: req.AmountPaid,
		FromCart:     req.FromCart,
		CartItemID:   req.CartItemID,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Order created successfully", fiber.Map{
		"order":   result.Order,
		"pricing": result.Quote,
	})
}

func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	page := pageQuery(c, 10)
	orders, total, err := h.orderService.ListUserOrders(c.UserContext(), middleware.UserID(c), models.OrderStatus(c.Query("status")), page)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, orders, total, page)
}

func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", order)
}

func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.orderService.CancelOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Order cancelled successfully", order)
}

func (h *OrderHandler) HandleListAllOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{
		OrderStatus:   models.OrderStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
		Page:          pageQuery(c, 20),
	}
	orders, total, err := h.orderService.ListAllOrders(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, orders, total, filter.Page)
}

func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	order, err := h.orderService.UpdateOrderStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Order status updated successfully", order)
}
