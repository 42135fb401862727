package handlers

import (
	"log"

	"harvest/internal/middleware"
	"harvest/internal/models"
	"harvest/internal/repositories"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles checkout links and provider callbacks.
type PaymentHandler struct {
	paymentService *services.PaymentService
	adminService   *services.AdminService
}

func NewPaymentHandler(paymentService *services.PaymentService, adminService *services.AdminService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, adminService: adminService}
}

// RegisterRoutes registers the payment routes. Only the callback is public.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	paymentRoutes := router.Group("/payment")
	paymentRoutes.Post("/callback", h.HandleCallback)
	paymentRoutes.Post("/create", auth, h.HandleCreatePayment)
	paymentRoutes.Get("/status/:orderId", auth, h.HandlePaymentStatus)
	paymentRoutes.Get("/verify/:orderId", auth, h.HandleVerifyPayment)
	paymentRoutes.Post("/test", auth, h.HandleTestPayment)
}

func (h *PaymentHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/payments", h.HandleListPayments)
}

type createPaymentRequest struct {
	OrderID string           `json:"order_id" validate:"required"`
	Amount  *decimal.Decimal `json:"amount"`
}

type testPaymentRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// callbackRequest is the provider's notification. Some deliveries only carry
// the link id.
type callbackRequest struct {
	PaymentID string `json:"payment_id"`
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Amount    string `json:"amount"`
}

func (h *PaymentHandler) HandleCreatePayment(c *fiber.Ctx) error {
	var req createPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	link, err := h.paymentService.CreatePayment(c.UserContext(), middleware.UserID(c), req.OrderID, req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Payment link created successfully", link)
}

// HandleCallback applies a provider status. Repeated deliveries are answered
// with 200 so the provider stops retrying.
func (h *PaymentHandler) HandleCallback(c *fiber.Ctx) error {
	var req callbackRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing payment callback body: %v", err)
		return fail(c, &requestError{msg: "Invalid request body"})
	}
	if req.PaymentID == "" {
		req.PaymentID = req.ID
	}
	log.Printf("Payment callback received: payment_id=%s order_id=%s status=%s amount=%s", req.PaymentID, req.OrderID, req.Status, req.Amount)

	outcome, err := h.paymentService.RecordPaymentOutcome(c.UserContext(), req.PaymentID, req.Status)
	if err != nil {
		return fail(c, err)
	}
	message := "Payment processed"
	if outcome.Duplicate {
		message = "Payment already processed"
	}
	return ok(c, message, outcome)
}

func (h *PaymentHandler) HandlePaymentStatus(c *fiber.Ctx) error {
	payment, err := h.paymentService.GetPaymentStatus(c.UserContext(), middleware.UserID(c), c.Params("orderId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", payment)
}

func (h *PaymentHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	outcome, err := h.paymentService.VerifyPayment(c.UserContext(), middleware.UserID(c), c.Params("orderId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Payment verified", outcome)
}

// HandleTestPayment completes a payment without the provider when enabled.
func (h *PaymentHandler) HandleTestPayment(c *fiber.Ctx) error {
	var req testPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	outcome, err := h.paymentService.TestCompletePayment(c.UserContext(), middleware.UserID(c), req.OrderID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Test payment completed", outcome)
}

func (h *PaymentHandler) HandleListPayments(c *fiber.Ctx) error {
	filter := repositories.PaymentFilter{
		OrderID: c.Query("order_id"),
		Status:  models.PaymentRecordStatus(c.Query("status")),
		Page:    pageQuery(c, 20),
	}
	payments, total, err := h.adminService.ListPayments(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, payments, total, filter.Page)
}
