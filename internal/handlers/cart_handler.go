package handlers

import (
	"harvest/internal/middleware"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddItem)
	cartRoutes.Put("/update", h.HandleUpdateItem)
	cartRoutes.Delete("/item/:itemId", h.HandleRemoveItem)
	cartRoutes.Delete("/clear", h.HandleClear)
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type updateCartItemRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.GetCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.cartService.AddItem(c.UserContext(), middleware.UserID(c), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Item added to cart", cart)
}

// HandleUpdateItem sets a line's quantity. Zero removes the line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req updateCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}

	cart, err := h.cartService.UpdateQuantity(c.UserContext(), middleware.UserID(c), req.ItemID, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Cart updated", cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.cartService.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("itemId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Item removed from cart", cart)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	cart, err := h.cartService.Clear(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Cart cleared", cart)
}
