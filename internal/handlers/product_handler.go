package handlers

import (
	"strings"

	"harvest/internal/models"
	"harvest/internal/repositories"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterRoutes registers the public catalogue routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/featured", h.HandleFeaturedProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
}

// RegisterAdminRoutes registers catalogue management on an admin group.
func (h *ProductHandler) RegisterAdminRoutes(admin fiber.Router) {
	productRoutes := admin.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   pageQuery(c, 20),
	}
	products, total, err := h.productService.ListProducts(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return paginated(c, products, total, filter.Page)
}

func (h *ProductHandler) HandleFeaturedProducts(c *fiber.Ctx) error {
	products, err := h.productService.FeaturedProducts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", products)
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.productService.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bindJSON(c, &product); err != nil {
		return fail(c, err)
	}

	if err := h.productService.CreateProduct(c.UserContext(), &product); err != nil {
		return fail(c, err)
	}
	return created(c, "Product created successfully", product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bindJSON(c, &product); err != nil {
		return fail(c, err)
	}

	id := c.Params("id")
	if err := h.productService.UpdateProduct(c.UserContext(), id, &product); err != nil {
		return fail(c, err)
	}
	updated, err := h.productService.GetProductByID(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Product updated successfully", updated)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.productService.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, "Product deleted successfully", nil)
}
