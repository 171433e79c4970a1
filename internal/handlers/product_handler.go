package handlers

import (
	"bytes"
	"fmt"

	"storefront/internal/export"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	service *services.CatalogService
	log     *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{service: service, log: log}
}

// RegisterRoutes registers the shopper catalog routes on public and the
// inventory routes on admin.
func (h *ProductHandler) RegisterRoutes(public, admin fiber.Router) {
	public.Get("/categories", h.HandleGetCategories)
	public.Get("/products", h.HandleGetProducts)
	public.Get("/products/:id", h.HandleGetProductByID)

	inventory := admin.Group("/products")
	inventory.Get("/", h.HandleGetInventory)
	inventory.Get("/export", h.HandleExport)
	inventory.Post("/", h.HandleCreateProduct)
	inventory.Put("/:id", h.HandleUpdateProduct)
	inventory.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetCategories lists the fixed category set with display labels.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	return c.JSON(h.service.Categories())
}

// HandleGetProducts lists products with stock, optionally by ?category=.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListAvailable(c.UserContext(), c.Query("category"))
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleGetInventory lists every product, sold out or not.
func (h *ProductHandler) HandleGetInventory(c *fiber.Ctx) error {
	products, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleExport downloads the catalog as a spreadsheet.
func (h *ProductHandler) HandleExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), &buf); err != nil {
		return respondError(c, h.log, err, "Could not export products")
	}
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName))
	return c.Send(buf.Bytes())
}

// HandleCreateProduct creates a new product. Any ID in the body is ignored.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, h.log, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), &product)
	if err != nil {
		return respondError(c, h.log, err, "Could not update product")
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), productID); err != nil {
		return respondError(c, h.log, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", productID),
	})
}
