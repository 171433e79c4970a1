package handlers

import "github.com/gofiber/fiber/v2"

// Handlers groups every HTTP handler of the storefront.
type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Admin    *AdminHandler
	Content  *ContentHandler
}

// Mount registers the shopper routes on api and the admin routes on
// api/admin behind adminAuth.
func (h Handlers) Mount(api fiber.Router, session, adminAuth fiber.Handler) {
	// Must precede the admin group, whose middleware covers the whole prefix.
	api.Post("/admin/login", h.Admin.HandleLogin)
	admin := api.Group("/admin", adminAuth)

	h.Cart.RegisterRoutes(api, session)
	h.Products.RegisterRoutes(api, admin)
	h.Orders.RegisterRoutes(api, admin)
	h.Admin.RegisterRoutes(admin)
	h.Content.RegisterRoutes(api, admin)
}
