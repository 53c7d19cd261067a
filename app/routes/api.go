package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Controllers are the handlers the API routes dispatch to.
type Controllers struct {
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Orders     *controllers.OrderController
	Auth       *controllers.AuthController

	// AuthLimit throttles register and login.
	AuthLimit router.Middleware
}

func RegisterAPI(r *router.Router, c Controllers) {
	api := r.Group("/api")

	products := api.Group("/products")
	products.Get("/", "products.index", c.Products.Index)
	products.Get("/new", "products.new", c.Products.New)
	products.Get("/search", "products.search", c.Products.Search)
	products.Get("/suggested", "products.suggested", c.Products.Suggested)
	products.Get("/popular", "products.popular", c.Products.Popular)
	products.Get("/{id}", "products.show", c.Products.Show)

	adminProducts := products.Group("", rbac.AdminOnly)
	adminProducts.Post("/", "products.store", c.Products.Store)
	adminProducts.Post("/images", "products.images", c.Products.UploadImage)
	adminProducts.Delete("/images/{name}", "products.images.destroy", c.Products.DestroyImage)
	adminProducts.Put("/{id}", "products.update", c.Products.Update)
	adminProducts.Delete("/{id}", "products.destroy", c.Products.Destroy)

	categories := api.Group("/categories")
	categories.Get("/", "categories.index", c.Categories.Index)

	adminCategories := categories.Group("", rbac.AdminOnly)
	adminCategories.Post("/", "categories.store", c.Categories.Store)
	adminCategories.Put("/{id}", "categories.update", c.Categories.Update)
	adminCategories.Delete("/{id}", "categories.destroy", c.Categories.Destroy)

	orders := api.Group("/order")
	orders.Post("/", "orders.store", c.Orders.Store, middleware.RequireUser)

	adminOrders := orders.Group("", rbac.AdminOnly)
	adminOrders.Get("/", "orders.index", c.Orders.Index)
	adminOrders.Put("/{id}", "orders.update", c.Orders.Update)
	adminOrders.Delete("/{id}", "orders.destroy", c.Orders.Destroy)

	authGroup := api.Group("/auth")
	var limited []router.Middleware
	if c.AuthLimit != nil {
		limited = append(limited, c.AuthLimit)
	}
	authGroup.Post("/register", "auth.register", c.Auth.Register, limited...)
	authGroup.Post("/login", "auth.login", c.Auth.Login, limited...)

	account := authGroup.Group("/user", middleware.RequireUser)
	account.Get("/", "auth.user", c.Auth.User)
	account.Put("/favorites", "auth.favorites", c.Auth.UpdateFavorites)
}
