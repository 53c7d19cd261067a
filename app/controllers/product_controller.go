package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type ProductController struct {
	catalog *services.CatalogService
	images  *services.ImageService
}

func NewProductController(catalog *services.CatalogService, images *services.ImageService) *ProductController {
	return &ProductController{catalog: catalog, images: images}
}

// Index → GET /api/products?page=&limit=
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := c.catalog.ListProducts(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, page)
}

// Show → GET /api/products/{id}
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	p, err := c.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if p == nil {
		response.NotFound(w, "Product not found")
		return
	}
	response.OK(w, p)
}

// Search → GET /api/products/search?query=&page=&limit=
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	res, err := c.catalog.SearchProducts(r.Context(), r.URL.Query().Get("query"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, res)
}

// New → GET /api/products/new
func (c *ProductController) New(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.NewProducts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, products)
}

// Suggested → GET /api/products/suggested?userId=
// Without userId the authenticated caller, if any, is used.
func (c *ProductController) Suggested(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID, _ = middleware.UserIDFromCtx(r)
	}

	products, err := c.catalog.SuggestedProducts(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, products)
}

// Popular → GET /api/products/popular?limit=
func (c *ProductController) Popular(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.PopularProducts(r.Context(), queryInt(r, "limit"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, products)
}

// Store → POST /api/products
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	p, err := c.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, p)
}

// Update → PUT /api/products/{id}
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	p, err := c.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	if p == nil {
		response.NotFound(w, "Product not found")
		return
	}
	response.OK(w, p)
}

// Destroy → DELETE /api/products/{id}
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	ok, err := c.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if !ok {
		response.NotFound(w, "Product not found")
		return
	}
	response.OK(w, response.Message{Message: "Product deleted successfully"})
}

// UploadImage → POST /api/products/images (multipart, field "image")
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes())

	file, header, err := r.FormFile("image")
	if err != nil {
		response.ValidationError(w, validate.Violations{{Field: "image", Message: "The image field is required."}})
		return
	}
	defer file.Close()

	url, err := c.images.Store(r.Context(), header.Filename, file)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]string{"url": url})
}

// DestroyImage → DELETE /api/products/images/{name}
func (c *ProductController) DestroyImage(w http.ResponseWriter, r *http.Request) {
	if err := c.images.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, response.Message{Message: "Image deleted successfully"})
}
