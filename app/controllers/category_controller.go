package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type CategoryController struct {
	service *services.CategoryService
}

func NewCategoryController(service *services.CategoryService) *CategoryController {
	return &CategoryController{service: service}
}

func (c *CategoryController) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := c.service.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, categories)
}

func (c *CategoryController) Store(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	category, err := c.service.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, category)
}

func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	category, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, category)
}

func (c *CategoryController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, response.Message{Message: "Category deleted successfully"})
}
