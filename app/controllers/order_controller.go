package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := c.service.List(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, page)
}

// Store places an order for the caller. Requires RequireUser upstream.
func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	var in models.OrderInput
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	p, _ := middleware.PrincipalFromCtx(r.Context())
	order, err := c.service.Create(r.Context(), p.UserID, p.IsAdmin, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, order)
}

func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	var in models.OrderStatusInput
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	order, err := c.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, order)
}

func (c *OrderController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, response.Message{Message: "Order deleted successfully"})
}
