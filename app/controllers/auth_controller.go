package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register → POST /api/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	token, err := c.service.Register(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, tokenResponse{Message: "User registered successfully", Token: token})
}

// Login → POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	token, err := c.service.Login(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, tokenResponse{Message: "Login successful", Token: token})
}

// User → GET /api/auth/user
func (c *AuthController) User(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.UserIDFromCtx(r)
	u, err := c.service.CurrentUser(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, u)
}

// UpdateFavorites → PUT /api/auth/user/favorites
func (c *AuthController) UpdateFavorites(w http.ResponseWriter, r *http.Request) {
	var in models.FavoritesInput
	if err := bind.JSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}

	id, _ := middleware.UserIDFromCtx(r)
	u, err := c.service.SetFavorites(r.Context(), id, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w, u)
}
