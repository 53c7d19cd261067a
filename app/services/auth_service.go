package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// AuthService registers and signs in users.
type AuthService struct {
	users  repositories.UserStore
	tokens *auth.Tokens
	clock  Clock
}

func NewAuthService(users repositories.UserStore, tokens *auth.Tokens, clock Clock) *AuthService {
	return &AuthService{users: users, tokens: tokens, clock: clock}
}

// Register creates a regular user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in models.Credentials) (string, error) {
	u, err := s.createUser(ctx, in, false)
	if err != nil {
		return "", err
	}
	return s.tokens.Generate(u.ID, u.IsAdmin)
}

// Login checks the credentials and returns a token.
func (s *AuthService) Login(ctx context.Context, in models.Credentials) (string, error) {
	u, err := s.users.FindUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return "", err
	}
	if u == nil || !auth.CheckPassword(u.Password, in.Password) {
		return "", &Error{Kind: KindUnauthorized, Message: "Invalid credentials"}
	}
	return s.tokens.Generate(u.ID, u.IsAdmin)
}

// CurrentUser loads the account behind a token.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, notFound("User not found")
	}
	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("User not found")
	}
	if u.FavoriteCategories == nil {
		u.FavoriteCategories = []string{}
	}
	return u, nil
}

// SetFavorites replaces the user's favorite categories.
func (s *AuthService) SetFavorites(ctx context.Context, id string, in models.FavoritesInput) (*models.User, error) {
	if v := validate.Struct(in); validate.HasErrors(v) {
		return nil, invalid(v)
	}
	if !validID(id) {
		return nil, notFound("User not found")
	}

	categories := dedupe(in.Categories)
	ok, err := s.users.SetFavoriteCategories(ctx, id, categories, stamp(s.clock))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("User not found")
	}
	return s.CurrentUser(ctx, id)
}

// EnsureAdmin creates an admin account for email unless one already exists.
// It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	existing, err := s.users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.createUser(ctx, models.Credentials{Email: email, Password: password}, true); err != nil {
		return false, fmt.Errorf("create admin %s: %w", email, err)
	}
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, in models.Credentials, admin bool) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if v := validate.Struct(in); validate.HasErrors(v) {
		return nil, invalid(v)
	}

	existing, err := s.users.FindUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflict("Email is already in use")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := stamp(s.clock)
	u := &models.User{
		ID:                 newID(),
		Email:              in.Email,
		Password:           hash,
		FavoriteCategories: []string{},
		IsAdmin:            admin,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.users.InsertUser(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Email is already in use")
		}
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
