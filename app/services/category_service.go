package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// CategoriesCacheKey holds the cached category list.
const CategoriesCacheKey = "categories:all"

type CategoryService struct {
	store  repositories.CategoryStore
	cache  cache.Store
	ttl    time.Duration
	events *event.Bus
	clock  Clock

	// generation counts ForgetCached calls. A List whose store read raced
	// one must not leave its result in the cache.
	generation atomic.Uint64
}

func NewCategoryService(store repositories.CategoryStore, c cache.Store, ttl time.Duration, events *event.Bus, clock Clock) *CategoryService {
	return &CategoryService{store: store, cache: c, ttl: ttl, events: events, clock: clock}
}

// List returns every category, from the cache when possible.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if s.cache.Get(ctx, CategoriesCacheKey, &categories) {
		return categories, nil
	}

	gen := s.generation.Load()
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if s.generation.Load() != gen {
		return categories, nil
	}
	if err := s.cache.Set(ctx, CategoriesCacheKey, categories, s.ttl); err != nil {
		logger.WithCtx(ctx).Warn("categories: cache write failed", "error", err)
	}
	if s.generation.Load() != gen {
		s.forget(ctx)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	now := stamp(s.clock)
	c := &models.Category{
		ID:        newID(),
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if v := validate.Struct(c); validate.HasErrors(v) {
		return nil, invalid(v)
	}

	if err := s.store.InsertCategory(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Category already exists")
		}
		return nil, err
	}
	s.changed("created", c.ID)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	if !validID(id) {
		return nil, notFound("Category not found")
	}
	c, err := s.store.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("Category not found")
	}

	c.Name = strings.TrimSpace(in.Name)
	if v := validate.Struct(c); validate.HasErrors(v) {
		return nil, invalid(v)
	}
	c.UpdatedAt = stamp(s.clock)

	ok, err := s.store.ReplaceCategory(ctx, c)
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return nil, conflict("Category already exists")
	case err != nil:
		return nil, err
	case !ok:
		return nil, notFound("Category not found")
	}
	s.changed("updated", c.ID)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound("Category not found")
	}
	ok, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("Category not found")
	}
	s.changed("deleted", id)
	return nil
}

// ForgetCached drops the cached list. The kernel calls it on every
// category.changed event.
func (s *CategoryService) ForgetCached(ctx context.Context) {
	s.generation.Add(1)
	s.forget(ctx)
}

func (s *CategoryService) forget(ctx context.Context) {
	if err := s.cache.Forget(ctx, CategoriesCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("categories: cache forget failed", "error", err)
	}
}

func (s *CategoryService) changed(action, id string) {
	s.events.Fire(event.CategoryChanged, event.Change{Entity: "category", Action: action, ID: id})
}
