package services

import (
	"context"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// Listing defaults.
const (
	DefaultPage        = 1
	DefaultLimit       = 10
	NewProductsLimit   = 8
	SuggestedLimit     = 8
	DefaultPopularSize = 8
)

// ProductPage is one page of the product listing.
type ProductPage struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Products []models.Product `json:"products"`
}

// SearchPagination describes where a search page sits in the result set.
type SearchPagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int64 `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
}

type SearchResult struct {
	Products   []models.Product `json:"products"`
	Pagination SearchPagination `json:"pagination"`
}

// CatalogStore is the slice of persistence the catalog needs.
type CatalogStore interface {
	repositories.ProductStore
	FindCategory(ctx context.Context, id string) (*models.Category, error)
	FindUser(ctx context.Context, id string) (*models.User, error)
}

// CatalogService answers every product query and mutation.
type CatalogService struct {
	store  CatalogStore
	events *event.Bus
	clock  Clock
}

func NewCatalogService(store CatalogStore, events *event.Bus, clock Clock) *CatalogService {
	return &CatalogService{store: store, events: events, clock: clock}
}

// ListProducts returns one page of products, newest first. Page and limit
// below 1 fall back to 1 and 10; limit has no upper bound.
func (s *CatalogService) ListProducts(ctx context.Context, page, limit int) (*ProductPage, error) {
	page, limit = normalizePaging(page, limit)

	products, total, err := s.pageAndCount(ctx, repositories.ProductQuery{
		Filter: repositories.All{},
		Sort:   repositories.Newest,
		Skip:   offset(page, limit),
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{Total: total, Page: page, Limit: limit, Products: products}, nil
}

// GetProduct returns the product with its category resolved. A missing
// product, or an id that cannot exist, yields (nil, nil).
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.ProductDetail, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := s.store.FindProduct(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}

	detail := &models.ProductDetail{Product: *p}
	if validID(p.Category) {
		c, err := s.store.FindCategory(ctx, p.Category)
		if err != nil {
			return nil, err
		}
		if c != nil {
			detail.Category = &models.CategoryRef{ID: c.ID, Name: c.Name}
		}
	}
	return detail, nil
}

// SearchProducts matches query against title and description. An empty
// query matches every product.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, limit int) (*SearchResult, error) {
	page, limit = normalizePaging(page, limit)

	products, total, err := s.pageAndCount(ctx, repositories.ProductQuery{
		Filter: repositories.Search(strings.TrimSpace(query)),
		Sort:   repositories.Newest,
		Skip:   offset(page, limit),
		Limit:  limit,
	})
	if err != nil {
		return nil, failure("Failed to search products", err)
	}

	return &SearchResult{
		Products: products,
		Pagination: SearchPagination{
			CurrentPage:   page,
			TotalPages:    (total + int64(limit) - 1) / int64(limit),
			TotalProducts: total,
		},
	}, nil
}

// NewProducts returns the eight newest products.
func (s *CatalogService) NewProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.FindProducts(ctx, repositories.ProductQuery{
		Filter: repositories.All{},
		Sort:   repositories.Newest,
		Limit:  NewProductsLimit,
	})
	if err != nil {
		return nil, failure("Failed to fetch new products", err)
	}
	return products, nil
}

// SuggestedProducts returns in-stock products from the user's favorite
// categories, or from every category when the user is unknown or has no
// favorites.
func (s *CatalogService) SuggestedProducts(ctx context.Context, userID string) ([]models.Product, error) {
	var filter repositories.Filter = repositories.InStock{}

	if validID(userID) {
		u, err := s.store.FindUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if u != nil && len(u.FavoriteCategories) > 0 {
			filter = repositories.And{
				repositories.InStock{},
				repositories.CategoryIn{IDs: u.FavoriteCategories},
			}
		}
	}

	return s.store.FindProducts(ctx, repositories.ProductQuery{
		Filter: filter,
		Sort:   repositories.Newest,
		Limit:  SuggestedLimit,
	})
}

// PopularProducts returns in-stock products with the most stock first.
func (s *CatalogService) PopularProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 {
		limit = DefaultPopularSize
	}
	return s.store.FindProducts(ctx, repositories.ProductQuery{
		Filter: repositories.InStock{},
		Sort:   repositories.Sort{Field: repositories.SortStock, Desc: true},
		Limit:  limit,
	})
}

// CreateProduct validates in and stores it as a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var p models.Product
	in.Apply(&p)
	p.Normalize()

	violations := append(validate.Var("price", in.Price, "required"), validate.Struct(p)...)
	if validate.HasErrors(violations) {
		return nil, invalid(violations)
	}

	now := stamp(s.clock)
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now

	if err := s.store.InsertProduct(ctx, &p); err != nil {
		return nil, err
	}
	s.changed("created", p.ID)
	return &p, nil
}

// UpdateProduct applies the supplied fields of in to the stored product and
// re-validates the result. Unknown ids yield (nil, nil).
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := s.store.FindProduct(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}

	in.Apply(p)
	p.Normalize()
	if v := validate.Struct(*p); validate.HasErrors(v) {
		return nil, invalid(v)
	}

	p.UpdatedAt = stamp(s.clock)
	ok, err := s.store.ReplaceProduct(ctx, p)
	if err != nil || !ok {
		return nil, err
	}
	s.changed("updated", p.ID)
	return p, nil
}

// DeleteProduct reports whether a product was removed.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	ok, err := s.store.DeleteProduct(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	s.changed("deleted", id)
	return true, nil
}

func (s *CatalogService) changed(action, id string) {
	s.events.Fire(event.ProductChanged, event.Change{Entity: "product", Action: action, ID: id})
}

// pageAndCount runs the page query and the count of its filter concurrently.
func (s *CatalogService) pageAndCount(ctx context.Context, q repositories.ProductQuery) ([]models.Product, int64, error) {
	var (
		products []models.Product
		total    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.store.FindProducts(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountProducts(gctx, q.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

// offset is the number of items before page. It saturates at math.MaxInt so
// a page far past the end stays past the end.
func offset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
