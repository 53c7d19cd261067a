// Package repositories is the persistence layer. Services talk to the
// interfaces in this file; MongoStore, GormStore and MemoryStore implement
// them over MongoDB, a GORM SQL database and process memory.
//
// Lookups by id return (nil, nil) when nothing matches. Mutations by id
// report whether a record was affected.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
)

// ErrDuplicate is returned when a unique field (category name, user email)
// already exists.
var ErrDuplicate = errors.New("repositories: duplicate key")

type ProductStore interface {
	FindProducts(ctx context.Context, q ProductQuery) ([]models.Product, error)
	CountProducts(ctx context.Context, f Filter) (int64, error)
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	ReplaceProduct(ctx context.Context, p *models.Product) (bool, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategory(ctx context.Context, id string) (*models.Category, error)
	InsertCategory(ctx context.Context, c *models.Category) error
	ReplaceCategory(ctx context.Context, c *models.Category) (bool, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

type UserStore interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	SetFavoriteCategories(ctx context.Context, id string, categories []string, at time.Time) (bool, error)
}

type OrderStore interface {
	FindOrders(ctx context.Context, skip, limit int) ([]models.Order, error)
	CountOrders(ctx context.Context) (int64, error)
	InsertOrder(ctx context.Context, o *models.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) (bool, error)
}

// Store is everything the application needs from persistence.
type Store interface {
	ProductStore
	CategoryStore
	UserStore
	OrderStore

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Migrate creates collections, tables and indexes. It is idempotent.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
	Driver() string
}
