package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// GormStore implements Store on any SQL database GORM can open.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Driver() string { return "sql" }

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&models.Category{},
		&productRow{},
		&models.User{},
		&models.Order{},
	); err != nil {
		return fmt.Errorf("sql: migrate: %w", err)
	}
	return s.backfillSearchColumns(ctx)
}

// productRow is the products table: the product plus its title and
// description lowered in Go, which TextMatch searches. SQLite's LOWER()
// folds ASCII only.
type productRow struct {
	models.Product
	SearchTitle       string `gorm:"type:text"`
	SearchDescription string `gorm:"type:text"`
}

func (productRow) TableName() string { return "products" }

func newProductRow(p *models.Product) *productRow {
	return &productRow{
		Product:           *p,
		SearchTitle:       strings.ToLower(p.Title),
		SearchDescription: strings.ToLower(p.Description),
	}
}

// backfillSearchColumns fills the search columns of rows written before
// they existed.
func (s *GormStore) backfillSearchColumns(ctx context.Context) error {
	var rows []productRow
	err := s.db.WithContext(ctx).
		Where("search_title = '' OR search_title IS NULL").
		FindInBatches(&rows, 200, func(tx *gorm.DB, _ int) error {
			for _, r := range rows {
				if err := tx.Model(&productRow{}).Where("id = ?", r.ID).Updates(map[string]interface{}{
					"search_title":       strings.ToLower(r.Title),
					"search_description": strings.ToLower(r.Description),
				}).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("sql: backfill search columns: %w", err)
	}
	return nil
}

// ── products ────────────────────────────────────────────────────────────

func (s *GormStore) FindProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	defer metrics.ObserveStoreOp("sql", "find_products", time.Now())

	column := "created_at"
	if q.Sort.Field == SortStock {
		column = "stock"
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}

	tx := applyFilter(s.db.WithContext(ctx).Model(&productRow{}), q.Filter).
		Order(column + " " + dir).
		Order("id DESC")
	if q.Skip > 0 {
		tx = tx.Offset(q.Skip)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []productRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sql: find products: %w", err)
	}
	out := make([]models.Product, len(rows))
	for i, r := range rows {
		out[i] = r.Product
	}
	return out, nil
}

func (s *GormStore) CountProducts(ctx context.Context, f Filter) (int64, error) {
	defer metrics.ObserveStoreOp("sql", "count_products", time.Now())

	var n int64
	if err := applyFilter(s.db.WithContext(ctx).Model(&productRow{}), f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("sql: count products: %w", err)
	}
	return n, nil
}

func (s *GormStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	defer metrics.ObserveStoreOp("sql", "find_product", time.Now())

	var r productRow
	if found, err := s.first(ctx, &r, "id = ?", id); !found {
		return nil, err
	}
	return &r.Product, nil
}

func (s *GormStore) InsertProduct(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveStoreOp("sql", "insert_product", time.Now())
	return s.create(ctx, newProductRow(p))
}

func (s *GormStore) ReplaceProduct(ctx context.Context, p *models.Product) (bool, error) {
	defer metrics.ObserveStoreOp("sql", "replace_product", time.Now())
	return s.replace(ctx, newProductRow(p))
}

func (s *GormStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	defer metrics.ObserveStoreOp("sql", "delete_product", time.Now())
	return s.delete(ctx, &productRow{}, id)
}

// ── categories ──────────────────────────────────────────────────────────

func (s *GormStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	defer metrics.ObserveStoreOp("sql", "list_categories", time.Now())

	out := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("sql: find categories: %w", err)
	}
	return out, nil
}

func (s *GormStore) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if found, err := s.first(ctx, &c, "id = ?", id); !found {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) InsertCategory(ctx context.Context, c *models.Category) error {
	return s.create(ctx, c)
}

func (s *GormStore) ReplaceCategory(ctx context.Context, c *models.Category) (bool, error) {
	return s.replace(ctx, c)
}

func (s *GormStore) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return s.delete(ctx, &models.Category{}, id)
}

// ── users ───────────────────────────────────────────────────────────────

func (s *GormStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if found, err := s.first(ctx, &u, "id = ?", id); !found {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if found, err := s.first(ctx, &u, "email = ?", email); !found {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) InsertUser(ctx context.Context, u *models.User) error {
	return s.create(ctx, u)
}

func (s *GormStore) SetFavoriteCategories(ctx context.Context, id string, categories []string, at time.Time) (bool, error) {
	if categories == nil {
		categories = []string{}
	}
	res := s.db.WithContext(ctx).
		Model(&models.User{ID: id}).
		Select("favorite_categories", "updated_at").
		Updates(models.User{FavoriteCategories: categories, UpdatedAt: at})
	if res.Error != nil {
		return false, fmt.Errorf("sql: update users: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ── orders ──────────────────────────────────────────────────────────────

func (s *GormStore) FindOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	defer metrics.ObserveStoreOp("sql", "find_orders", time.Now())

	tx := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if skip > 0 {
		tx = tx.Offset(skip)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	out := []models.Order{}
	if err := tx.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("sql: find orders: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("sql: count orders: %w", err)
	}
	return n, nil
}

func (s *GormStore) InsertOrder(ctx context.Context, o *models.Order) error {
	return s.create(ctx, o)
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) (*models.Order, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Order{ID: id}).
		Select("status", "updated_at").
		Updates(models.Order{Status: status, UpdatedAt: at})
	if res.Error != nil {
		return nil, fmt.Errorf("sql: update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var o models.Order
	if found, err := s.first(ctx, &o, "id = ?", id); !found {
		return nil, err
	}
	return &o, nil
}

func (s *GormStore) DeleteOrder(ctx context.Context, id string) (bool, error) {
	return s.delete(ctx, &models.Order{}, id)
}

// ── helpers ─────────────────────────────────────────────────────────────

func (s *GormStore) first(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := s.db.WithContext(ctx).Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sql: find: %w", err)
	}
	return true, nil
}

func (s *GormStore) create(ctx context.Context, value interface{}) error {
	if err := s.db.WithContext(ctx).Create(value).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("sql: create: %w", err)
	}
	return nil
}

// replace overwrites every column of the row with value's primary key.
func (s *GormStore) replace(ctx context.Context, value interface{}) (bool, error) {
	res := s.db.WithContext(ctx).Model(value).Select("*").Updates(value)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return false, ErrDuplicate
		}
		return false, fmt.Errorf("sql: update: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) delete(ctx context.Context, model interface{}, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return false, fmt.Errorf("sql: delete: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}

// applyFilter adds the WHERE clauses for f to a products query. LIKE
// patterns escape their wildcards with '!' so the term is matched literally.
func applyFilter(tx *gorm.DB, f Filter) *gorm.DB {
	switch f := filterOrAll(f).(type) {
	case TextMatch:
		if f.Term == "" {
			return tx
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Term)) + "%"
		return tx.Where("(search_title LIKE ? ESCAPE '!' OR search_description LIKE ? ESCAPE '!')", pattern, pattern)
	case CategoryIn:
		if len(f.IDs) == 0 {
			return tx.Where("1 = 0")
		}
		return tx.Where("category IN ?", f.IDs)
	case InStock:
		return tx.Where("stock > ?", 0)
	case And:
		for _, member := range f {
			tx = applyFilter(tx, member)
		}
		return tx
	default:
		return tx
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
