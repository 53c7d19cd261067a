package repositories

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// MemoryStore keeps everything in maps guarded by one RWMutex. Records are
// copied in and out so callers never share slices or maps with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	products   map[string]models.Product
	categories map[string]models.Category
	users      map[string]models.User
	orders     map[string]models.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:   map[string]models.Product{},
		categories: map[string]models.Category{},
		users:      map[string]models.User{},
		orders:     map[string]models.Order{},
	}
}

func (s *MemoryStore) Driver() string { return "memory" }
func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }

// ── products ────────────────────────────────────────────────────────────

func (s *MemoryStore) FindProducts(_ context.Context, q ProductQuery) ([]models.Product, error) {
	defer metrics.ObserveStoreOp("memory", "find_products", time.Now())

	s.mu.RLock()
	matched := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if matchProduct(filterOrAll(q.Filter), &p) {
			matched = append(matched, cloneProduct(p))
		}
	}
	s.mu.RUnlock()

	sortProducts(matched, q.Sort)
	return page(matched, q.Skip, q.Limit), nil
}

func (s *MemoryStore) CountProducts(_ context.Context, f Filter) (int64, error) {
	defer metrics.ObserveStoreOp("memory", "count_products", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if matchProduct(filterOrAll(f), &p) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) FindProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *MemoryStore) InsertProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; ok {
		return ErrDuplicate
	}
	s.products[p.ID] = cloneProduct(*p)
	return nil
}

func (s *MemoryStore) ReplaceProduct(_ context.Context, p *models.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return false, nil
	}
	s.products[p.ID] = cloneProduct(*p)
	return true, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

// ── categories ──────────────────────────────────────────────────────────

func (s *MemoryStore) ListCategories(context.Context) ([]models.Category, error) {
	s.mu.RLock()
	out := slices.Collect(maps.Values(s.categories))
	s.mu.RUnlock()

	if out == nil {
		out = []models.Category{}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) FindCategory(_ context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemoryStore) InsertCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; ok || s.categoryNameTaken(c.Name, c.ID) {
		return ErrDuplicate
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) ReplaceCategory(_ context.Context, c *models.Category) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; !ok {
		return false, nil
	}
	if s.categoryNameTaken(c.Name, c.ID) {
		return false, ErrDuplicate
	}
	s.categories[c.ID] = *c
	return true, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return false, nil
	}
	delete(s.categories, id)
	return true, nil
}

func (s *MemoryStore) categoryNameTaken(name, exceptID string) bool {
	for id, c := range s.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

// ── users ───────────────────────────────────────────────────────────────

func (s *MemoryStore) FindUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.FavoriteCategories = slices.Clone(u.FavoriteCategories)
	return &u, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			u.FavoriteCategories = slices.Clone(u.FavoriteCategories)
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) InsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	stored := *u
	stored.FavoriteCategories = slices.Clone(u.FavoriteCategories)
	s.users[u.ID] = stored
	return nil
}

func (s *MemoryStore) SetFavoriteCategories(_ context.Context, id string, categories []string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	u.FavoriteCategories = slices.Clone(categories)
	u.UpdatedAt = at
	s.users[id] = u
	return true, nil
}

// ── orders ──────────────────────────────────────────────────────────────

func (s *MemoryStore) FindOrders(_ context.Context, skip, limit int) ([]models.Order, error) {
	s.mu.RLock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		o.Products = slices.Clone(o.Products)
		out = append(out, o)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, skip, limit), nil
}

func (s *MemoryStore) CountOrders(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.orders)), nil
}

func (s *MemoryStore) InsertOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; ok {
		return ErrDuplicate
	}
	stored := *o
	stored.Products = slices.Clone(o.Products)
	s.orders[o.ID] = stored
	return nil
}

func (s *MemoryStore) UpdateOrderStatus(_ context.Context, id string, status models.OrderStatus, at time.Time) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	o.UpdatedAt = at
	s.orders[id] = o

	o.Products = slices.Clone(o.Products)
	return &o, nil
}

func (s *MemoryStore) DeleteOrder(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.orders, id)
	return true, nil
}

// ── filter evaluation ───────────────────────────────────────────────────

func matchProduct(f Filter, p *models.Product) bool {
	switch f := f.(type) {
	case All:
		return true
	case TextMatch:
		if f.Term == "" {
			return true
		}
		term := strings.ToLower(f.Term)
		return strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term)
	case CategoryIn:
		return slices.Contains(f.IDs, p.Category)
	case InStock:
		return p.Stock > 0
	case And:
		for _, member := range f {
			if !matchProduct(filterOrAll(member), p) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func sortProducts(ps []models.Product, by Sort) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		var cmp int
		switch by.Field {
		case SortStock:
			cmp = a.Stock - b.Stock
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp == 0 {
			return a.ID > b.ID
		}
		if by.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func page[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneProduct(p models.Product) models.Product {
	p.Images = slices.Clone(p.Images)
	p.Properties = maps.Clone(p.Properties)
	return p
}
