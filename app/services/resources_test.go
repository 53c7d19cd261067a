package services

import (
	"context"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func newCategoryService(store repositories.CategoryStore, clock Clock) *CategoryService {
	return NewCategoryService(store, cache.NewMemory(), time.Minute, nil, clock)
}

func newAuthService(store repositories.UserStore) *AuthService {
	return NewAuthService(store, auth.NewTokens("test-secret", time.Hour), tickingClock())
}

// register signs up email and returns the new user's id.
func register(t *testing.T, s *AuthService, email string) string {
	t.Helper()
	ctx := context.Background()
	_, err := s.Register(ctx, models.Credentials{Email: email, Password: "secret1"})
	require.NoError(t, err)
	u, err := s.users.FindUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.ID
}

func requireKind(t *testing.T, err error, kind Kind, message string) {
	t.Helper()
	svcErr, ok := AsError(err)
	require.True(t, ok, "want *Error, got %v", err)
	assert.Equal(t, kind, svcErr.Kind)
	if message != "" {
		assert.Equal(t, message, svcErr.Message)
	}
}

// ── categories ──────────────────────────────────────────────────────────

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	svc := newCategoryService(repositories.NewMemoryStore(), tickingClock())

	c, err := svc.Create(ctx, models.CategoryInput{Name: "  Lighting "})
	require.NoError(t, err)
	assert.Equal(t, "Lighting", c.Name)

	_, err = svc.Create(ctx, models.CategoryInput{Name: "Lighting"})
	requireKind(t, err, KindConflict, "Category already exists")

	_, err = svc.Create(ctx, models.CategoryInput{Name: " "})
	requireKind(t, err, KindValidation, "")

	renamed, err := svc.Update(ctx, c.ID, models.CategoryInput{Name: "Lamps"})
	require.NoError(t, err)
	assert.Equal(t, "Lamps", renamed.Name)

	_, err = svc.Update(ctx, newID(), models.CategoryInput{Name: "X"})
	requireKind(t, err, KindNotFound, "Category not found")

	require.NoError(t, svc.Delete(ctx, c.ID))
	requireKind(t, svc.Delete(ctx, c.ID), KindNotFound, "Category not found")
	requireKind(t, svc.Delete(ctx, "junk"), KindNotFound, "Category not found")
}

func TestCategoryListIsCachedUntilChange(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	bus := event.NewBus()
	svc := NewCategoryService(store, cache.NewMemory(), time.Minute, bus, tickingClock())
	bus.Listen(event.CategoryChanged, func(interface{}) { svc.ForgetCached(ctx) })

	_, err := svc.Create(ctx, models.CategoryInput{Name: "Kitchen"})
	require.NoError(t, err)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Written behind the service's back: the cached list is still served.
	require.NoError(t, store.InsertCategory(ctx, &models.Category{ID: newID(), Name: "Garden"}))
	cached, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// A change through the service fires the event and drops the cache.
	_, err = svc.Create(ctx, models.CategoryInput{Name: "Office"})
	require.NoError(t, err)
	fresh, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

// racingStore runs onList right after reading the categories, standing in
// for a mutation that lands between the read and the cache write.
type racingStore struct {
	*repositories.MemoryStore
	onList func()
}

func (s *racingStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := s.MemoryStore.ListCategories(ctx)
	if s.onList != nil {
		fn := s.onList
		s.onList = nil
		fn()
	}
	return out, err
}

func TestCategoryListDoesNotCacheAStaleRead(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{MemoryStore: repositories.NewMemoryStore()}
	bus := event.NewBus()
	svc := NewCategoryService(store, cache.NewMemory(), time.Minute, bus, tickingClock())
	bus.Listen(event.CategoryChanged, func(interface{}) { svc.ForgetCached(ctx) })

	_, err := svc.Create(ctx, models.CategoryInput{Name: "Kitchen"})
	require.NoError(t, err)

	store.onList = func() {
		_, err := svc.Create(ctx, models.CategoryInput{Name: "Office"})
		require.NoError(t, err)
	}
	stale, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	fresh, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

// ── orders ──────────────────────────────────────────────────────────────

func TestOrderCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(repositories.NewMemoryStore(), nil, tickingClock())
	buyer, other := newID(), newID()

	o, err := svc.Create(ctx, buyer, false, models.OrderInput{
		UserID: other,
		Products: []models.LineItem{
			{Name: "Lamp", Price: 12.5, Quantity: 2},
			{Name: "Bulb", Price: 1, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, buyer, o.UserID, "non-admins always order as themselves")
	assert.Equal(t, 28.0, o.TotalAmount)
	assert.Equal(t, models.OrderPending, o.Status)

	onBehalf, err := svc.Create(ctx, buyer, true, models.OrderInput{
		UserID:      other,
		Products:    []models.LineItem{{Name: "Lamp", Price: 12.5, Quantity: 1}},
		TotalAmount: ptr(10.0),
	})
	require.NoError(t, err)
	assert.Equal(t, other, onBehalf.UserID)
	assert.Equal(t, 10.0, onBehalf.TotalAmount)
}

func TestOrderCreateValidation(t *testing.T) {
	svc := NewOrderService(repositories.NewMemoryStore(), nil, nil)

	_, err := svc.Create(context.Background(), newID(), false, models.OrderInput{
		Products: []models.LineItem{{Name: "", Price: -1, Quantity: 0}},
	})
	requireKind(t, err, KindValidation, "")
	svcErr, _ := AsError(err)

	msg, ok := svcErr.Violations.Field("products[0].name")
	assert.True(t, ok)
	assert.Equal(t, "The products[0].name field is required.", msg)
	_, ok = svcErr.Violations.Field("products[0].quantity")
	assert.True(t, ok)

	_, err = svc.Create(context.Background(), newID(), false, models.OrderInput{})
	requireKind(t, err, KindValidation, "")
}

func TestOrderListAndStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(repositories.NewMemoryStore(), nil, tickingClock())
	var ids []string
	for i := 0; i < 3; i++ {
		o, err := svc.Create(ctx, newID(), false, models.OrderInput{
			Products: []models.LineItem{{Name: "Lamp", Price: 1, Quantity: 1}},
		})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	page, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, ids[0], page.Orders[0].ID)

	past, err := svc.List(ctx, math.MaxInt/2+2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, past.Total)
	assert.Empty(t, past.Orders)

	// Any status may follow any other.
	for _, status := range []models.OrderStatus{models.OrderCompleted, models.OrderPending, models.OrderCancelled} {
		o, err := svc.UpdateStatus(ctx, ids[0], models.OrderStatusInput{Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, o.Status)
	}

	_, err = svc.UpdateStatus(ctx, ids[0], models.OrderStatusInput{Status: "shipped"})
	requireKind(t, err, KindValidation, "")

	_, err = svc.UpdateStatus(ctx, newID(), models.OrderStatusInput{Status: models.OrderCompleted})
	requireKind(t, err, KindNotFound, "Order not found")

	require.NoError(t, svc.Delete(ctx, ids[1]))
	requireKind(t, svc.Delete(ctx, ids[1]), KindNotFound, "Order not found")
}

// ── auth ────────────────────────────────────────────────────────────────

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := newAuthService(store)

	token, err := svc.Register(ctx, models.Credentials{Email: "  Ann@Example.COM ", Password: "secret1"})
	require.NoError(t, err)
	claims, err := svc.tokens.Validate(token)
	require.NoError(t, err)
	assert.False(t, claims.Admin)

	u, err := store.FindUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, u, "emails are stored lowercased")
	assert.Equal(t, u.ID, claims.Subject)
	assert.NotEqual(t, "secret1", u.Password)

	_, err = svc.Register(ctx, models.Credentials{Email: "ann@example.com", Password: "another"})
	requireKind(t, err, KindConflict, "Email is already in use")

	_, err = svc.Login(ctx, models.Credentials{Email: "ANN@example.com", Password: "secret1"})
	assert.NoError(t, err)

	_, err = svc.Login(ctx, models.Credentials{Email: "ann@example.com", Password: "wrong!"})
	requireKind(t, err, KindUnauthorized, "Invalid credentials")
	_, err = svc.Login(ctx, models.Credentials{Email: "nobody@example.com", Password: "secret1"})
	requireKind(t, err, KindUnauthorized, "Invalid credentials")
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(repositories.NewMemoryStore())

	_, err := svc.Register(context.Background(), models.Credentials{Email: "not-an-email", Password: "123"})
	requireKind(t, err, KindValidation, "")
	svcErr, _ := AsError(err)

	msg, _ := svcErr.Violations.Field("email")
	assert.Equal(t, "The email must be a valid email address.", msg)
	msg, _ = svcErr.Violations.Field("password")
	assert.Equal(t, "The password must be at least 6 characters.", msg)
}

func TestCurrentUserAndFavorites(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(repositories.NewMemoryStore())
	id := register(t, svc, "ann@example.com")

	u, err := svc.CurrentUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{}, u.FavoriteCategories)

	cat := newID()
	u, err = svc.SetFavorites(ctx, id, models.FavoritesInput{Categories: []string{cat, cat}})
	require.NoError(t, err)
	assert.Equal(t, []string{cat}, u.FavoriteCategories)

	_, err = svc.SetFavorites(ctx, id, models.FavoritesInput{Categories: []string{"bad"}})
	requireKind(t, err, KindValidation, "")

	_, err = svc.CurrentUser(ctx, newID())
	requireKind(t, err, KindNotFound, "User not found")
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := newAuthService(store)

	created, err := svc.EnsureAdmin(ctx, "root@example.com", "rootpass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "root@example.com", "rootpass")
	require.NoError(t, err)
	assert.False(t, created)

	token, err := svc.Login(ctx, models.Credentials{Email: "root@example.com", Password: "rootpass"})
	require.NoError(t, err)
	claims, err := svc.tokens.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

// ── images ──────────────────────────────────────────────────────────────

func TestImageStoreAndDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	svc := NewImageService(storage.NewLocalDisk(root, "http://localhost:8888/storage"))

	url, err := svc.Store(ctx, "Lamp.PNG", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8888/storage/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := path.Base(url)
	_, err = os.Stat(filepath.Join(root, "products", name))
	require.NoError(t, err)

	_, err = svc.Store(ctx, "notes.txt", strings.NewReader("txt"))
	requireKind(t, err, KindValidation, "")

	require.NoError(t, svc.Delete(ctx, name))
	_, err = os.Stat(filepath.Join(root, "products", name))
	assert.True(t, os.IsNotExist(err))

	requireKind(t, svc.Delete(ctx, name), KindNotFound, "Image not found")
	for _, bad := range []string{"", "../app.json", "products", "notes.txt", `..\lamp.png`} {
		requireKind(t, svc.Delete(ctx, bad), KindNotFound, "Image not found")
	}
}
