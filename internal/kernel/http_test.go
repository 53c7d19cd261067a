package kernel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
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
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

const (
	adminEmail    = "admin@shop.test"
	adminPassword = "adminpass"
)

// newTestKernel builds a kernel over an empty memory store with a seeded
// admin account.
func newTestKernel(t *testing.T, mutate ...func(*Deps)) *HTTPKernel {
	t.Helper()
	d := Deps{
		Store:  repositories.NewMemoryStore(),
		Cache:  cache.NewMemory(),
		Disk:   storage.NewLocalDisk(t.TempDir(), "http://localhost/storage"),
		Tokens: auth.NewTokens("kernel-test-secret", time.Hour),
	}
	for _, fn := range mutate {
		fn(&d)
	}

	k, err := NewHTTPKernel(d)
	require.NoError(t, err)

	_, err = k.Services().Auth.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	return k
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func adminToken(t *testing.T, k *HTTPKernel) string {
	t.Helper()
	token, err := k.Services().Auth.Login(context.Background(), models.Credentials{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	return token
}

// Every flow gets a fresh kernel so listings only see the flow's own data.
func TestAPIFlows(t *testing.T) {
	files, err := testkit.ScenarioFiles("testdata")
	require.NoError(t, err)

	vars := testkit.Vars{"adminEmail": adminEmail, "adminPassword": adminPassword}
	for _, path := range files {
		testkit.Run(t, newTestKernel(t).Handler(), path, vars)
	}
}

type downStore struct{ *repositories.MemoryStore }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthz(t *testing.T) {
	k := newTestKernel(t)
	rec := do(t, k.Handler(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"memory"}`, rec.Body.String())

	down := newTestKernel(t, func(d *Deps) { d.Store = downStore{repositories.NewMemoryStore()} })
	rec = do(t, down.Handler(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","store":"memory"}`, rec.Body.String())
}

func TestMetricsEndpointCountsMutations(t *testing.T) {
	k := newTestKernel(t)
	_, err := k.Services().Categories.Create(context.Background(), models.CategoryInput{Name: "Metrics"})
	require.NoError(t, err)

	rec := do(t, k.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `storefront_catalog_mutations_total{action="created",entity="category"}`)
	assert.Contains(t, body, "storefront_http_requests_total")
}

func TestRequestIDHeaderIsAccepted(t *testing.T) {
	k := newTestKernel(t)
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("X-Request-Id", "trace-123")
	assert.Equal(t, http.StatusOK, do(t, k.Handler(), req).Code)
}

func TestCORSPreflightOnAPI(t *testing.T) {
	k := newTestKernel(t, func(d *Deps) { d.CORSOrigins = "https://shop.example.com" })

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := do(t, k.Handler(), req)

	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthRateLimit(t *testing.T) {
	k := newTestKernel(t, func(d *Deps) { d.AuthRateLimit = 2 })
	login := func() int {
		body := strings.NewReader(`{"email":"` + adminEmail + `","password":"` + adminPassword + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
		return do(t, k.Handler(), req).Code
	}

	assert.Equal(t, http.StatusOK, login())
	assert.Equal(t, http.StatusOK, login())
	assert.Equal(t, http.StatusTooManyRequests, login())

	// Only the auth routes are throttled.
	rec := do(t, k.Handler(), httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImageUploadIsServed(t *testing.T) {
	k := newTestKernel(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "lamp.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake png bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken(t, k))
	rec := do(t, k.Handler(), req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct{ URL string }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, strings.HasPrefix(out.URL, "http://localhost/storage/products/"))
	assert.Equal(t, ".png", filepath.Ext(out.URL))

	u, err := url.Parse(out.URL)
	require.NoError(t, err)
	rec = do(t, k.Handler(), httptest.NewRequest(http.MethodGet, u.Path, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake png bytes", rec.Body.String())

	destroy := "/api/products/images/" + path.Base(u.Path)
	rec = do(t, k.Handler(), httptest.NewRequest(http.MethodDelete, destroy, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, destroy, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, k))
	rec = do(t, k.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Image deleted successfully"}`, rec.Body.String())

	rec = do(t, k.Handler(), httptest.NewRequest(http.MethodGet, u.Path, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, destroy, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, k))
	rec = do(t, k.Handler(), req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Image not found"}`, rec.Body.String())
}

func TestImageUploadRequiresAdminAndFile(t *testing.T) {
	k := newTestKernel(t)

	rec := do(t, k.Handler(), httptest.NewRequest(http.MethodPost, "/api/products/images", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/products/images", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer "+adminToken(t, k))
	rec = do(t, k.Handler(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The image field is required.")
}

func TestGraphQLCatalog(t *testing.T) {
	k := newTestKernel(t)
	ctx := context.Background()
	svc := k.Services()

	cat, err := svc.Categories.Create(ctx, models.CategoryInput{Name: "Kitchen"})
	require.NoError(t, err)
	title, price, stock := "Cast Iron Skillet", 39.5, 3
	p, err := svc.Catalog.CreateProduct(ctx, models.ProductInput{
		Title: &title, Price: &price, Stock: &stock, Category: &cat.ID, Images: []string{"skillet.jpg"},
	})
	require.NoError(t, err)

	query := `query($id: ID!) {
		products(limit: 5) { total products { title category } }
		product(id: $id) { title category { name } }
		searchProducts(query: "skillet") { pagination { totalProducts } }
		categories { name }
	}`
	body, _ := json.Marshal(map[string]interface{}{"query": query, "variables": map[string]string{"id": p.ID}})
	rec := do(t, k.Handler(), httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Data struct {
			Products struct {
				Total    int
				Products []struct{ Title, Category string }
			}
			Product struct {
				Title    string
				Category struct{ Name string }
			}
			SearchProducts struct {
				Pagination struct{ TotalProducts int }
			}
			Categories []struct{ Name string }
		}
		Errors []interface{}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	require.Empty(t, res.Errors)

	assert.Equal(t, 1, res.Data.Products.Total)
	assert.Equal(t, cat.ID, res.Data.Products.Products[0].Category)
	assert.Equal(t, "Kitchen", res.Data.Product.Category.Name)
	assert.Equal(t, 1, res.Data.SearchProducts.Pagination.TotalProducts)
	assert.Equal(t, "Kitchen", res.Data.Categories[0].Name)
}

func TestAdminClaimIsRecheckedAgainstStore(t *testing.T) {
	tokens := auth.NewTokens("kernel-test-secret", time.Hour)
	k := newTestKernel(t, func(d *Deps) { d.Tokens = tokens })

	_, err := k.Services().Auth.Register(context.Background(), models.Credentials{Email: "former@shop.test", Password: "secret1"})
	require.NoError(t, err)
	u, err := k.store.FindUserByEmail(context.Background(), "former@shop.test")
	require.NoError(t, err)
	require.NotNil(t, u)

	stale, err := tokens.Generate(u.ID, true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Toys"}`))
	req.Header.Set("Authorization", "Bearer "+stale)
	rec := do(t, k.Handler(), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Toys"}`))
	req.Header.Set("Authorization", "Bearer "+adminToken(t, k))
	rec = do(t, k.Handler(), req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRouteTable(t *testing.T) {
	r := newTestKernel(t).Router()

	for name, want := range map[string]string{
		"products.show":           "/api/products/{id}",
		"products.search":         "/api/products/search",
		"products.images.destroy": "/api/products/images/{name}",
		"orders.store":            "/api/order",
		"auth.favorites":          "/api/auth/user/favorites",
		"health":                  "/healthz",
	} {
		got, ok := r.Path(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestStoragePrefix(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080/storage/":   "/storage",
		"https://cdn.example.com/media/v1": "/media/v1",
		"http://localhost:8080":            "/storage",
		"":                                 "/storage",
	}
	for in, want := range cases {
		assert.Equal(t, want, storagePrefix(in), in)
	}
}
