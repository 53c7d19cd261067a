package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/router"
)

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body)) //nolint:errcheck
	}
}

func tag(value string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestGroupsJoinPrefixesAndMiddleware(t *testing.T) {
	r := router.New()
	api := r.Group("/api", tag("api"))
	products := api.Group("products")
	products.Get("/", "products.index", text("index"))
	products.Get("/new", "products.new", text("new"))
	products.Get("/{id}", "products.show", text("show"))
	admin := products.Group("", tag("admin"))
	admin.Delete("/{id}", "products.destroy", text("destroyed"))

	h := r.Handler()

	rec := serve(h, http.MethodGet, "/api/products")
	assert.Equal(t, "index", rec.Body.String())
	assert.Equal(t, []string{"api"}, rec.Header().Values("X-Chain"))

	assert.Equal(t, "new", serve(h, http.MethodGet, "/api/products/new").Body.String())
	assert.Equal(t, "show", serve(h, http.MethodGet, "/api/products/abc").Body.String())

	rec = serve(h, http.MethodDelete, "/api/products/abc")
	assert.Equal(t, "destroyed", rec.Body.String())
	assert.Equal(t, []string{"api", "admin"}, rec.Header().Values("X-Chain"))

	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPut, "/api/products/abc").Code)
}

func TestURLBuildsNamedRoutes(t *testing.T) {
	r := router.New()
	r.Group("/api/order").Put("/{id}", "orders.update", text("ok"))

	url, err := r.URL("orders.update", map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/order/42", url)

	_, err = r.URL("orders.update", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesListsEverything(t *testing.T) {
	r := router.New()
	r.Get("/healthz", "health", text("ok"))
	r.HandleFunc("/metrics", text("metrics"))
	r.Group("/api").Post("/auth/login", "auth.login", text("token"))

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, router.RouteInfo{Method: "GET", Path: "/healthz", Name: "health"}, routes[0])
	assert.Equal(t, router.RouteInfo{Method: "*", Path: "/metrics"}, routes[1])
	assert.Equal(t, router.RouteInfo{Method: "POST", Path: "/api/auth/login", Name: "auth.login"}, routes[2])
}
