// Package kernel assembles the storefront's HTTP handler: services built on
// top of a store, the global middleware stack, the REST API, GraphQL and the
// operational endpoints.
package kernel

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shashiranjanraj/storefront/app/controllers"
	appgraphql "github.com/shashiranjanraj/storefront/app/graphql"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Deps are the collaborators the kernel is built from. Only Store is
// required; the rest default to in-process implementations.
type Deps struct {
	Store  repositories.Store
	Cache  cache.Store
	Disk   storage.Disk
	Tokens *auth.Tokens
	Clock  services.Clock

	// CORSOrigins is a comma separated allow list; empty allows any origin.
	CORSOrigins string
	// AuthRateLimit is the per-minute budget of register/login calls per IP.
	// Zero disables the limit.
	AuthRateLimit int
}

// FromConfig fills the configurable parts of Deps from the environment.
func FromConfig(store repositories.Store, c cache.Store, disk storage.Disk) Deps {
	return Deps{
		Store:         store,
		Cache:         c,
		Disk:          disk,
		Tokens:        auth.NewTokens(config.JWTSecret(), config.JWTTTL()),
		CORSOrigins:   config.CORSOrigins(),
		AuthRateLimit: config.AuthRateLimit(),
	}
}

// Services are the business services behind the handlers.
type Services struct {
	Catalog    *services.CatalogService
	Categories *services.CategoryService
	Orders     *services.OrderService
	Auth       *services.AuthService
	Images     *services.ImageService
}

// HTTPKernel owns the router and the services wired into it.
type HTTPKernel struct {
	router   *router.Router
	services Services
	store    repositories.Store
}

// NewHTTPKernel wires services, listeners and routes.
func NewHTTPKernel(d Deps) (*HTTPKernel, error) {
	if d.Cache == nil {
		d.Cache = cache.NewMemory()
	}
	if d.Disk == nil {
		d.Disk = storage.NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	}
	if d.Tokens == nil {
		d.Tokens = auth.NewTokens(config.JWTSecret(), config.JWTTTL())
	}

	bus := event.NewBus()
	svc := Services{
		Catalog:    services.NewCatalogService(d.Store, bus, d.Clock),
		Categories: services.NewCategoryService(d.Store, d.Cache, config.CategoryCacheTTL(), bus, d.Clock),
		Orders:     services.NewOrderService(d.Store, bus, d.Clock),
		Auth:       services.NewAuthService(d.Store, d.Tokens, d.Clock),
		Images:     services.NewImageService(d.Disk),
	}
	listen(bus, svc)

	k := &HTTPKernel{router: router.New(), services: svc, store: d.Store}

	// Global middleware stack, outermost first: metrics, request id,
	// recovery, logger, CORS, bearer principal, admin re-check.
	r := k.router
	r.Use(metrics.Middleware())
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSOptionsFrom(d.CORSOrigins)))
	r.Use(middleware.Authenticate(d.Tokens))
	r.Use(middleware.ConfirmAdmin(func(ctx context.Context, userID string) (bool, error) {
		u, err := d.Store.FindUser(ctx, userID)
		if err != nil {
			return false, err
		}
		return u != nil && u.IsAdmin, nil
	}))

	// No auth and no rate limit on /metrics.
	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/healthz", "health", k.health)

	schema, err := appgraphql.NewSchema(svc.Catalog, svc.Categories)
	if err != nil {
		return nil, err
	}
	r.HandleFunc("/graphql", graphql.Handler(schema))

	c := routes.Controllers{
		Products:   controllers.NewProductController(svc.Catalog, svc.Images),
		Categories: controllers.NewCategoryController(svc.Categories),
		Orders:     controllers.NewOrderController(svc.Orders),
		Auth:       controllers.NewAuthController(svc.Auth),
	}
	if d.AuthRateLimit > 0 {
		c.AuthLimit = middleware.RateLimit(d.AuthRateLimit, time.Minute)
	}
	routes.RegisterAPI(r, c)

	if root, ok := storage.LocalRoot(d.Disk); ok {
		prefix := storagePrefix(d.Disk.URL(""))
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(root))))
	}

	return k, nil
}

// listen subscribes the cross-cutting reactions to catalog changes.
func listen(bus *event.Bus, svc Services) {
	count := func(payload interface{}) {
		if c, ok := payload.(event.Change); ok {
			metrics.RecordMutation(c.Entity, c.Action)
		}
	}
	bus.Listen(event.ProductChanged, count)
	bus.Listen(event.OrderChanged, count)
	bus.Listen(event.CategoryChanged, count)

	bus.Listen(event.CategoryChanged, func(interface{}) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		svc.Categories.ForgetCached(ctx)
	})
}

func (k *HTTPKernel) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := k.store.Ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Warn("health: store ping failed", "error", err)
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"store":  k.store.Driver(),
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  k.store.Driver(),
	})
}

// Handler returns the root http.Handler.
func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table, used by `route:list`.
func (k *HTTPKernel) Router() *router.Router { return k.router }

// Services returns the services the handlers dispatch to.
func (k *HTTPKernel) Services() Services { return k.services }

// storagePrefix extracts the path part of the public storage URL
// ("http://localhost:8080/storage" → "/storage").
func storagePrefix(baseURL string) string {
	path := "/storage"
	if u, err := url.Parse(baseURL); err == nil && strings.Trim(u.Path, "/") != "" {
		path = "/" + strings.Trim(u.Path, "/")
	}
	return path
}
