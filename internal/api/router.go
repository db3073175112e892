// Package api serves the whatsnext REST API: items, user accounts and
// profiles, and the built client in production.
package api

import (
	"context"
	"net/http"
	"time"

	"whatsnext/internal/auth/gate"
	"whatsnext/internal/authz"
	"whatsnext/internal/httputils"
	"whatsnext/internal/identity"
	"whatsnext/internal/objectstore"
	"whatsnext/internal/observability/logging"
	"whatsnext/internal/observability/metrics"
	"whatsnext/internal/store"
	"whatsnext/internal/validate"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Store is the document storage the handlers need
type Store interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, handle string) (*store.User, error)
	CreateUser(ctx context.Context, u store.User) error
	UpdateUserDetails(ctx context.Context, handle string, d validate.UserDetails) error
	SetUserImage(ctx context.Context, handle, imageURL string) error

	ListItems(ctx context.Context, userID string) ([]store.Item, error)
	CreateItem(ctx context.Context, it store.Item) error
	GetItem(ctx context.Context, itemID string) (*store.Item, error)
	UpdateItemBody(ctx context.Context, itemID, body string) error
	DeleteItem(ctx context.Context, itemID string) error

	ListLikesByHandle(ctx context.Context, handle string) ([]store.Like, error)
}

// Config holds router configuration
type Config struct {
	// StaticDir is served as a single page application when set
	StaticDir string

	// UploadsDir is served under objectstore.UploadsPath when set
	UploadsDir string

	// MaxImageBytes caps profile image uploads
	MaxImageBytes int64

	// Now overrides the clock used for createdAt, for tests
	Now func() time.Time
}

// Router routes API requests
type Router struct {
	*mux.Router
	config     Config
	store      Store
	provider   identity.Provider
	objects    objectstore.Driver
	gate       *gate.Gate
	authorizer authz.Authorizer
	logger     *logging.Logger
	metrics    *metrics.Collector
	now        func() time.Time
}

// New creates a new router
func New(config Config, st Store, provider identity.Provider, objects objectstore.Driver,
	g *gate.Gate, authorizer authz.Authorizer, logger *logging.Logger, metricsCollector *metrics.Collector) *Router {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	if config.MaxImageBytes <= 0 {
		config.MaxImageBytes = 10 << 20
	}

	r := &Router{
		Router:     mux.NewRouter(),
		config:     config,
		store:      st,
		provider:   provider,
		objects:    objects,
		gate:       g,
		authorizer: authorizer,
		logger:     logger.WithModule("api"),
		metrics:    metricsCollector,
		now:        now,
	}

	r.setupRoutes()

	return r
}

// setupRoutes registers every route. Protected routes go through the gate.
func (r *Router) setupRoutes() {
	r.HandleFunc("/healthz", r.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	items := api.PathPrefix("/items").Subrouter()
	items.Handle("", r.protect(handlers.CompressHandler(http.HandlerFunc(r.listItems)))).Methods(http.MethodGet)
	items.Handle("", r.protect(http.HandlerFunc(r.createItem))).Methods(http.MethodPost)
	items.Handle("/{itemId}", r.protect(http.HandlerFunc(r.updateItem))).Methods(http.MethodPut)
	items.Handle("/{itemId}", r.protect(http.HandlerFunc(r.deleteItem))).Methods(http.MethodDelete)

	user := api.PathPrefix("/user").Subrouter()
	user.HandleFunc("/signUp", r.signUp).Methods(http.MethodPost)
	user.HandleFunc("/login", r.login).Methods(http.MethodPost)
	user.Handle("/image", r.protect(http.HandlerFunc(r.uploadImage))).Methods(http.MethodPost)
	user.Handle("", r.protect(http.HandlerFunc(r.getUser))).Methods(http.MethodGet)
	user.Handle("", r.protect(http.HandlerFunc(r.addUserDetails))).Methods(http.MethodPost)

	api.NotFoundHandler = http.HandlerFunc(notFound)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	if r.config.UploadsDir != "" {
		r.logger.Debug("Serving uploaded files", "path", objectstore.UploadsPath, "dir", r.config.UploadsDir)
		r.PathPrefix(objectstore.UploadsPath).Handler(
			http.StripPrefix(objectstore.UploadsPath, http.FileServer(http.Dir(r.config.UploadsDir))),
		).Methods(http.MethodGet, http.MethodHead)
	}

	if r.config.StaticDir != "" {
		r.logger.Info("Serving static client", "dir", r.config.StaticDir)
		r.PathPrefix("/").Handler(spaHandler{dir: r.config.StaticDir}).Methods(http.MethodGet, http.MethodHead)
	}

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
}

func (r *Router) protect(h http.Handler) http.Handler {
	return r.gate.Middleware(h)
}

// Handler returns the router wrapped with CORS handling
func (r *Router) Handler() http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Trace-ID"}),
		handlers.ExposedHeaders([]string{"X-Trace-ID"}),
	)(r.Router)
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Ping(req.Context()); err != nil {
		logging.FromContextOr(req.Context(), r.logger).Error("Health check failed", logging.Err(err))
		httputils.Fail(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	httputils.OK(w, http.StatusOK, httputils.Envelope{"status": "ok"})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputils.Fail(w, http.StatusNotFound, "Not found.")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputils.Fail(w, http.StatusMethodNotAllowed, "Method not allowed.")
}

// internalError logs err and answers 500 with the provider error code
func (r *Router) internalError(w http.ResponseWriter, req *http.Request, msg string, err error) {
	logging.FromContextOr(req.Context(), r.logger).Error(msg, logging.Err(err))
	httputils.Fail(w, http.StatusInternalServerError, identity.CodeOf(err))
}

func (r *Router) badBody(w http.ResponseWriter, req *http.Request, err error) {
	logging.FromContextOr(req.Context(), r.logger).Debug("Rejected request body", logging.Err(err))
	httputils.Fail(w, http.StatusBadRequest, "Invalid request body.")
}
