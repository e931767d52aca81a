package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/catalogo-api/apiserver/config"
	"github.com/catalogo-api/apiserver/internal/auth"
	"github.com/catalogo-api/apiserver/internal/db"
	"github.com/catalogo-api/apiserver/internal/handlers"
	"github.com/catalogo-api/apiserver/internal/mq"
	"github.com/catalogo-api/apiserver/internal/services"
	"github.com/catalogo-api/apiserver/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 60 * time.Second

// App is the set of collaborators the router dispatches to. It is built
// once at startup and not modified afterwards.
type App struct {
	Categories  *services.CategoryService
	Products    *services.ProductService
	Issuer      handlers.TokenIssuer
	Validator   handlers.TokenValidator
	Credentials auth.CredentialVerifier
	Logger      logrus.FieldLogger
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.MQ
	logger     logrus.FieldLogger
}

// New connects the store and optional backends and builds the router.
func New(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Server, error) {
	jwtKey := strings.TrimSpace(cfg.JWT.Key)
	if jwtKey == "" {
		return nil, errors.New("JWT_KEY is required")
	}
	tokenCfg := auth.TokenConfig{
		Secret:   []byte(jwtKey),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	}
	issuer, err := auth.NewIssuer(tokenCfg)
	if err != nil {
		return nil, err
	}
	validator, err := auth.NewValidator(tokenCfg)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	images, err := storage.New(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	events, err := mq.Open(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("open mq: %w", err)
	}
	// A nil *mq.MQ must not become a non-nil interface.
	var publisher services.EventPublisher
	if events != nil {
		publisher = events
	}

	sessions := services.NewSQLSessionFactory(dbConn)
	app := App{
		Categories:  services.NewCategoryService(sessions, publisher, logger),
		Products:    services.NewProductService(sessions, images, publisher, logger),
		Issuer:      issuer,
		Validator:   validator,
		Credentials: auth.StaticCredentials{Username: cfg.Auth.Username, Password: cfg.Auth.Password},
		Logger:      logger,
	}
	router := NewRouter(app)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"port":    port,
		"storage": cfg.Storage.Backend,
		"mq":      cfg.MQ.Backend,
	}).Info("server configured")

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
		logger:     logger,
	}, nil
}

// NewRouter composes the middleware chain and routes. Everything except
// "/" and "/login" requires a bearer token.
func NewRouter(app App) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.RequestLogger(app.Logger),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Location"},
			MaxAge:         300,
		}),
		middleware.Timeout(requestTimeout),
	)

	router.Get("/", handlers.Root)
	handlers.AuthRouter(router, app.Issuer, app.Credentials, app.Logger)

	router.Group(func(r chi.Router) {
		r.Use(handlers.RequireAuth(app.Validator))
		r.Route("/categorias", func(r chi.Router) {
			handlers.CategoryRouter(r, app.Categories, app.Logger)
		})
		r.Route("/produtos", func(r chi.Router) {
			handlers.ProductRouter(r, app.Products, app.Logger)
		})
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
