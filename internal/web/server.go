package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ug-admin-search/internal/cache"
	"github.com/ug-admin-search/internal/config"
	"github.com/ug-admin-search/internal/logger"
	"github.com/ug-admin-search/internal/metrics"
	"github.com/ug-admin-search/internal/search"
	"github.com/ug-admin-search/internal/web/handlers"
	"github.com/ug-admin-search/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	holder     *search.Holder
	reloader   *search.Reloader
	cache      cache.Cache
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
}

// NewServer creates a new web server instance. reloader and c may be nil.
func NewServer(cfg *config.Config, holder *search.Holder, reloader *search.Reloader, c cache.Cache) *Server {
	s := &Server{
		config:   cfg,
		holder:   holder,
		reloader: reloader,
		cache:    c,
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the complete HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	handlerConfig := handlers.NewConfig(s.config.Search.DefaultLimit, s.config.Search.MaxLimit)
	apiHandler := &handlers.APIHandler{Holder: s.holder, Reloader: s.reloader, Config: handlerConfig}
	searchHandler := &handlers.SearchHandler{Holder: s.holder, Cache: s.cache, Config: handlerConfig}
	unitsHandler := &handlers.UnitsHandler{Holder: s.holder, Config: handlerConfig}
	eventsHandler := &handlers.EventsHandler{Holder: s.holder}

	s.router.HandleFunc("/healthz", apiHandler.Health).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(middleware.Authentication(s.config.Auth.APIKeys))

	// Search endpoints
	api.HandleFunc("/search", searchHandler.Search).Methods("GET")
	api.HandleFunc("/search/exact", searchHandler.ExactSearch).Methods("GET")

	// Hierarchy endpoints
	api.HandleFunc("/units/{level}", unitsHandler.ListUnits).Methods("GET")
	api.HandleFunc("/units/{level}/{id}", unitsHandler.GetUnit).Methods("GET")
	api.HandleFunc("/units/{level}/{id}/chain", unitsHandler.GetChain).Methods("GET")
	api.HandleFunc("/units/{level}/{id}/ancestors", unitsHandler.GetAncestors).Methods("GET")
	api.HandleFunc("/units/{level}/{id}/children", unitsHandler.GetChildren).Methods("GET")

	// Statistics and operations
	api.HandleFunc("/stats", apiHandler.GetStats).Methods("GET")
	api.HandleFunc("/events", eventsHandler.Events).Methods("GET")
	if s.config.Auth.AdminToken != "" && s.reloader != nil {
		api.Handle("/reload",
			middleware.RequireToken("X-Admin-Token", s.config.Auth.AdminToken)(http.HandlerFunc(apiHandler.Reload)),
		).Methods("POST")
	}

	// Apply middleware. Request ids and CORS wrap the router so that
	// preflight requests, which match no route, are answered too.
	s.router.Use(middleware.RequestLogging())
	s.handler = middleware.RequestID()(middleware.CORS(s.config.Server.CORSOrigins)(s.router))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server_started", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.L().Info("server_stopped")
	return nil
}
