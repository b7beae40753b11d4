// Package service wires configuration, reference data, the search engine,
// caching and the HTTP server into one runnable unit.
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ug-admin-search/internal/cache"
	"github.com/ug-admin-search/internal/config"
	"github.com/ug-admin-search/internal/db"
	"github.com/ug-admin-search/internal/logger"
	"github.com/ug-admin-search/internal/metrics"
	"github.com/ug-admin-search/internal/refdata"
	"github.com/ug-admin-search/internal/search"
	"github.com/ug-admin-search/internal/web"
)

// Service owns every long-lived resource of a running instance.
type Service struct {
	Config   *config.Config
	Holder   *search.Holder
	Reloader *search.Reloader
	Cache    cache.Cache

	conn  *db.Connection
	redis *cache.Redis
}

// OpenProvider returns the provider selected by cfg.Data.Source. For the
// postgres source it also returns the open connection, which the caller closes.
func OpenProvider(cfg *config.Config) (refdata.Provider, *db.Connection, error) {
	switch cfg.Data.Source {
	case config.SourceEmbedded, "":
		return refdata.Embedded(), nil, nil
	case config.SourceDir:
		return refdata.NewDirProvider(cfg.Data.Dir), nil, nil
	case config.SourcePostgres:
		conn, err := OpenDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return refdata.NewPGProvider(conn.DB), conn, nil
	}
	return nil, nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
}

// OpenDB connects using database.url, falling back to the PG* variables.
func OpenDB(cfg *config.Config) (*db.Connection, error) {
	dsn := cfg.Database.URL
	if dsn == "" {
		dsn = db.DSNFromEnv()
	}
	return db.Open(dsn, cfg.Database.MaxConnections)
}

// New loads the reference data and builds the first engine. It fails when
// the initial load fails; later reload failures keep the engine in service.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	provider, conn, err := OpenProvider(cfg)
	if err != nil {
		return nil, err
	}
	s := &Service{Config: cfg, conn: conn}

	s.Cache = s.openCache(ctx)
	s.Holder = search.NewHolder(nil)
	s.Reloader = search.NewReloader(s.Holder, provider, cfg.Search.FuzzyOptions())
	if cfg.Data.Debounce > 0 {
		s.Reloader.Debounce = cfg.Data.Debounce
	}
	s.Reloader.OnSwap = func(e *search.Engine, gen uint64) {
		metrics.ReloadsTotal.WithLabelValues("ok").Inc()
		metrics.EngineGeneration.Set(float64(gen))
		metrics.SetUnits(e.Stats().Counts)
		if s.Cache != nil {
			s.Cache.Purge()
		}
	}
	s.Reloader.OnError = func(error) {
		metrics.ReloadsTotal.WithLabelValues("failed").Inc()
	}

	e, err := s.Reloader.Reload(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	st := e.Stats()
	logger.L().Info("engine_ready",
		"source", cfg.Data.Source,
		"units", st.Total,
		"fingerprint", st.Fingerprint,
		"build_time", st.BuildTime)
	return s, nil
}

func (s *Service) openCache(ctx context.Context) cache.Cache {
	cc := s.Config.Cache
	if !cc.Enabled {
		return nil
	}
	local := cache.NewLRU(cc.Size)
	if cc.RedisAddr == "" {
		return local
	}
	r, err := cache.OpenRedis(ctx, cache.RedisOptions{
		Addr:     cc.RedisAddr,
		Password: cc.RedisPassword,
		DB:       cc.RedisDB,
		TTL:      cc.TTL,
	})
	if err != nil {
		logger.L().Warn("redis_unavailable", "addr", cc.RedisAddr, "error", err)
		return local
	}
	s.redis = r
	return cache.NewTiered(local, r)
}

// Run serves HTTP, and watches the data directory when configured, until ctx
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	srv := web.NewServer(s.Config, s.Holder, s.Reloader, s.Cache)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	if s.Config.Data.Watch && s.Config.Data.Source == config.SourceDir {
		g.Go(func() error {
			return s.Reloader.Watch(ctx, s.Config.Data.Dir)
		})
	}
	return g.Wait()
}

// Close releases the database and Redis connections.
func (s *Service) Close() error {
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return errors.Join(errs...)
}
