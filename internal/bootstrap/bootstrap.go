// Package bootstrap wires configuration into clients, stores and services
// shared by the HTTP server and the batch CLI.
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/tastelens/backend/config"
	"github.com/tastelens/backend/internal/domain"
	"github.com/tastelens/backend/internal/infrastructure/arena"
	"github.com/tastelens/backend/internal/infrastructure/cache"
	"github.com/tastelens/backend/internal/infrastructure/gemini"
	"github.com/tastelens/backend/internal/infrastructure/logger"
	"github.com/tastelens/backend/internal/infrastructure/metadata"
	"github.com/tastelens/backend/internal/infrastructure/metrics"
	"github.com/tastelens/backend/internal/infrastructure/storage"
	"github.com/tastelens/backend/internal/usecase"
)

const redisKeyPrefix = "tastelens:"

// App holds every wired service. Services whose credentials are missing stay nil.
type App struct {
	Config  *config.Config
	Log     logger.Logger
	Metrics *metrics.Metrics
	Cache   domain.CacheRepository
	Store   domain.IndexRepository

	Indexing       *usecase.IndexingService
	Matching       *usecase.MatchService
	Classification *usecase.ClassificationService
	StyleGuides    *usecase.StyleGuideService
	Triage         *usecase.TriageService
	Sessions       *usecase.SessionStore

	closers []func() error
}

// NewLogger creates the process logger. debug forces the debug level.
func NewLogger(cfg *config.Config, debug bool) (logger.Logger, error) {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	return logger.New(logger.Config{
		Level:       level,
		Development: cfg.Logging.Development || debug,
	})
}

// New builds the application from configuration.
// Are.na backed services need the Are.na token; tagging services also need the Gemini key.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	app := &App{
		Config:   cfg,
		Log:      log,
		Metrics:  metrics.New(),
		Store:    storage.NewJSONStore(cfg.Index.DataDir),
		Sessions: usecase.NewSessionStore(),
	}

	c, closeCache, err := newCache(cfg)
	if err != nil {
		return nil, err
	}
	app.Cache = c
	app.closers = append(app.closers, closeCache)

	var arenaClient domain.ArenaClient
	if cfg.RequireArena() == nil {
		arenaClient = arena.NewClient(cfg.Arena.Token, cfg.Arena.BaseURL, cfg.Arena.PerPage, cfg.Arena.RequestDelay, log.With(logger.String("client", "arena")))
	}

	var model domain.ModelClient
	if cfg.RequireGemini() == nil {
		model = gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.RequestDelay, log.With(logger.String("client", "gemini")))
	}

	if model != nil {
		app.Matching = usecase.NewMatchService(model, app.Store, app.Cache, app.Metrics, usecase.MatchServiceConfig{
			DefaultLimit:    cfg.Matching.DefaultLimit,
			MultiImageLimit: cfg.Matching.MultiImageLimit,
			CacheTTL:        cfg.Cache.TTL,
			Collections:     cfg.Matching.Collections,
		}, log.With(logger.String("service", "match")))
	}

	if arenaClient == nil {
		return app, nil
	}

	rules := cfg.ClassificationRules()
	if rules == nil {
		rules = usecase.DefaultRules()
	}
	classifier := usecase.NewClassifier(rules, usecase.ClassifierConfig{
		MinDescriptionLength: cfg.Classify.MinDescriptionLength,
	})
	directory := usecase.NewChannelDirectory(arenaClient, cfg.Arena.UserSlug, log)

	app.Classification = usecase.NewClassificationService(
		arenaClient,
		metadata.NewExtractor(metadata.DefaultTimeout, log),
		classifier,
		directory,
		app.Metrics,
		usecase.ClassificationServiceConfig{
			Concurrency:       cfg.Classify.Concurrency,
			CanonicalChannels: cfg.Classify.CanonicalChannels,
		},
		log.With(logger.String("service", "classify")),
	)
	app.Triage = usecase.NewTriageService(arenaClient, directory, app.Classification, app.Sessions, app.Metrics, log.With(logger.String("service", "triage")))

	if model != nil {
		app.Indexing = usecase.NewIndexingService(arenaClient, model, app.Store, app.Metrics, usecase.IndexingConfig{
			Concurrency: cfg.Classify.Concurrency,
		}, log.With(logger.String("service", "index")))
		app.StyleGuides = usecase.NewStyleGuideService(arenaClient, model, app.Store, app.Metrics, cfg.Classify.Concurrency, log.With(logger.String("service", "styleguide")))
	}

	return app, nil
}

// Close releases the cache connection
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newCache(cfg *config.Config) (domain.CacheRepository, func() error, error) {
	switch cfg.Cache.Type {
	case "redis":
		rc, err := cache.NewRedisCache(cfg.Cache.RedisURL, redisKeyPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rc, rc.Close, nil
	default:
		mc := cache.NewMemoryCache()
		return mc, mc.Close, nil
	}
}
