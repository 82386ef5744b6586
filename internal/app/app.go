// Package app wires the driven adapters and core services into a runnable
// application. The CLI bootstraps one App per invocation.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/artid/internal/adapters/driven/ai"
	"github.com/custodia-labs/artid/internal/adapters/driven/browser"
	"github.com/custodia-labs/artid/internal/adapters/driven/config/file"
	"github.com/custodia-labs/artid/internal/adapters/driven/reversesearch/google"
	"github.com/custodia-labs/artid/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/artid/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/artid/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/artid/internal/collector"
	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
	"github.com/custodia-labs/artid/internal/core/services"
	"github.com/custodia-labs/artid/internal/evidence"
	"github.com/custodia-labs/artid/internal/logger"
)

// Options control how the application is assembled.
type Options struct {
	// ConfigDir holds config.toml and prompts/. Empty uses ~/.artid.
	ConfigDir string

	// ValidateLLM pings the LLM providers at startup.
	ValidateLLM bool
}

// App holds the assembled services and the resources they depend on.
type App struct {
	Config   *file.ConfigStore
	Prompts  *file.PromptStore
	Settings *services.SettingsService

	Catalog        *services.CatalogService
	Collection     *services.CollectionService
	Identification *services.IdentificationService

	// Recognition is nil when no vision LLM is configured.
	Recognition *services.RecognitionService

	// RecognitionErr explains why Recognition is nil.
	RecognitionErr error

	closers []func() error
}

// New builds the application. Missing LLM configuration is not fatal:
// settings and catalog commands still work, and RecognitionErr says why
// recognition is unavailable.
func New(ctx context.Context, opts Options) (*App, error) {
	cfgStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	promptDir := ""
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	settingsSvc := services.NewSettingsService(cfgStore, ai.NewConfigValidator())
	settingsSvc.SetEnvLookup(os.Getenv)

	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a := &App{
		Config:   cfgStore,
		Prompts:  prompts,
		Settings: settingsSvc,
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	a.Catalog = services.NewCatalogService(store.CatalogStore(), settings.Pipeline.MatchThreshold)
	a.Collection = services.NewCollectionService(store.CollectionStore())

	if err := a.buildRecognition(ctx, settings, store, opts.ValidateLLM); err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}

	return a, nil
}

// buildRecognition assembles the identification pipeline. Only quota
// backend failures are returned; an unconfigured LLM is recorded instead.
func (a *App) buildRecognition(ctx context.Context, settings *domain.AppSettings, store *sqlite.Store, validate bool) error {
	llms, err := ai.InitServices(settings, validate)
	if err != nil {
		a.RecognitionErr = err
		logger.Debug("recognition disabled: %v", err)
		return nil
	}
	for _, w := range llms.Warnings {
		logger.Warn("%s", w)
	}
	a.closers = append(a.closers, func() error {
		llms.Close()
		return nil
	})

	p := settings.Pipeline
	srcCfg := evidence.Config{Timeout: p.LLMTimeout}
	vision := evidence.NewVisionSource(llms.VisionLLM, srcCfg)
	vision.SetPromptStore(a.Prompts)
	text := evidence.NewTextSource(llms.TextLLM, srcCfg)
	text.SetPromptStore(a.Prompts)

	var search driven.ReverseImageSearcher
	var webCollector services.WebCollector
	if settings.ReverseSearch.IsConfigured() {
		client, err := google.NewClient(ctx, google.Config{
			APIKey:      settings.ReverseSearch.APIKey,
			AccessToken: settings.ReverseSearch.AccessToken,
			Endpoint:    settings.ReverseSearch.Endpoint,
			MaxResults:  settings.ReverseSearch.MaxResults,
			RateLimit:   google.RateLimitConfig{RequestsPerSecond: settings.ReverseSearch.RequestsPerSecond},
		})
		if err != nil {
			logger.Warn("reverse search disabled: %v", err)
		} else {
			search = client
			a.closers = append(a.closers, client.Close)

			var renderer driven.PageRenderer
			if p.RenderEnabled {
				r := browser.NewRenderer(browser.Config{NoSandbox: p.RenderNoSandbox})
				renderer = r
				a.closers = append(a.closers, r.Close)
			}
			webCollector = collector.New(collector.Config{
				FetchLimit:    p.FetchLimit,
				TextBudget:    p.TextBudget,
				MinTextChars:  p.MinTextChars,
				RenderTimeout: p.RenderTimeout,
				Fetch: collector.FetchConfig{
					Timeout:      p.FetchTimeout,
					MaxBodyBytes: p.MaxBodyBytes,
				},
			}, renderer)
		}
	} else {
		logger.Debug("reverse search not configured; vision evidence only")
	}

	a.Identification = services.NewIdentificationService(vision, text, search, webCollector, p)

	quota, err := a.quotaGate(ctx, settings.Quota, store)
	if err != nil {
		return err
	}
	a.Recognition = services.NewRecognitionService(a.Identification, a.Catalog, store.CollectionStore(), quota)
	return nil
}

// quotaGate selects the configured backend. A non-positive limit disables the gate.
func (a *App) quotaGate(ctx context.Context, q domain.QuotaSettings, store *sqlite.Store) (driven.QuotaGate, error) {
	if q.DailyLimit <= 0 {
		return nil, nil
	}
	switch q.Backend {
	case domain.QuotaBackendMemory:
		return memory.NewQuotaStore(q.DailyLimit), nil
	case domain.QuotaBackendRedis:
		gate, err := redis.NewQuotaGate(ctx, redis.Options{URL: q.RedisURL, DailyLimit: q.DailyLimit})
		if err != nil {
			return nil, fmt.Errorf("connect quota backend: %w", err)
		}
		a.closers = append(a.closers, gate.Close)
		return gate, nil
	default:
		return store.QuotaGate(q.DailyLimit), nil
	}
}

// Reload re-reads settings and prompts and applies the new thresholds.
func (a *App) Reload() error {
	if err := a.Config.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reload config: %w", err)
	}
	settings, err := a.Settings.Get()
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	if err := settings.Pipeline.Validate(); err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}

	a.Prompts.Reload()
	a.Catalog.SetMatchThreshold(settings.Pipeline.MatchThreshold)
	if a.Identification != nil {
		a.Identification.UpdateSettings(settings.Pipeline)
	}
	logger.Info("configuration reloaded")
	return nil
}

// Watch reloads the configuration whenever config.toml changes.
// It blocks until ctx is cancelled.
func (a *App) Watch(ctx context.Context) error {
	return a.Config.Watch(ctx, func() {
		if err := a.Reload(); err != nil {
			logger.Warn("%v", err)
		}
	})
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
