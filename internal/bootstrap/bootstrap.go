package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/petrolex/contract-engine/internal/config"
	"github.com/petrolex/contract-engine/internal/core/ports"
	"github.com/petrolex/contract-engine/internal/core/usecase"
	auditmemory "github.com/petrolex/contract-engine/internal/infrastructure/audit/memory"
	auditpostgres "github.com/petrolex/contract-engine/internal/infrastructure/audit/postgres"
	"github.com/petrolex/contract-engine/internal/infrastructure/extract"
	"github.com/petrolex/contract-engine/internal/infrastructure/license/gumroad"
	"github.com/petrolex/contract-engine/internal/infrastructure/llm/openai"
	"github.com/petrolex/contract-engine/internal/infrastructure/profile"
	"github.com/petrolex/contract-engine/internal/infrastructure/resilience"
	"github.com/petrolex/contract-engine/internal/infrastructure/search"
	"github.com/petrolex/contract-engine/internal/observability/metrics"
)

const serviceName = "contract-engine-api"

type App struct {
	Config config.Config

	Analyzer       ports.ContractAnalyzer
	MetricsHandler http.Handler

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	var (
		audit   ports.AuditStore
		closeFn = func() {}
	)
	if cfg.PostgresDSN != "" {
		db, err := auditpostgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		store := auditpostgres.NewStore(db, cfg.AuditRetention)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure audit schema: %w", err)
		}
		audit = store
		closeFn = func() { _ = db.Close() }
	} else {
		audit = auditmemory.NewStore(cfg.AuditRetention)
	}

	profiles, err := profile.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("load profile catalog: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.AnalysisMaxRetries + 1,
	})

	licenseClient := gumroad.New(cfg.GumroadURL, cfg.GumroadProductID, cfg.LicenseTimeout)
	provider := openai.New(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	}, executor)
	searcher := search.New(cfg.SearchURL, cfg.SearchAPIKey, cfg.SearchResults, cfg.SearchTimeout)
	extractor := extract.New(cfg.MaxTextChars)

	analyzeUC := usecase.NewAnalyzeContractUseCase(
		licenseClient, extractor, provider, searcher, profiles, audit,
		usecase.Options{
			MaxUploadBytes:      cfg.MaxUploadBytes,
			LicenseTimeout:      cfg.LicenseTimeout,
			ExtractTimeout:      cfg.ExtractTimeout,
			AnalysisTimeout:     cfg.AnalysisTimeout,
			SearchTimeout:       cfg.SearchTimeout,
			EntityLookupCap:     cfg.EntityLookupCap,
			EntityLookupWorkers: cfg.EntityLookupWorkers,
			RateWindow:          cfg.RateWindow,
			RateMaxRequests:     cfg.RateMaxRequests,
		},
	)

	pipelineMetrics := metrics.NewPipelineMetrics(serviceName)

	return &App{
		Config:         cfg,
		Analyzer:       pipelineMetrics.Instrument(serviceName, analyzeUC),
		MetricsHandler: pipelineMetrics.Handler(),
		closeFn:        closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
