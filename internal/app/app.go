package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"truthsignal/internal/affiliate"
	"truthsignal/internal/config"
	"truthsignal/internal/infrastructure/httpapi"
	"truthsignal/internal/infrastructure/llm"
	"truthsignal/internal/infrastructure/parser"
	"truthsignal/internal/logging"
	"truthsignal/internal/usecase"
)

// Application wires configs to the pipeline and the HTTP boundary.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	server *http.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	pipeline := NewPipeline(cfg, baseLogger)
	api := httpapi.New(pipeline, baseLogger.With("component", "httpapi"))

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		server: &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           api.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewPipeline assembles the three analysis stages from configuration.
// Shared by the server and the CLI.
func NewPipeline(cfg config.Config, baseLogger *slog.Logger) *usecase.Pipeline {
	htmlParser := parser.NewHTMLParser()
	detector := affiliate.NewDetector(htmlParser, baseLogger.With("component", "detector"))

	providers := make([]llm.Provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providers = append(providers, llm.Provider{
			ID:      p.ID,
			BaseURL: p.BaseURL,
			Model:   p.Model,
			APIKey:  p.APIKey,
		})
	}
	analyzer := llm.NewClient(providers, baseLogger.With("component", "llm"))

	return usecase.NewPipeline(usecase.PipelineDeps{
		Detector:          detector,
		Cleaner:           htmlParser,
		Analyzer:          analyzer,
		PreferredProvider: cfg.Analysis.PreferredProvider,
		Logger:            baseLogger.With("component", "pipeline"),
	})
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.server.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
