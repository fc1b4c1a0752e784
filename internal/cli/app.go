package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"FundCortex/internal/config"
	"FundCortex/internal/dataflows"
	"FundCortex/internal/engine"
	"FundCortex/internal/normalize"
	"FundCortex/internal/progress"
	"FundCortex/internal/storage/sqlite"
	"FundCortex/internal/trading"
)

// app bundles the wired collaborators behind the CLI commands.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	service  *dataflows.Service
	docs     *sqlite.Store
	reporter *progress.Reporter
}

func newApp(cfg *config.Config) (*app, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create data directories: %w", err)
	}

	mappings := normalize.DefaultMappingSet()
	if cfg.MappingFile != "" {
		mappings, err = normalize.LoadMappingSet(cfg.MappingFile)
		if err != nil {
			return nil, err
		}
	}

	docs, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	reporter := progress.NewReporter(log)
	service := dataflows.NewService(dataflows.ServiceOptions{
		Provider: dataflows.NewEastMoneyClient(cfg.ProviderBaseURL),
		Yahoo:    dataflows.NewYahooClient(),
		Mappings: mappings,
		Docs:     docs,
		Progress: reporter,
		Logger:   log,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		service:  service,
		docs:     docs,
		reporter: reporter,
	}, nil
}

func (a *app) Close() {
	if a.docs != nil {
		a.docs.Close()
	}
}

// session wires the decision pipeline; it needs LLM credentials.
func (a *app) session(ctx context.Context) (*trading.Session, error) {
	if err := a.cfg.ValidateKeys(); err != nil {
		return nil, err
	}

	chatModel, err := engine.NewChatModel(ctx, engine.ModelConfig{
		Provider:  a.cfg.LLMProvider,
		BaseURL:   a.cfg.LLMBaseURL,
		APIKey:    a.cfg.LLMAPIKey,
		Model:     a.cfg.LLMModel,
		MaxTokens: a.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}

	eng := engine.New(chatModel, a.log)
	return trading.NewSession(a.service, eng, a.reporter, a.log), nil
}
