package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cargoflow/intake/internal/ai"
	"github.com/cargoflow/intake/internal/config"
	"github.com/cargoflow/intake/internal/extract"
	"github.com/cargoflow/intake/internal/home"
	"github.com/cargoflow/intake/internal/mapping"
	"github.com/cargoflow/intake/internal/ocr"
	"github.com/cargoflow/intake/internal/patterns"
	"github.com/cargoflow/intake/internal/pipeline"
	"github.com/cargoflow/intake/internal/storage"
	"github.com/cargoflow/intake/internal/strategy"
	"github.com/cargoflow/intake/internal/vehicleref"
)

// components is the wired object graph commands run against.
type components struct {
	cfg      *config.Config
	logger   *slog.Logger
	mappings *mapping.Manager
	pipeline *pipeline.Pipeline
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// buildComponents loads configuration and wires every pipeline collaborator.
// Configuration problems are fatal here, never later per document.
func buildComponents(storageDir string) (*components, error) {
	logger := newLogger(slog.LevelInfo)

	cfgm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := cfgm.Get()
	if storageDir != "" {
		cfg.Storage.Dir = storageDir
	}
	if cfg.Storage.Dir == "" {
		h, err := home.New(homeDir)
		if err != nil {
			return nil, err
		}
		if err := h.EnsureExists(); err != nil {
			return nil, err
		}
		cfg.Storage.Dir = h.DocumentsPath()
	}

	catalog, err := patterns.Load(cfg.Patterns.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("loading pattern catalog: %w", err)
	}
	vehicles := vehicleref.NewStatic()
	engine := extract.NewEngine(catalog, vehicles, logger)
	ocrEngine := ocr.New(ocr.ExecRunner{Logger: logger}, cfg.OCR.Lang, logger)

	mappings, err := mapping.NewManager(cfg.Mappings.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("loading mapping config: %w", err)
	}
	if cfg.Mappings.Watch {
		if err := mappings.Watch(); err != nil {
			logger.Warn("mapping hot reload unavailable", "error", err)
		}
	}

	transformer, err := mapping.NewTransformer(vehicles, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("building transformer: %w", err)
	}
	mapper := mapping.NewEngine(mappings, transformer, logger)

	store := storage.NewRetryingStore(
		storage.NewLocalStore(cfg.Storage.Dir),
		cfg.Storage.RetryAttempts,
		cfg.Storage.RetryDelay,
	)

	registry := strategy.NewRegistry(logger)
	p := pipeline.New(store, registry, mapper, pipeline.Options{
		MemoryBudget: int64(cfg.Pipeline.MemoryBudgetMB) << 20,
		ReviewScore:  cfg.Pipeline.ReviewThreshold,
	}, logger)

	optimized := strategy.NewPDFOptimized(engine, ocrEngine, p.PreferStreaming, logger)
	base := []strategy.Strategy{
		strategy.NewEmail(engine, logger),
		strategy.NewPDFSimple(engine, logger),
		optimized,
		strategy.NewImageBasic(engine, ocrEngine, logger),
	}
	if cfg.AI.Enabled {
		extractor := ai.NewOpenAIExtractor(ai.OpenAIConfig{
			APIKey:  config.ResolveEnvVars(cfg.AI.APIKey),
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, logger)
		base = append(base,
			strategy.NewPDFEnhanced(optimized, extractor, logger),
			strategy.NewImageEnhanced(engine, ocrEngine, extractor, logger),
		)
	}
	for _, s := range base {
		if err := registry.Register(s); err != nil {
			return nil, fmt.Errorf("registering strategy: %w", err)
		}
	}

	return &components{
		cfg:      cfg,
		logger:   logger,
		mappings: mappings,
		pipeline: p,
	}, nil
}
