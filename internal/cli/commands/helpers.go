package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gridstack-labs/gridcalc/internal/config"
	"github.com/gridstack-labs/gridcalc/internal/engine"
	"github.com/gridstack-labs/gridcalc/internal/eval"
	"github.com/gridstack-labs/gridcalc/internal/loader"
	"github.com/gridstack-labs/gridcalc/internal/model"
)

// getConfig returns the loaded CLI configuration.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		ModelPath:    config.DefaultModelPath,
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		Functions:    config.DefaultFunctions,
		Precision:    config.DefaultPrecision,
	}
}

// createEngine builds an engine from the CLI configuration.
func createEngine(ctx context.Context, cfg *config.Config) *engine.Engine {
	functions := eval.FullSet()
	if cfg.Functions == "demo" {
		functions = eval.DemoSet()
	}
	return engine.New(engine.Config{
		Functions: functions,
		Logger:    config.GetLogger(ctx),
	})
}

// loadModel reads and parses the model file from the configuration,
// applying any scalar overrides.
func loadModel(cfg *config.Config) (*model.Model, error) {
	if err := cfg.ValidateModelFile(); err != nil {
		return nil, err
	}
	m, err := loader.Load(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", cfg.ModelPath, err)
	}
	for name, raw := range cfg.Overrides {
		if _, ok := m.Variables[name]; !ok {
			return nil, fmt.Errorf("override for unknown scalar %q", name)
		}
		m.Variables[name] = model.LiteralVariable(name, loader.ParseLiteral(raw))
	}
	return m, nil
}

// resolveModel loads and resolves the model, optionally under a scenario.
func resolveModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.Model, error) {
	m, err := loadModel(cfg)
	if err != nil {
		return nil, err
	}

	eng := createEngine(ctx, cfg)
	if cfg.Scenario != "" {
		logger.Debug("resolving model with scenario", "model", cfg.ModelPath, "scenario", cfg.Scenario)
		return eng.ResolveScenario(m, cfg.Scenario)
	}
	logger.Debug("resolving model", "model", cfg.ModelPath)
	return eng.Resolve(m)
}
