package engine

import (
	"context"
	"errors"
	"fmt"

	"datasync/internal/logging"
	"datasync/internal/pipeline"
	"datasync/internal/telemetry"
)

type Config struct {
	MetricsPort int
	PipelineYml string
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.PipelineYml == "" {
		return nil, errors.New("engine: pipeline file is required")
	}

	// 1. pipeline runner
	runner, err := pipeline.Compile(ctx, cfg.PipelineYml)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if err := runner.Start(ctx); err != nil {
		_ = runner.Close()
		return nil, err
	}

	// 2. metrics
	if cfg.MetricsPort > 0 {
		telemetry.Expose(cfg.MetricsPort)
	}

	logging.L().Info("engine started", "pipeline", cfg.PipelineYml, "metrics_port", cfg.MetricsPort)
	return &Engine{runner: runner}, nil
}
