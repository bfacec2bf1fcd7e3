package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"datasync/internal/engine"
	"datasync/internal/logging"
	"datasync/source/kafka"
)

func main() {
	pipelineYml := flag.String("pipeline", "pipeline.yml", "pipeline spec file")
	metricsPort := flag.Int("metrics-port", 9100, "port for /metrics (0 disables)")
	flag.Parse()

	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	kafka.Register("sarama", func() kafka.Adapter { return &kafka.SaramaDriver{} })

	e, err := engine.Bootstrap(ctx, engine.Config{
		MetricsPort: *metricsPort,
		PipelineYml: *pipelineYml,
	})
	if err != nil {
		logging.L().Error("bootstrap failed", "err", err)
		os.Exit(1)
	}

	if err := e.Run(ctx); err != nil {
		logging.L().Error("engine stopped", "err", err)
		os.Exit(1)
	}
}
