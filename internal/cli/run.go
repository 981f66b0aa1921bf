package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/config"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/server"
	"github.com/GriffinCanCode/rtpipe/internal/pipeline"
	"github.com/GriffinCanCode/rtpipe/internal/shared/id"
)

// ServiceName prefixes the run tag.
const ServiceName = "rtpipe"

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline until interrupted",
		Long: `Start the producer, consumer and supervisor tasks plus the task
watchdog. The status server starts too when SERVER_ENABLED is set.

Startup failures exit with code 3 so a process manager restarts the
pipeline.

Example:
  rtpipe run
  PIPELINE_TICK=100ms rtpipe run --dev
  rtpipe run --config ./rtpipe.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), rootOpts)
		},
	}
}

func runPipeline(ctx context.Context, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return WrapExitError(ExitConfig, "failed to create logger", err)
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)

	p, err := pipeline.New(cfg, logger, metrics)
	if err != nil {
		logger.Event(logging.CategoryError, "pipeline startup failed, restarting", zap.Error(err))
		return WrapExitError(ExitRestart, "startup failed", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Pipeline starting",
		zap.Duration("tick", cfg.Pipeline.Tick),
		zap.Bool("status_server", cfg.Server.Enabled),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(ctx) })
	if cfg.Server.Enabled {
		srv := server.New(cfg, p, reg, logger, metrics)
		g.Go(func() error { return srv.Run(ctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("Pipeline stopped with error", zap.Error(err))
		return WrapExitError(ExitFailure, "pipeline error", err)
	}
	logger.Info("Pipeline stopped")
	return nil
}

// newLogger builds the process logger stamped with the run tag.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	tag := cfg.Logging.Tag
	if tag == "" {
		tag = id.NewRunID().Tag(ServiceName)
	}
	return logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Tag:         tag,
	})
}
