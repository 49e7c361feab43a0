// Command hospitalctl seeds, reports on and archives the hospital graph.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hospitalcore/internal/config"
	"hospitalcore/internal/core"
	"hospitalcore/internal/platform/logger"
	"hospitalcore/internal/platform/metrics"
	"hospitalcore/internal/scheduling"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, core.ClockFunc(time.Now)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app carries the dependencies built once per invocation.
type app struct {
	out   io.Writer
	logs  io.Writer
	clock core.Clock

	configPath      string
	metricsTextfile string

	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	svc      *core.Service
}

func run(ctx context.Context, args []string, out, logs io.Writer, clock core.Clock) error {
	a := &app{out: out, logs: logs, clock: clock, logger: zerolog.Nop()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(logs)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "hospitalctl",
		Short:         "Manage the hospital graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(seedCmd(a))
	root.AddCommand(reportCmd(a))
	root.AddCommand(demoCmd(a))
	root.AddCommand(archiveCmd(a))
	root.AddCommand(restoreCmd(a))
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(a.logs, cfg.IsDev(), cfg.LogLevel)
	if err != nil {
		return err
	}
	store, err := core.OpenPersistentStore(ctx, core.StorageConfig{
		Driver:      core.StorageDriver(cfg.StorageDriver),
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
	}, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}

	a.cfg = cfg
	a.logger = log
	a.registry = prometheus.NewRegistry()
	a.svc = core.NewService(store,
		core.WithLogger(log),
		core.WithClock(a.clock),
		core.WithMetricsRecorder(metrics.New(a.registry, cfg.MetricsNamespace)),
		core.WithTracer(core.NewLogTracer(log, a.clock)),
		core.WithAuditRecorder(core.NewLogAuditRecorder(log)),
		core.WithScheduler(scheduling.NewManager(
			scheduling.WithSlot(cfg.SchedulerSlot),
			scheduling.WithClock(a.clock.Now),
		)),
	)
	log.Debug().Str("storage", cfg.StorageDriver).Str("blob", cfg.BlobDriver).Msg("service ready")
	return nil
}

func (a *app) close() error {
	if a.svc == nil {
		return nil
	}
	var errs []error
	if a.metricsTextfile != "" {
		if err := prometheus.WriteToTextfile(a.metricsTextfile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := a.svc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	a.svc = nil
	return errors.Join(errs...)
}
