package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/EpicWink/seddy/internal/config"
	"github.com/EpicWink/seddy/internal/decider"
	"github.com/EpicWink/seddy/internal/logging"
	"github.com/EpicWink/seddy/internal/specloader"
	"github.com/EpicWink/seddy/internal/swfclient"
)

// DeciderCmd returns the "decider" subcommand: it loads the given spec
// files, builds the SWF client from the process environment (internal/
// config), and runs the Decider Loop until signaled (spec.md §4.7, §5).
func DeciderCmd() *cobra.Command {
	var specFiles []string
	var specFormat string

	cmd := &cobra.Command{
		Use:   "decider",
		Short: "Run the decider loop for one domain/task list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecider(cmd.Context(), specFiles, specFormat)
		},
	}

	cmd.Flags().StringArrayVar(&specFiles, "spec", nil, "path to a workflow spec document (JSON or YAML); repeatable")
	cmd.Flags().StringVar(&specFormat, "format", "auto", "spec document format: json, yaml, or auto (by file extension)")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func runDecider(ctx context.Context, specFiles []string, specFormat string) error {
	logger := logging.FromContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	registry, err := specloader.NewRegistry(64)
	if err != nil {
		return fmt.Errorf("building workflow registry: %w", err)
	}
	for _, path := range specFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading spec file %s: %w", path, err)
		}
		format, err := resolveFormat(specFormat, path)
		if err != nil {
			return err
		}
		workflows, err := registry.LoadDocument(data, format)
		if err != nil {
			return fmt.Errorf("loading spec file %s: %w", path, err)
		}
		for _, wf := range workflows {
			logger.Info("loaded workflow", "name", wf.Name, "version", wf.Version)
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}
	client := swfclient.NewFromConfig(awsCfg, cfg.EndpointURL)

	loop := &decider.Loop{
		Client:      client,
		Registry:    registry,
		Domain:      cfg.Domain,
		TaskList:    cfg.TaskList,
		Identity:    cfg.Identity,
		PollTimeout: cfg.PollTimeout,
		Logger:      logger,
	}

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsAddr != "" {
		stopMetrics := serveMetrics(runCtx, logger, cfg.MetricsAddr)
		defer stopMetrics()
	}

	logger.Info("starting decider loop", "domain", cfg.Domain, "task_list", cfg.TaskList)
	return loop.Run(runCtx)
}

// serveMetrics starts promhttp.Handler() on addr in the background,
// returning a func that shuts it down. The Decider Loop's own package
// (internal/metrics) only registers collectors; serving them is this
// binary's job, not the loop's.
func serveMetrics(ctx context.Context, logger logging.Logger, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func resolveFormat(specFormat, path string) (specloader.Format, error) {
	switch specFormat {
	case "json":
		return specloader.FormatJSON, nil
	case "yaml", "yml":
		return specloader.FormatYAML, nil
	case "auto":
		return formatFromExtension(path)
	default:
		return 0, fmt.Errorf("unsupported spec format %q", specFormat)
	}
}

func formatFromExtension(path string) (specloader.Format, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return specloader.FormatYAML, nil
	case ".json":
		return specloader.FormatJSON, nil
	default:
		return 0, fmt.Errorf("cannot infer spec format from %q; pass --format", path)
	}
}

const metricsShutdownTimeout = 5 * time.Second
