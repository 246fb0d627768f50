package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/graphx/config"
	"github.com/kbukum/graphx/dag"
	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/logger"
	"github.com/kbukum/graphx/observability"
	"github.com/kbukum/graphx/version"
)

// app carries flag values and the state set up before a command runs.
type app struct {
	configFile string
	logLevel   string
	runID      string
	verbose    bool
	noColor    bool

	cfg      config.Config
	metrics  *observability.Metrics
	shutdown []func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "graphx",
		Short:         "graphx runs dataflow graphs over JSON-lines record files",
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default: ./graphx.yml, ./config/graphx.yml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, disabled")
	flags.StringVar(&a.runID, "run-id", "", "run identifier (UUID); generated when empty")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every chain computation at info level")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRunCmd(a),
		newJobCmd(a),
		newPlanCmd(),
		newListCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg := config.Default()
	var opts []config.LoaderOption
	if a.configFile != "" {
		if _, err := os.Stat(a.configFile); err != nil {
			return errors.InvalidInput("config", err.Error()).WithCause(err)
		}
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if err := config.LoadConfig("graphx", &cfg, opts...); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.verbose {
		cfg.Engine.Verbose = true
	}
	if a.noColor {
		cfg.Logging.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return errors.InvalidInput("config", err.Error()).WithCause(err)
	}
	if cfg.Logging.NoColor {
		color.NoColor = true
	}
	logger.Init(cfg.Logging)
	a.cfg = cfg

	if cfg.Telemetry.Enabled {
		return a.initTelemetry(ctx)
	}
	return nil
}

func (a *app) initTelemetry(ctx context.Context) error {
	tc := a.cfg.Telemetry
	tel, err := observability.Init(ctx, observability.Config{
		ServiceName:    a.cfg.Name,
		ServiceVersion: version.Get().Short(),
		Environment:    a.cfg.Environment,
		Endpoint:       tc.Endpoint,
		Insecure:       tc.Insecure,
		SampleRate:     tc.SampleRate,
		Interval:       tc.Interval,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	a.shutdown = append(a.shutdown, tel.Shutdown)
	a.metrics = tel.Metrics
	return nil
}

// close flushes telemetry exporters.
func (a *app) close(ctx context.Context) error {
	var first error
	for _, fn := range a.shutdown {
		if err := fn(context.WithoutCancel(ctx)); err != nil && first == nil {
			first = err
		}
	}
	a.shutdown = nil
	return first
}

func (a *app) engine() *dag.Engine {
	opts := []dag.Option{
		dag.WithLogger(logger.Get("dag")),
		dag.WithVerbose(a.cfg.Engine.Verbose),
		dag.WithMemoRelease(a.cfg.Engine.ReleaseMemo),
	}
	if a.metrics != nil {
		opts = append(opts, dag.WithTelemetry(a.metrics))
	}
	return dag.NewEngine(opts...)
}

func (a *app) runOptions(job string) ([]dag.RunOption, error) {
	opts := []dag.RunOption{dag.WithJob(job)}
	if a.runID != "" {
		id, err := uuid.Parse(a.runID)
		if err != nil {
			return nil, errors.InvalidInput("run-id", err.Error())
		}
		opts = append(opts, dag.WithRunID(id))
	}
	return opts, nil
}
