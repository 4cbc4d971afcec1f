package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/herd/internal/config"
	"github.com/zeusync/herd/internal/injector"
)

type options struct {
	configPath string
	ticks      int
	listen     string
	logLevel   string
	agents     int
	seed       uint64
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "herd",
		Short: "Grazing herd simulation driven by behavior trees",
		Long: `herd runs a flock of grazers that patrol, eat and flee from a wolf.
Each grazer is ticked by the same behavior tree every frame.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Runs the simulation in real time until interrupted. With --ticks it runs
that many steps as fast as possible and prints the final snapshot as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd, opts)
		},
	}
	runCmd.Flags().IntVar(&opts.ticks, "ticks", 0, "run headless for this many ticks")
	runCmd.Flags().StringVar(&opts.listen, "listen", "", "serve observers on this address (enables the server)")
	runCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	runCmd.Flags().IntVar(&opts.agents, "agents", 0, "number of grazers")
	runCmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for spawning")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := effectiveConfig(cmd, opts)
			if err != nil {
				return err
			}
			b, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	rootCmd.AddCommand(runCmd, configCmd)
	return rootCmd
}

// effectiveConfig loads the config file, if any, and applies the flags that were set.
func effectiveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Server.ListenAddr = opts.listen
		cfg.Server.Enabled = true
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("agents") {
		cfg.Simulation.Agents = opts.agents
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = opts.seed
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, opts *options) error {
	cfg, err := effectiveConfig(cmd, opts)
	if err != nil {
		return err
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.ticks > 0 {
		if err = app.Simulation.RunFor(ctx, opts.ticks, cfg.TickInterval()); err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(app.Simulation.Snapshot())
	}

	if cfg.Server.Enabled {
		if err = app.Server.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = app.Server.Stop() }()
	}
	return app.Simulation.Run(ctx, cfg.Simulation.TickRate)
}
