package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/intentmesh/config"
)

type rootFlags struct {
	configPath string
	timeout    time.Duration
	parallel   bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "intentmesh",
		Short: "Route free-text requests to domain handlers",
		Long: `intentmesh splits a request such as "Add 2 and 3 and tell me the weather
in Paris" into domains, runs one handler per domain and prints the merged answer.

Configuration is read from --config, ./intentmesh.yaml or
$XDG_CONFIG_HOME/intentmesh/intentmesh.yaml, and INTENTMESH_* environment
variables override both.

With no arguments, starts an interactive prompt.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to a config file")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Per-request dispatch timeout (overrides config)")
	pf.BoolVar(&flags.parallel, "parallel", false, "Run handlers concurrently")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	cmd.AddCommand(newAskCmd(flags))
	cmd.AddCommand(newReplCmd(flags))
	cmd.AddCommand(newDomainsCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Dispatch.Timeout = flags.timeout
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Dispatch.Mode = "sequential"
		if flags.parallel {
			cfg.Dispatch.Mode = "parallel"
		}
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRuntime builds the router for a command. Logs go to the command's
// error stream.
func loadRuntime(cmd *cobra.Command, flags *rootFlags) (*config.Runtime, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	rt, err := config.Build(cfg, config.NewLogger(cfg.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return nil, fmt.Errorf("building router: %w", err)
	}
	return rt, nil
}
