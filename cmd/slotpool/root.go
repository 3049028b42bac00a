package main

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/utkarsh5026/slotpool/internal/config"
	"github.com/utkarsh5026/slotpool/internal/cpu"
)

// globalFlags are shared by every subcommand. Values set on the command line
// win over the config file.
type globalFlags struct {
	configFile string
	name       string
	workers    int
	logLevel   string
	logFile    string
	lockThread bool
	pinCPU     bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&g.configFile, "config", "c", "", "path to a YAML config file")
	fs.StringVar(&g.name, "name", "", "pool name used in logs and metrics")
	fs.IntVarP(&g.workers, "workers", "w", 0, "number of worker slots")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&g.logFile, "log-file", "", "write logs to this file with rotation instead of stderr")
	fs.BoolVar(&g.lockThread, "lock-threads", false, "run each worker on its own OS thread")
	fs.BoolVar(&g.pinCPU, "pin-cpu", false, "pin each worker thread to a CPU core (Linux only)")
}

// resolve loads the config file, if any, and applies explicitly set flags.
func (g *globalFlags) resolve(fs *flag.FlagSet) (*config.File, error) {
	cfg := config.Default()
	if g.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(g.configFile); err != nil {
			return nil, err
		}
	}

	if fs.Changed("name") {
		cfg.Pool.Name = g.name
	}
	if fs.Changed("workers") {
		cfg.Pool.Workers = g.workers
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if fs.Changed("log-file") {
		cfg.Log.File = g.logFile
	}
	if fs.Changed("lock-threads") {
		cfg.Pool.LockThread = g.lockThread
	}
	if fs.Changed("pin-cpu") {
		cfg.Pool.PinCPU = g.pinCPU
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if cfg.Pool.PinCPU && !cpu.PinningSupported() {
		return nil, fmt.Errorf("cpu pinning is not supported on %s", runtime.GOOS)
	}
	return cfg, nil
}

// session is what a subcommand needs once settings are resolved.
type session struct {
	cfg    *config.File
	logger *slog.Logger
	out    io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "slotpool",
		Short: "Fixed-capacity worker pool with per-slot cancellation",
		Long: `slotpool drives a pool of N workers, each bound to one job slot.
Jobs are canceled by slot index; shutdown drains running jobs.`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	g.register(root.PersistentFlags())

	// start resolves settings and builds the logger for a subcommand run.
	start := func(cmd *cobra.Command, run func(*session) error) error {
		cfg, err := g.resolve(cmd.Flags())
		if err != nil {
			return err
		}

		logger, closeLog, err := newLogger(cfg.Log, stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		return run(&session{cfg: cfg, logger: logger, out: cmd.OutOrStdout()})
	}

	root.AddCommand(newDemoCmd(start), newBenchCmd(start))
	return root
}

type starter func(cmd *cobra.Command, run func(*session) error) error
