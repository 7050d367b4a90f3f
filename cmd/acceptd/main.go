// Package main is the CLI entry point for acceptd.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/acceptd/acceptd/internal/config"
	"github.com/acceptd/acceptd/internal/daemon"
	"github.com/acceptd/acceptd/internal/infra"
	"github.com/acceptd/acceptd/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "acceptd",
	Short: "Auto-accept watcher for recurring confirmation dialogs",
	Long: `acceptd watches the UI element tree of a target application's windows
for buttons matching configured name patterns (Accept…, Confirm…) and
activates them automatically, preferring programmatic invocation over
moving the mouse. It is meant to run unattended in the background.`,
	Version: Version,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the watch loop in the foreground",
	Long: `Runs the watch loop until interrupted. Every poll interval, top-level
windows of the configured class are searched for an Accept button; a
successful accept is followed by a Confirm search in the same window.
One timestamped line per significant event is written to stdout.`,
	RunE: runWatch,
}

var startCmd = &cobra.Command{
	Use:   "start [watch flags]",
	Short: "Start the watcher as a detached background process",
	Long: `Spawns "acceptd watch" detached from this terminal and returns.
Any arguments are forwarded to the watch command unchanged.`,
	DisableFlagParsing: true,
	RunE:               runStart,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single watch cycle immediately",
	Long:  `Performs exactly one cycle (enumerate, search, activate) and reports what happened.`,
	RunE:  runScan,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the watcher and the target application are running",
	RunE:  runStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

var jsonOutput bool

func init() {
	for _, c := range []*cobra.Command{watchCmd, scanCmd} {
		addWatchFlags(c)
	}
	statusCmd.Flags().String("config", "", "Path to YAML config file")
	statusCmd.Flags().String("process", "", "Target application process name")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(windowsCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(versionCmd)
}

// addWatchFlags registers the shared detection flags. Defaults shown in
// help come from the config package; flags override the config file.
func addWatchFlags(c *cobra.Command) {
	defaults := config.Default()
	c.Flags().String("config", "", "Path to YAML config file")
	c.Flags().String("pattern", defaults.AcceptPattern, "Accept button name regex pattern")
	c.Flags().String("confirm-pattern", defaults.ConfirmPattern, "Confirm button name regex pattern")
	c.Flags().Duration("delay", defaults.PreClickDelay.Std(), "Delay between finding a button and clicking it")
	c.Flags().Duration("interval", defaults.PollInterval.Std(), "Polling interval between cycles")
	c.Flags().Duration("settle", defaults.SettleDelay.Std(), "Settle delay after an activation")
	c.Flags().String("class", defaults.WindowClass, "Top-level window class of the target application")
	c.Flags().Int("depth", defaults.SearchDepth, "Maximum subtree search depth")
	c.Flags().String("process", defaults.ProcessName, "Skip cycles while this process is not running (empty: always scan)")
}

// loadConfig merges the config file with any explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("pattern") {
		cfg.AcceptPattern, _ = cmd.Flags().GetString("pattern")
	}
	if cmd.Flags().Changed("confirm-pattern") {
		cfg.ConfirmPattern, _ = cmd.Flags().GetString("confirm-pattern")
	}
	if cmd.Flags().Changed("delay") {
		d, _ := cmd.Flags().GetDuration("delay")
		cfg.PreClickDelay = config.Duration(d)
	}
	if cmd.Flags().Changed("interval") {
		d, _ := cmd.Flags().GetDuration("interval")
		cfg.PollInterval = config.Duration(d)
	}
	if cmd.Flags().Changed("settle") {
		d, _ := cmd.Flags().GetDuration("settle")
		cfg.SettleDelay = config.Duration(d)
	}
	if cmd.Flags().Changed("class") {
		cfg.WindowClass, _ = cmd.Flags().GetString("class")
	}
	if cmd.Flags().Changed("depth") {
		cfg.SearchDepth, _ = cmd.Flags().GetInt("depth")
	}
	if cmd.Flags().Changed("process") {
		cfg.ProcessName, _ = cmd.Flags().GetString("process")
	}

	return cfg, cfg.Validate()
}

// buildWatcher wires the full stack for the watch and scan commands.
func buildWatcher(cmd *cobra.Command, logger *zap.Logger) (*daemon.Watcher, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}

	rules, err := cfg.Rules()
	if err != nil {
		return nil, cfg, err
	}

	au, err := infra.NewAutomation()
	if err != nil {
		return nil, cfg, err
	}

	cascade := usecase.NewCascade(au, usecase.CascadeConfig{
		PreClickDelay: cfg.PreClickDelay.Std(),
		SettleDelay:   cfg.SettleDelay.Std(),
	}, logger)

	watcherConfig := daemon.WatcherConfig{
		WindowClass:  cfg.WindowClass,
		ProcessName:  cfg.ProcessName,
		SearchDepth:  cfg.SearchDepth,
		PollInterval: cfg.PollInterval.Std(),
		SettleDelay:  cfg.SettleDelay.Std(),
	}

	watcher := daemon.NewWatcher(watcherConfig, au, rules, cascade, infra.NewProcessManager(), logger)
	return watcher, cfg, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	watcher, cfg, err := buildWatcher(cmd, logger)
	if err != nil {
		return err
	}

	logger.Info("acceptd started",
		zap.String("version", Version),
		zap.String("accept_pattern", cfg.AcceptPattern),
		zap.String("confirm_pattern", cfg.ConfirmPattern),
		zap.Duration("pre_click_delay", cfg.PreClickDelay.Std()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runStart(cmd *cobra.Command, args []string) error {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return cmd.Help()
		}
	}

	pid, err := daemon.StartDetached(args...)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	fmt.Printf("acceptd watcher started (pid %d)\n", pid)
	fmt.Println("It will keep running after this terminal closes.")
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	watcher, _, err := buildWatcher(cmd, logger)
	if err != nil {
		return err
	}

	result, err := watcher.RunCycle(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Printf("\nScanned %d target window(s)\n", result.WindowsScanned)
	if !result.Handled() {
		fmt.Println("Nothing to accept.")
		return nil
	}

	fmt.Printf("Handled window: %s\n", result.Window)
	if result.Accept != nil {
		fmt.Printf("  Accept:  %s", result.Accept.Outcome)
		if result.Accept.Succeeded() {
			fmt.Printf(" (%s, via %s)", result.Accept.Control, result.Accept.Strategy)
		}
		fmt.Println()
	}
	if result.Confirm != nil {
		fmt.Printf("  Confirm: %s", result.Confirm.Outcome)
		if result.Confirm.Succeeded() {
			fmt.Printf(" (%s, via %s)", result.Confirm.Control, result.Confirm.Strategy)
		}
		fmt.Println()
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("process") {
		cfg.ProcessName, _ = cmd.Flags().GetString("process")
	}

	pm := infra.NewProcessManager()

	fmt.Println("\n=== acceptd Status ===")

	pids, err := pm.FindByName("acceptd")
	running := 0
	if err == nil {
		for _, pid := range pids {
			if pid != pm.GetCurrentPID() {
				running++
			}
		}
	}
	if running > 0 {
		fmt.Printf("Watcher: RUNNING (%d process(es))\n", running)
	} else {
		fmt.Println("Watcher: NOT RUNNING")
		fmt.Println("\nRun 'acceptd start' to watch in the background.")
	}

	if cfg.ProcessName != "" {
		targets, err := pm.FindByName(cfg.ProcessName)
		if err == nil && len(targets) > 0 {
			fmt.Printf("Target app %q: running (%d process(es))\n", cfg.ProcessName, len(targets))
		} else {
			fmt.Printf("Target app %q: not running\n", cfg.ProcessName)
		}
	}

	fmt.Printf("\nAccept pattern:  %s\n", cfg.AcceptPattern)
	fmt.Printf("Confirm pattern: %s\n", cfg.ConfirmPattern)
	fmt.Printf("Window class:    %s\n", cfg.WindowClass)
	fmt.Println("======================")
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
		return
	}
	fmt.Printf("acceptd %s (commit %s, built %s)\n", Version, Commit, BuildTime)
}

// createLogger writes one timestamped line per event to stdout, which is
// where the hosting extension collects the watcher's output.
func createLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
