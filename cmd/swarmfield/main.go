package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/swarmfield/internal/config"
	"github.com/san-kum/swarmfield/internal/logging"
)

var (
	dataDir    string
	configFile string
	preset     string
	duration   float64
	seed       int64
	logLevel   string
	logFormat  string
	realtime   bool
	wsAddr     string
	noSave     bool
	outFile    string
	htmlFile   string
	numRuns    int
	seedStart  int64
	tolerance  float64
)

// main registers the commands and runs the live view when no subcommand is
// given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "swarmfield",
		Short:        "potential-field drone swarm following a human operator",
		SilenceUsage: true,
		RunE:         runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".swarmfield", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log encoding (console, json)")
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (default room)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scripted scenario and store the result",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds (overrides config)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "obstacle seed (overrides config)")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace ticks at the control rate")
	runCmd.Flags().StringVar(&wsAddr, "ws", "", "serve frames over websocket at this address, e.g. :8080")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "fly the swarm from the keyboard in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (default room)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&outFile, "out", "", "also write an image (png, svg, pdf by extension)")
	plotCmd.Flags().StringVar(&htmlFile, "html", "", "also write an interactive html chart")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default <run_id>.svg)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run a scenario over many obstacle seeds",
		Args:  cobra.NoArgs,
		RunE:  benchScenario,
	}
	benchCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	benchCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (default random)")
	benchCmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds (overrides config)")
	benchCmd.Flags().IntVar(&numRuns, "runs", 16, "number of runs")
	benchCmd.Flags().Int64Var(&seedStart, "seed", 1, "first seed")
	benchCmd.Flags().Float64Var(&tolerance, "tolerance", 0.1, "distance counted as reaching the target (m)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and settling analysis of the leader",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&settleTol, "tol", 0.1, "settling band (m)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search field and planner parameters",
		Args:  cobra.NoArgs,
		RunE:  tuneScenario,
	}
	tuneCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	tuneCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (default diagonal_obstacle)")
	tuneCmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds (overrides config)")
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "parameter grid, name=lo:hi:n or name=v1,v2 (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "goal_distance", "metric to minimize")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, benchCmd, analyzeCmd, tuneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the preset, then the config file, then the flags.
// Without either, fallback names the preset to use. The returned name labels
// the run.
func loadConfig(cmd *cobra.Command, fallback string) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "default"
	if preset == "" && configFile == "" {
		preset = fallback
	}
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		name = preset
	}
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	if f := cmd.Flags().Lookup("time"); f != nil && f.Changed {
		cfg.Duration = duration
	}
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed && cmd.Name() == "run" {
		cfg.Seed = seed
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Encoding = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Encoding)
}
