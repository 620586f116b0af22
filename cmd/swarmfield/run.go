package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/swarmfield/internal/config"
	"github.com/san-kum/swarmfield/internal/metrics"
	"github.com/san-kum/swarmfield/internal/sim"
	"github.com/san-kum/swarmfield/internal/storage"
	"github.com/san-kum/swarmfield/internal/swarm"
	"github.com/san-kum/swarmfield/internal/telemetry"
	"github.com/san-kum/swarmfield/internal/viz"
)

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	world, err := sim.NewScriptedWorld(cfg, logger)
	if err != nil {
		return err
	}
	loop, err := sim.NewLoop(cfg, world, logger)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		loop.AddMetric(m)
	}
	rec := telemetry.NewRecorder(cfg.TraceLimit)
	loop.AddObserver(rec)

	if wsAddr != "" {
		hub := telemetry.NewHub(logger)
		defer hub.Close()
		loop.AddObserver(hub)

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: wsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("telemetry server failed", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("streaming frames", zap.String("addr", wsAddr), zap.String("path", "/ws"))
	}

	fmt.Printf("running %s: %d agents, %.1fs at %.0f Hz...\n", name, len(cfg.Agents), cfg.Duration, cfg.Rate)
	result, err := loop.Run(ctx, realtime)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		fmt.Println("interrupted")
	}

	fmt.Printf("completed in %v\n", result.Duration)
	fmt.Printf("ticks: %d  stalls: %d  errors: %d\n", result.Ticks, result.Stalls, len(result.Errors))
	printMetrics(result.Metrics)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, cfg, result, rec.History())
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, k := range names {
		fmt.Printf("  %-16s %.6f\n", k, m[k])
	}
}

// runLive flies the swarm from the keyboard. Logs would tear the full
// screen view, so the loop logs nothing.
func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, "room")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pilot := sim.NewKeyboard(cfg.Sim.HumanStart)
	world, err := sim.NewWorld(cfg, pilot, zap.NewNop())
	if err != nil {
		return err
	}
	loop, err := sim.NewLoop(cfg, world, zap.NewNop())
	if err != nil {
		return err
	}
	loop.Takeoff(ctx)

	return viz.Run(viz.NewModel(ctx, loop, pilot, name, cfg.Frame().Extent(), cfg.Rate))
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, "random")
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens := swarm.NewEnsemble(cfg, scriptedFactory(logger), numRuns, seedStart)
	ens.Tolerance = tolerance

	fmt.Printf("benchmarking %s over %d seeds\n\n", name, numRuns)
	start := time.Now()
	runs, err := ens.Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tREACHED\tDISTANCE\tCLEARANCE\tPATH\tSTALLS\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%v\t%.3f\t%s\t%.2f\t%d\t%v\n",
			r.Seed,
			r.Reached,
			r.Distance,
			formatClearance(r.Result.Metrics["min_clearance"]),
			r.Result.Metrics["path_length"],
			r.Result.Stalls,
			r.Result.Duration.Round(time.Millisecond),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nsuccess rate: %.1f%%  (%v total)\n", 100*swarm.SuccessRate(runs), time.Since(start).Round(time.Millisecond))
	return nil
}

// scriptedFactory builds scripted worlds that record the standard metrics.
// Per-run info logs are dropped so parallel runs stay readable.
func scriptedFactory(logger *zap.Logger) swarm.Factory {
	build := sim.Factory(logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	return func(c *config.Config) (*swarm.Loop, error) {
		loop, err := build(c)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Standard() {
			loop.AddMetric(m)
		}
		return loop, nil
	}
}

func formatClearance(v float64) string {
	if math.IsInf(v, 1) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}
