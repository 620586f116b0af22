package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/swarmfield/internal/analysis"
	"github.com/san-kum/swarmfield/internal/optim"
	"github.com/san-kum/swarmfield/internal/storage"
	"github.com/san-kum/swarmfield/internal/swarm"
)

var (
	settleTol  float64
	tuneParams []string
	tuneMetric string
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	var dist []float64
	for _, r := range rows {
		if r.Role == swarm.Leader {
			dist = append(dist, r.Setpoint.XY().Dist(r.Target.XY()))
		}
	}
	dt := 1 / meta.Rate
	freqs, amp, err := analysis.Spectrum(dist, dt)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Name)
	f, a := analysis.Dominant(freqs, amp)
	fmt.Printf("dominant frequency: %.3f Hz (amplitude %.4f m)\n", f, a)
	if ts, ok := analysis.SettlingTime(dist, dt, settleTol); ok {
		fmt.Printf("settling time (%.2f m): %.2fs\n", settleTol, ts)
	} else {
		fmt.Printf("settling time (%.2f m): not settled\n", settleTol)
	}
	fmt.Printf("ripple (last 20%%): %.4f m\n\n", analysis.Ripple(dist, 0.2))

	plotData := amp[1:]
	if len(plotData) > 200 {
		plotData = plotData[:200]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("amplitude spectrum (leader to target)"),
	)
	fmt.Println(graph)
	return nil
}

// parseRange reads name=lo:hi:n, or name=v1,v2,... for explicit values.
func parseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad --param %q: want name=lo:hi:n or name=v1,v2", s)
	}
	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("bad --param range %q", spec)
		}
		return name, optim.Linspace(lo, hi, n), nil
	}
	var vals []float64
	for _, p := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param value %q: %w", p, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

func tuneScenario(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, "diagonal_obstacle")
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required (available: %s)", strings.Join(optim.ParamNames(), ", "))
	}
	var names []string
	var ranges [][]float64
	for _, p := range tuneParams {
		n, r, err := parseRange(p)
		if err != nil {
			return err
		}
		names = append(names, n)
		ranges = append(ranges, r)
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	metric := func(r *swarm.Result) float64 {
		v, ok := r.Metrics[tuneMetric]
		if !ok {
			return math.NaN()
		}
		return v
	}

	fmt.Printf("tuning %s: %d grid points, minimizing %s\n\n", name, g.Size(), tuneMetric)
	best, val, trials, err := g.Search(cmd.Context(), cfg, scriptedFactory(logger), metric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(tuneMetric))
	for _, tr := range trials {
		cols := make([]string, 0, len(names)+1)
		for _, n := range names {
			cols = append(cols, strconv.FormatFloat(tr.Params[n], 'g', 6, 64))
		}
		if tr.Err != nil {
			cols = append(cols, "error: "+tr.Err.Error())
		} else {
			cols = append(cols, strconv.FormatFloat(tr.Value, 'f', 4, 64))
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("\nbest %s = %.4f at", tuneMetric, val)
	for _, k := range keys {
		fmt.Printf(" %s=%g", k, best[k])
	}
	fmt.Println()
	return nil
}
