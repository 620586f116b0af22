package main

import (
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/swarmfield/internal/export"
	"github.com/san-kum/swarmfield/internal/storage"
	"github.com/san-kum/swarmfield/internal/swarm"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tAGENTS\tDURATION\tTICKS\tSTALLS\tGOAL DIST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%d\t%d\t%.3f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Agents),
			run.Duration,
			run.Ticks,
			run.Stalls,
			run.Metrics["goal_distance"],
		)
	}

	return w.Flush()
}

// loadScene rebuilds the drawing of a run: stored setpoints plus the
// obstacles as they were laid out at the start.
func loadScene(st *storage.Store, runID string) (export.Scene, *storage.RunMetadata, []storage.TrajectoryRow, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return export.Scene{}, nil, nil, err
	}
	rows, err := st.LoadTrajectory(runID)
	if err != nil {
		return export.Scene{}, nil, nil, err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return export.Scene{}, nil, nil, err
	}
	obs := cfg.InitialObstacles(rand.New(rand.NewSource(cfg.Seed)))
	title := fmt.Sprintf("%s (%s)", meta.Name, meta.Timestamp.Format("2006-01-02 15:04"))
	return export.FromTrajectory(title, rows, obs), meta, rows, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	scene, meta, rows, err := loadScene(st, runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	var xs, ys, dist []float64
	for _, r := range rows {
		if r.Role != swarm.Leader {
			continue
		}
		xs = append(xs, r.Setpoint.X)
		ys = append(ys, r.Setpoint.Y)
		dist = append(dist, r.Setpoint.XY().Dist(r.Target.XY()))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(xs))

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"leader x (m)", xs},
		{"leader y (m)", ys},
		{"leader to target (m)", dist},
	} {
		if len(series.data) == 0 {
			continue
		}
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if outFile != "" {
		if err := export.SavePlot(outFile, scene); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
	}
	if htmlFile != "" {
		f, err := os.Create(htmlFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteHTML(f, scene); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", htmlFile)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	scene, _, _, err := loadScene(storage.New(dataDir), runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.WriteSVG(f, scene, 800, 800); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportJSON(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}
