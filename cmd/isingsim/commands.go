package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/storage"
	"github.com/san-kum/isingsim/internal/sweep"
	"github.com/san-kum/isingsim/internal/viz"
)

func metadata(p *ising.Params, rows, cols int, seed int64) storage.RunMetadata {
	return storage.RunMetadata{
		Rows:          rows,
		Cols:          cols,
		Seed:          seed,
		Temperature:   p.Temperature,
		Field:         p.Field,
		Etol:          p.Tolerance,
		StepsPerCycle: p.StepsPerCycle,
	}
}

func runSingle(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	t := temp
	if !cmd.Flags().Changed("temp") && len(cfg.Temperature.List) > 0 {
		t = cfg.Temperature.List[0]
	}
	params := cfg.Params(t)

	if replicas > 1 {
		return runEnsemble(cmd, cfg, t)
	}

	src := ising.NewSource(cfg.Seed)
	lat, err := ising.NewLattice(cfg.Rows, cfg.Cols, src)
	if err != nil {
		return err
	}

	sim := ising.New()
	sim.AddObserver(ising.ObserverFunc(func(st ising.CycleStats) {
		if st.Cycle%1000 == 0 {
			logger.Debug("cycle", "n", st.Cycle, "energy", st.Energy, "cumulative", st.Cumulative)
		}
	}))

	fmt.Printf("running %dx%d lattice at T=%g...\n", cfg.Rows, cfg.Cols, t)
	start := time.Now()

	result, err := sim.Run(cmd.Context(), lat, src, params)
	elapsed := time.Since(start)

	converged := err == nil
	var nc *ising.NonConvergenceError
	switch {
	case err == nil:
	case errors.As(err, &nc):
		fmt.Printf("warning: no convergence after %d cycles\n", nc.Cycles)
	case result != nil:
		fmt.Printf("interrupted after %d cycles\n", result.Cycles)
	default:
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("cycles:       %d\n", result.Cycles)
	fmt.Printf("mean energy:  %.6f\n", result.Mean)
	fmt.Printf("acceptance:   %.2f%%\n", result.AcceptanceRate()*100)
	if params.TracksMagnetization() {
		fmt.Printf("mean M/H:     %.6f\n", analysis.Mean(result.Magnetizations))
	}
	if s, serr := analysis.Summarize(result.Energies); serr == nil {
		fmt.Printf("dispersion:   %.6f\n", s.StdDev)
	}

	if !noSave && len(result.Energies) > 0 {
		st := storage.New(dataDir)
		if ierr := st.Init(); ierr != nil {
			return ierr
		}
		runID, serr := st.SaveRun(metadata(&params, cfg.Rows, cfg.Cols, cfg.Seed), result, converged)
		if serr != nil {
			return serr
		}
		fmt.Printf("saved: %s\n", runID)
	}

	if err != nil && nc == nil {
		return err
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, cfg *config.Config, t float64) error {
	s := cfg.Sweep()
	fmt.Printf("running %d replicas of a %dx%d lattice at T=%g...\n", replicas, cfg.Rows, cfg.Cols, t)
	start := time.Now()

	e, err := s.Ensemble(cmd.Context(), t, replicas, cfg.Workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPLICA\tSEED\tT\tENERGY\tM/H\tSTDDEV\tCYCLES\tACCEPT\tTIME\tSTATUS")
	for i, p := range e.Replicas {
		fmt.Fprintf(w, "%d\t%d\t", i, cfg.Seed+int64(i))
		writePointRow(w, p, 0)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	fmt.Printf("ensemble energy: %.6f +/- %.6f (%d failed)\n", e.Energy, e.StdErr, e.Failed)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s := cfg.Sweep()
	temps, err := s.Range.Temperatures()
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %d temperatures on a %dx%d lattice...\n", len(temps), cfg.Rows, cfg.Cols)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tENERGY\tM/H\tSTDDEV\tCYCLES\tACCEPT\tTIME\tSTATUS")

	start := time.Now()
	var points []sweep.Point
	var runErr error
	if cfg.Workers > 1 {
		points, runErr = s.RunParallel(cmd.Context(), cfg.Workers)
		for _, p := range points {
			writePointRow(w, p, 0)
		}
	} else {
		last := time.Now()
		for p := range s.Points(cmd.Context()) {
			writePointRow(w, p, time.Since(last))
			last = time.Now()
			points = append(points, p)
		}
		runErr = cmd.Context().Err()
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n\n", time.Since(start))

	printCurves(sweep.Curve(points))

	if !noSave && len(points) > 0 {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.SaveSweep(metadata(&s.Params, cfg.Rows, cfg.Cols, cfg.Seed), points)
		if err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", runID)
	}
	return runErr
}

func writePointRow(w *tabwriter.Writer, p sweep.Point, elapsed time.Duration) {
	status := "ok"
	switch {
	case p.Err != nil && errors.Is(p.Err, ising.ErrNonConvergence):
		status = "no convergence"
	case p.Err != nil:
		status = p.Err.Error()
	}
	took := "-"
	if elapsed > 0 {
		took = elapsed.Round(time.Millisecond).String()
	}
	fmt.Fprintf(w, "%.2f\t%.4f\t%.4f\t%.4f\t%d\t%.1f%%\t%s\t%s\n",
		p.Temperature, p.Energy, p.Magnetization, p.StdDev, p.Cycles, p.AcceptanceRate*100, took, status)
}

func printCurves(temps, energies, mags []float64) {
	if len(temps) < 2 {
		return
	}
	fmt.Println(asciigraph.Plot(energies,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("mean energy, T %.2f..%.2f", temps[0], temps[len(temps)-1])),
	))
	fmt.Println()

	nonzero := false
	for _, m := range mags {
		if m != 0 {
			nonzero = true
			break
		}
	}
	if nonzero {
		fmt.Println(asciigraph.Plot(mags,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("mean M/H"),
		))
		fmt.Println()
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s := cfg.Sweep()

	title := fmt.Sprintf("ising %dx%d", cfg.Rows, cfg.Cols)
	model, err := viz.NewModel(cmd.Context(), s, title)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := final.(viz.Model)
	if !ok {
		return nil
	}
	points := m.Points()
	if m.Interrupted() {
		fmt.Printf("interrupted after %d temperatures\n", len(points))
	}
	if noSave || len(points) == 0 {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveSweep(metadata(&s.Params, cfg.Rows, cfg.Cols, cfg.Seed), points)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", runID)
	return nil
}

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
	fmt.Fprintln(w, "ID\tKIND\tTIME\tLATTICE\tT\tH\tCYCLES/POINTS\tCONVERGED")

	for _, run := range runs {
		count := run.Cycles
		t := fmt.Sprintf("%.2f", run.Temperature)
		if run.Kind == storage.KindSweep {
			count = run.Points
			t = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%g\t%d\t%v\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows, run.Cols,
			t,
			run.Field,
			count,
			run.Converged,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("lattice: %dx%d\n", meta.Rows, meta.Cols)

	if meta.Kind == storage.KindSweep {
		rows, err := st.LoadSweep(runID)
		if err != nil {
			return err
		}
		fmt.Printf("points: %d\n\n", len(rows))
		var temps, energies, mags []float64
		for _, r := range rows {
			if r.Cycles == 0 {
				continue
			}
			temps = append(temps, r.Temperature)
			energies = append(energies, r.Energy)
			mags = append(mags, r.Magnetization)
		}
		if len(temps) < 2 {
			return fmt.Errorf("no data to plot")
		}
		printCurves(temps, energies, mags)
		return nil
	}

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj.Energies) == 0 {
		return fmt.Errorf("no data to plot")
	}
	fmt.Printf("T: %g\n", meta.Temperature)
	fmt.Printf("cycles: %d\n\n", len(traj.Energies))

	fmt.Println(asciigraph.Plot(traj.Energies,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("cycle-average energy"),
	))
	fmt.Println()
	if len(traj.Magnetizations) > 0 {
		fmt.Println(asciigraph.Plot(traj.Magnetizations,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("M/H"),
		))
		fmt.Println()
	}
	return nil
}

func distRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if meta.Kind != storage.KindRun {
		return fmt.Errorf("%s is a %s; dist needs a single run", runID, meta.Kind)
	}

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	dist, err := analysis.NewDistribution(traj.Energies, bins)
	if err != nil {
		return err
	}

	s := dist.Summary
	fmt.Printf("energy distribution at T=%g (%d cycles)\n", meta.Temperature, s.N)
	fmt.Printf("  mean:       %.6f\n", s.Mean)
	fmt.Printf("  dispersion: %.6f\n", s.StdDev)
	fmt.Printf("  median:     %.6f\n", s.Median)
	fmt.Printf("  range:      [%.6f, %.6f]\n", s.Min, s.Max)
	fmt.Printf("  iqr:        [%.6f, %.6f]\n", s.Q25, s.Q75)
	if tau, err := analysis.IntegratedTime(traj.Energies); err == nil {
		fmt.Printf("  tau_int:    %.2f cycles (%.0f effective samples)\n", tau, float64(s.N)/(2*tau))
	}
	fmt.Println()

	peak := 0.0
	for _, c := range dist.Counts {
		peak = max(peak, c)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CENTER\tCOUNT\tDENSITY\tNORMAL\t")
	for i, c := range dist.Counts {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", int(c/peak*40))
		}
		normal := 0.0
		if len(dist.Normal) > i {
			normal = dist.Normal[i]
		}
		fmt.Fprintf(w, "%.4f\t%.0f\t%.4f\t%.4f\t%s\n", dist.Centers[i], c, dist.Density[i], normal, bar)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := export.Collect(st, args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return export.WriteJSON(os.Stdout, data)
	}
	if err := export.ExportJSON(outFile, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := export.Collect(st, args[0])
	if err != nil {
		return err
	}

	if data.Metadata.Kind == storage.KindSweep {
		fmt.Println("temperature,energy,magnetization,stddev,cycles,acceptance,converged")
		for _, r := range data.Sweep {
			fmt.Printf("%g,%g,%g,%g,%d,%g,%v\n",
				r.Temperature, r.Energy, r.Magnetization, r.StdDev, r.Cycles, r.AcceptanceRate, r.Converged)
		}
		return nil
	}

	track := len(data.Magnetizations) > 0
	if track {
		fmt.Println("cycle,energy,magnetization")
	} else {
		fmt.Println("cycle,energy")
	}
	for i, e := range data.Energies {
		if track && i < len(data.Magnetizations) {
			fmt.Printf("%d,%g,%g\n", i, e, data.Magnetizations[i])
			continue
		}
		fmt.Printf("%d,%g\n", i, e)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := export.Collect(st, args[0])
	if err != nil {
		return err
	}

	var xs, ys []float64
	var caption string
	switch {
	case data.Metadata.Kind == storage.KindSweep:
		for _, r := range data.Sweep {
			if r.Cycles == 0 {
				continue
			}
			xs = append(xs, r.Temperature)
			if series == "magnetization" {
				ys = append(ys, r.Magnetization)
			} else {
				ys = append(ys, r.Energy)
			}
		}
		caption = fmt.Sprintf("%s vs T (%dx%d)", series, data.Metadata.Rows, data.Metadata.Cols)
	case series == "magnetization":
		ys = data.Magnetizations
		caption = fmt.Sprintf("M/H per cycle, T=%g", data.Metadata.Temperature)
	default:
		ys = data.Energies
		caption = fmt.Sprintf("energy per cycle, T=%g", data.Metadata.Temperature)
	}
	if series != "energy" && series != "magnetization" {
		return fmt.Errorf("unknown series: %s (energy, magnetization)", series)
	}
	if xs == nil {
		xs = make([]float64, len(ys))
		for i := range xs {
			xs[i] = float64(i)
		}
	}

	svg := export.CurveToSVG(export.Zip(xs, ys), 800, 400, "#00d7ff", caption)
	if svg == "" {
		return fmt.Errorf("not enough data for a chart")
	}

	if outFile == "" {
		fmt.Print(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}
