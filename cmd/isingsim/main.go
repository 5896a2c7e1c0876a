package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	rows          int
	cols          int
	temp          float64
	tStart        float64
	tEnd          float64
	tStep         float64
	tList         []float64
	precision     int
	field         float64
	noField       bool
	etol          float64
	stepsPerCycle int
	maxCycles     int
	seed          int64
	workers       int
	replicas      int
	noSave        bool

	bins    int
	series  string
	outFile string
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// main registers the isingsim commands and runs the root command, exiting
// with status 1 on error.
func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "isingsim",
		Short:         "2D Ising model Metropolis-Hastings simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envOr("ISINGSIM_DATA", ".isingsim"), "data directory (env ISINGSIM_DATA)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the convergence loop at one temperature",
		Args:  cobra.NoArgs,
		RunE:  runSingle,
	}
	addSimFlags(runCmd)
	runCmd.Flags().Float64VarP(&temp, "temp", "T", 2.0, "temperature")
	runCmd.Flags().IntVar(&replicas, "replicas", 1, "independent chains at this temperature")
	runCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "replicas evaluated in parallel")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a temperature range and summarise each point",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	addRangeFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "temperatures evaluated in parallel")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "sweep with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	addRangeFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run or sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	distCmd := &cobra.Command{
		Use:   "dist [run_id]",
		Short: "energy distribution of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  distRun,
	}
	distCmd.Flags().IntVar(&bins, "bins", 10, "histogram bins")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a stored run as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored sweep curve or run trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&series, "series", "energy", "energy or magnetization")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s %dx%d etol=%g\n", name, p.Rows, p.Cols, p.Etol)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(runCmd, sweepCmd, liveCmd, listCmd, plotCmd, distCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, initCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", os.Getenv("ISINGSIM_CONFIG"), "config file path (yaml, env ISINGSIM_CONFIG)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&rows, "rows", config.DefaultRows, "lattice rows")
	f.IntVar(&cols, "cols", config.DefaultCols, "lattice columns")
	f.Float64Var(&field, "field", 0, "external field H (enables M/H tracking)")
	f.BoolVar(&noField, "no-field", false, "disable the external field")
	f.Float64Var(&etol, "etol", 1e-4, "convergence tolerance")
	f.IntVar(&stepsPerCycle, "steps", 100, "proposals per equilibration cycle")
	f.IntVar(&maxCycles, "max-cycles", 1_000_000, "cycle cap before reporting non-convergence")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.BoolVar(&noSave, "no-save", false, "do not store the result")
}

func addRangeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&tStart, "start", config.DefaultTStart, "first temperature")
	f.Float64Var(&tEnd, "end", config.DefaultTEnd, "last temperature")
	f.Float64Var(&tStep, "step", config.DefaultTStep, "temperature increment")
	f.Float64SliceVar(&tList, "list", nil, "explicit temperatures (overrides the range)")
	f.IntVar(&precision, "precision", config.DefaultPrecision, "decimals kept after each increment")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	if changed("rows") {
		cfg.Rows = rows
	}
	if changed("cols") {
		cfg.Cols = cols
	}
	if changed("field") {
		h := field
		cfg.Field = &h
	}
	if noField {
		cfg.Field = nil
	}
	if changed("etol") {
		cfg.Etol = etol
	}
	if changed("steps") {
		cfg.StepsPerCycle = stepsPerCycle
	}
	if changed("max-cycles") {
		cfg.MaxCycles = maxCycles
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("workers") {
		cfg.Workers = workers
	}
	if changed("start") {
		cfg.Temperature.Start = tStart
	}
	if changed("end") {
		cfg.Temperature.End = tEnd
	}
	if changed("step") {
		cfg.Temperature.Step = tStep
	}
	if changed("precision") {
		cfg.Temperature.Precision = precision
	}
	if changed("list") {
		cfg.Temperature.List = tList
	}
	if changed("temp") {
		cfg.Temperature.List = []float64{temp}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("resolved config", "rows", cfg.Rows, "cols", cfg.Cols, "field", cfg.FieldValue(),
		"etol", cfg.Etol, "steps_per_cycle", cfg.StepsPerCycle, "seed", cfg.Seed)
	return cfg, nil
}
