package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/pavshv/mdof/internal/analysis"
	"github.com/pavshv/mdof/internal/assembly"
	"github.com/pavshv/mdof/internal/config"
	"github.com/pavshv/mdof/internal/export"
	"github.com/pavshv/mdof/internal/input"
	"github.com/pavshv/mdof/internal/logging"
	"github.com/pavshv/mdof/internal/metrics"
	"github.com/pavshv/mdof/internal/model"
	"github.com/pavshv/mdof/internal/sim"
	"github.com/pavshv/mdof/internal/solver"
	"github.com/pavshv/mdof/internal/storage"
	"github.com/pavshv/mdof/internal/sweep"
	"github.com/pavshv/mdof/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	logFile    string
	dt         float64
	tmax       float64
	integrator string
	preset     string
	fullAnim   bool
	settleBand float64
	// Playback
	frameRate int
	gifPath   string
	// Selection for plot/analyze
	bodyID int
	// Chart output
	outPath string
	// Sweep
	sweepParam   string
	sweepBody    int
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	sweepWorkers int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdof",
		Short: "multi degree of freedom mechanical system simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Setup(logLevel, logFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdof", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "mirror log output to a file")

	runCmd := &cobra.Command{
		Use:   "run [input]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&tmax, "tmax", config.DefaultTMax, "end time")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	runCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")
	runCmd.Flags().Float64Var(&settleBand, "settle", 0, "displacement band for the settling metric (0 = off)")

	animateCmd := &cobra.Command{
		Use:   "animate [input]",
		Short: "run and replay in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  animateRun,
	}
	animateCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	animateCmd.Flags().Float64Var(&tmax, "tmax", config.DefaultTMax, "end time")
	animateCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	animateCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")
	animateCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	animateCmd.Flags().StringVar(&gifPath, "gif", "simulation.gif", "gif recording target")
	animateCmd.Flags().BoolVar(&fullAnim, "full", false, "draw coupling lines and trails")

	validateCmd := &cobra.Command{
		Use:   "validate [input]",
		Short: "parse and assemble without integrating",
		Args:  cobra.MaximumNArgs(1),
		RunE:  validateInput,
	}
	validateCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")

	modesCmd := &cobra.Command{
		Use:   "modes [input]",
		Short: "natural frequencies and mode shapes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  modalAnalysis,
	}
	modesCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot displacement history",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&bodyID, "body", 0, "plot a single body (0 = all)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyID, "body", 1, "body whose series is analyzed")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "displacement-velocity portrait of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}
	phaseCmd.Flags().IntVar(&bodyID, "body", 1, "body whose trajectory is drawn")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunJSON,
	}

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id]",
		Short: "render run series as a line chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRunPlot,
	}
	exportPlotCmd.Flags().StringVarP(&outPath, "out", "o", "run.png", "output file (.png or .svg)")

	compareCmd := &cobra.Command{
		Use:   "compare [input] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same system",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	compareCmd.Flags().Float64Var(&tmax, "tmax", config.DefaultTMax, "end time")

	sweepCmd := &cobra.Command{
		Use:   "sweep [input]",
		Short: "sweep one parameter across a range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	sweepCmd.Flags().Float64Var(&tmax, "tmax", config.DefaultTMax, "end time")
	sweepCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scenario")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "stiffness", "parameter (stiffness|zeta|mass)")
	sweepCmd.Flags().IntVar(&sweepBody, "body", 1, "body whose parameter is swept")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1.0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 10.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of points")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 4, "parallel workers")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, animateCmd, validateCmd, modesCmd, listCmd, plotCmd, analyzeCmd,
		phaseCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportPlotCmd, compareCmd, sweepCmd,
		presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSystem resolves the system definition from --preset, a YAML
// scenario or a .ste input file, then lets explicitly set flags override
// the file's time settings.
func loadSystem(cmd *cobra.Command, args []string) (*model.Registry, sim.Config, string, error) {
	var (
		reg  *model.Registry
		cfg  sim.Config
		name string
		err  error
	)

	switch {
	case preset != "":
		scn := config.GetPreset(preset)
		if scn == nil {
			return nil, sim.Config{}, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		if scn.Integrator != "" && !cmd.Flags().Changed("integrator") {
			integrator = scn.Integrator
		}
		reg, cfg, err = scn.Build()
		name = scn.Name
	case len(args) == 1:
		path := args[0]
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			var scn *config.Scenario
			scn, err = config.Load(path)
			if err != nil {
				return nil, sim.Config{}, "", err
			}
			if scn.Integrator != "" && !cmd.Flags().Changed("integrator") {
				integrator = scn.Integrator
			}
			reg, cfg, err = scn.Build()
			name = scn.Name
			if name == "" {
				name = runName(path)
			}
		default:
			reg, cfg, err = input.ParseFile(path)
			name = runName(path)
		}
	default:
		return nil, sim.Config{}, "", fmt.Errorf("need an input file or --preset")
	}
	if err != nil {
		return nil, sim.Config{}, "", err
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("tmax") {
		cfg.TMax = tmax
	}
	if cmd.Flags().Changed("full") {
		cfg.FullAnimation = fullAnim
	}
	return reg, cfg, name, nil
}

func runName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	reg, cfg, name, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	st, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	s, mats, grid, err := sim.Build(reg, cfg, integrator)
	if err != nil {
		return err
	}
	s.AddMetric(metrics.NewEnergy(mats))
	s.AddMetric(metrics.NewPeakDisplacement())
	if settleBand > 0 {
		s.AddMetric(metrics.NewSettling(settleBand))
	}

	fmt.Printf("running %s (%d bodies, %d steps)...\n", name, reg.N(), len(grid)-1)
	start := time.Now()

	result, err := s.Run(context.Background(), grid)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func animateRun(cmd *cobra.Command, args []string) error {
	reg, cfg, name, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	s, _, grid, err := sim.Build(reg, cfg, integrator)
	if err != nil {
		return err
	}
	result, err := s.Run(context.Background(), grid)
	if err != nil {
		return err
	}

	player, err := viz.NewPlayer(name, result, reg, cfg.FullAnimation, frameRate, gifPath)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(player).Run()
	return err
}

func validateInput(cmd *cobra.Command, args []string) error {
	reg, cfg, name, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	mats, err := assembly.Assemble(reg)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d bodies, dt=%.4g, tmax=%.4g\n\n", name, reg.N(), cfg.Dt, cfg.TMax)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tMASS\tX0\tV0\tXLOC\tFORCE\tCOUPLED TO")
	for _, b := range reg.Bodies() {
		targets := make([]string, len(b.Couplings))
		for i, c := range b.Couplings {
			targets[i] = fmt.Sprintf("%d (k=%g, c=%.4g)", c.To, c.Stiffness, c.Damping)
		}
		fmt.Fprintf(w, "%d\t%g\t%g\t%g\t%g\t%s\t%s\n",
			b.ID, b.Mass, b.X0, b.V0, b.XLoc, b.Force.Kind, strings.Join(targets, ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nM =\n%v\n", mat.Formatted(mats.M, mat.Prefix("    "), mat.Squeeze()))
	fmt.Printf("\nC =\n%v\n", mat.Formatted(mats.C, mat.Prefix("    "), mat.Squeeze()))
	fmt.Printf("\nK =\n%v\n", mat.Formatted(mats.K, mat.Prefix("    "), mat.Squeeze()))
	return nil
}

func modalAnalysis(cmd *cobra.Command, args []string) error {
	reg, _, name, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	mats, err := assembly.Assemble(reg)
	if err != nil {
		return err
	}
	modes, err := analysis.NaturalModes(mats)
	if err != nil {
		return err
	}

	fmt.Printf("natural modes of %s (undamped)\n\n", name)
	hz := modes.FrequenciesHz()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tOMEGA (rad/s)\tFREQ (Hz)\tPERIOD (s)")
	for i, omega := range modes.OmegaN {
		period := "-"
		if hz[i] > 0 {
			period = fmt.Sprintf("%.4f", 1/hz[i])
		}
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%s\n", i+1, omega, hz[i], period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nmode shapes (columns)\n%v\n",
		mat.Formatted(modes.Shapes, mat.Prefix("    "), mat.Squeeze()))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTMAX\tDT\tSTEPS\tBODIES\tINTEG\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\t%s\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.TMax,
			run.Dt,
			run.Steps,
			run.Bodies,
			run.Integrator,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, disp, _, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(disp) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(disp))

	n := len(disp[0])
	first, last := 1, n
	if bodyID != 0 {
		if bodyID < 1 || bodyID > n {
			return fmt.Errorf("body %d out of range (system has %d)", bodyID, n)
		}
		first, last = bodyID, bodyID
	}

	for id := first; id <= last; id++ {
		data := make([]float64, len(disp))
		for i := range disp {
			data[i] = disp[i][id-1]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("body %d displacement", id)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, disp, _, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(disp) == 0 {
		return fmt.Errorf("no data")
	}
	if bodyID < 1 || bodyID > len(disp[0]) {
		return fmt.Errorf("body %d out of range (system has %d)", bodyID, len(disp[0]))
	}

	series := make([]float64, len(disp))
	for i := range disp {
		series[i] = disp[i][bodyID-1]
	}

	spec, err := analysis.NewSpectrum(series, meta.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s (body %d)\n\n", meta.ID, bodyID)

	graph := asciigraph.Plot(spec.Amplitudes[:len(spec.Amplitudes)/4],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum (body %d)", bodyID)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, amp := spec.Dominant()
	fmt.Printf("dominant frequency: %.3f hz (amplitude %.3g)\n", freq, amp)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1/freq)
	}
	return nil
}

func phaseRun(cmd *cobra.Command, args []string) error {
	st, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, disp, vel, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(disp) == 0 {
		return fmt.Errorf("no data")
	}
	if bodyID < 1 || bodyID > len(disp[0]) {
		return fmt.Errorf("body %d out of range (system has %d)", bodyID, len(disp[0]))
	}

	xs := make([]float64, len(disp))
	vs := make([]float64, len(disp))
	for i := range disp {
		xs[i] = disp[i][bodyID-1]
		vs[i] = vel[i][bodyID-1]
	}

	portrait, err := viz.PhasePortrait(xs, vs, 60, 20)
	if err != nil {
		return err
	}
	fmt.Printf("phase portrait: %s (body %d, x right, v up)\n\n", meta.ID, bodyID)
	fmt.Print(portrait)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := storage.New(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func loadSeries(runID string) (*export.Series, error) {
	st, err := storage.New(dataDir)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	times, disp, vel, err := st.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	return &export.Series{Times: times, Displacements: disp, Velocities: vel}, nil
}

func exportRunCSV(cmd *cobra.Command, args []string) error {
	series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	return export.CSV(os.Stdout, series)
}

func exportRunJSON(cmd *cobra.Command, args []string) error {
	series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	return export.JSON(os.Stdout, series)
}

func exportRunPlot(cmd *cobra.Command, args []string) error {
	series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	if err := export.Chart(outPath, series); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	reg, cfg, name, err := loadSystem(cmd, args[:1])
	if err != nil {
		return err
	}
	steppers := args[1:]

	fmt.Printf("comparing integrators for %s (dt=%.4g, tmax=%.4g)\n\n", name, cfg.Dt, cfg.TMax)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "integrator", "final_x1", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 52))

	for _, stName := range steppers {
		s, _, grid, err := sim.Build(reg, cfg, stName)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", stName, err)
			continue
		}

		start := time.Now()
		result, err := s.Run(context.Background(), grid)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", stName, err)
			continue
		}

		finalX1 := result.Displacements[len(result.Displacements)-1][0]
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.2f\n",
			stName, finalX1, result.EnergyDrift, float64(elapsed.Microseconds())/1000)
	}

	fmt.Printf("\navailable integrators: %s\n", strings.Join(solver.Names(), ", "))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	reg, cfg, name, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	param, err := sweep.ParseParameter(sweepParam)
	if err != nil {
		return err
	}

	points, err := sweep.Run(context.Background(), reg, cfg, sweep.Config{
		Parameter:  param,
		Body:       sweepBody,
		Min:        sweepMin,
		Max:        sweepMax,
		Steps:      sweepSteps,
		Workers:    sweepWorkers,
		Integrator: integrator,
	})
	if err != nil {
		return err
	}

	fmt.Printf("sweep of %s on %s, body %d\n\n", sweepParam, name, sweepBody)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tPEAK |X|\tDRIFT\tFINAL X (swept body)")
	for _, p := range points {
		fmt.Fprintf(w, "%.4g\t%.6f\t%.2e\t%.6f\n",
			p.Value, p.PeakDisplacement, p.EnergyDrift, p.FinalDisplacement[sweepBody-1])
	}
	return w.Flush()
}
