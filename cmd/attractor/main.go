package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/attractor/internal/config"
	"github.com/san-kum/attractor/internal/field"
	"github.com/san-kum/attractor/internal/metrics"
	"github.com/san-kum/attractor/internal/node"
	"github.com/san-kum/attractor/internal/params"
	"github.com/san-kum/attractor/internal/storage"
	"github.com/san-kum/attractor/internal/transport"
	"github.com/san-kum/attractor/internal/viz"
)

var (
	configFile string
	preset     string
	dataDir    string

	listen    string
	record    bool
	noPublish bool

	position  []float64
	velocity  []float64
	stiffness float64
	damping   float64
	offset    []float64

	plotAxis   int
	plotHeight int
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "attractor",
		Short: "3D attractor force field node",
		Long: "Generates force commands that attract a robot effector to a point,\n" +
			"line, or plane embedded in 3D space, modeled as a spring-damper system.",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "parameter file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "constraint preset (free, plane-xy, line-z, point)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".attractor", "data directory for recorded runs")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the sampling node with the websocket bridge",
		RunE:  runNode,
	}
	runCmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	runCmd.Flags().BoolVar(&record, "record", false, "record the force trace to the data directory")
	runCmd.Flags().BoolVar(&noPublish, "no-publish", false, "compute but do not publish forces")

	computeCmd := &cobra.Command{
		Use:   "compute",
		Short: "compute a single attractor force from explicit state",
		RunE:  runCompute,
	}
	computeCmd.Flags().Float64SliceVar(&position, "position", []float64{0, 0, 0}, "effector position x,y,z")
	computeCmd.Flags().Float64SliceVar(&velocity, "velocity", []float64{0, 0, 0}, "effector velocity x,y,z")
	computeCmd.Flags().Float64Var(&stiffness, "stiffness", config.DefaultStiffness, "spring stiffness N/m")
	computeCmd.Flags().Float64Var(&damping, "damping", config.DefaultDamping, "damper coefficient N/(m/s)")
	computeCmd.Flags().Float64SliceVar(&offset, "offset", []float64{0, 0, 0}, "constraint offset x,y,z")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the node with a live terminal force monitor",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "monitor frame rate")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage the parameter file",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a parameter file with defaults (or the chosen preset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
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
	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
	configCmd.AddCommand(configInitCmd, configShowCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded force trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotAxis, "axis", -1, "force axis to plot (0=x, 1=y, 2=z; default magnitude)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storage.New(dataDir)
			meta, err := store.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list constraint presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, computeCmd, liveCmd, configCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers the parameter sources: defaults, then preset,
// then the config file on top.
func resolveConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if noPublish {
		cfg.PublishForce = false
	}
	if !cmd.Flags().Changed("data") && cfg.DataDir != "" {
		dataDir = cfg.DataDir
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := params.FromConfig(cfg)
	if err != nil {
		return err
	}
	n := node.New(store, logger)

	collector := metrics.NewCollector()
	n.AddObserver(collector)

	var recorder *storage.Recorder
	if record {
		recorder = storage.NewRecorder(1 << 20)
		n.AddObserver(recorder)
	}

	srv := transport.NewServer(n, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx, cfg.Listen) })

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	vals := collector.Values()
	logger.Info("run summary",
		zap.Float64("peak_force", vals["peak_force"]),
		zap.Float64("rms_force", vals["rms_force"]),
		zap.Float64("publish_rate", vals["publish_rate"]))

	if recorder != nil {
		runs := storage.New(dataDir)
		if err := runs.Init(); err != nil {
			return err
		}
		runID, err := runs.Save(cfg, recorder.Rows(), vals)
		if err != nil {
			return err
		}
		fmt.Printf("recorded %s\n", runID)
	}
	return nil
}

func runCompute(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	// Flags override the file only when explicitly set: 0.0 is a
	// legitimate value, distinct from "not provided".
	if cmd.Flags().Changed("stiffness") {
		cfg.Stiffness = stiffness
	}
	if cmd.Flags().Changed("damping") {
		cfg.Damping = damping
	}
	if cmd.Flags().Changed("offset") {
		cfg.Offset = offset
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	pos, err := toVec(position, "position")
	if err != nil {
		return err
	}
	vel, err := toVec(velocity, "velocity")
	if err != nil {
		return err
	}

	attractor, err := cfg.Attractor()
	if err != nil {
		return err
	}
	transformMat, err := cfg.Transform()
	if err != nil {
		return err
	}

	state := field.KinematicState{Position: pos, Velocity: vel}
	proj := field.Projection(attractor.Basis, attractor.Weights)
	guidance := field.Guidance(state, attractor, proj)
	applied := field.Aggregate([]field.Vec3{guidance}, transformMat)

	fmt.Printf("guidance: %10.4f %10.4f %10.4f\n", guidance[0], guidance[1], guidance[2])
	fmt.Printf("applied:  %10.4f %10.4f %10.4f\n", applied[0], applied[1], applied[2])
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}

	// The terminal belongs to the monitor; keep the loop quiet.
	logger := zap.NewNop()

	store, err := params.FromConfig(cfg)
	if err != nil {
		return err
	}
	n := node.New(store, logger)

	monitor := viz.NewMonitor(600)
	n.AddObserver(monitor)

	srv := transport.NewServer(n, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx, cfg.Listen) })

	p := tea.NewProgram(viz.NewModel(monitor, frameRate), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	cancel()

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tTICKS\tPUBLISHED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.Ticks, r.Published)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	rows, err := store.LoadRows(args[0])
	if err != nil {
		return err
	}
	if plotAxis >= 0 {
		fmt.Println(viz.PlotComponent(rows, plotAxis, plotHeight))
		return nil
	}
	fmt.Println(viz.PlotTrace(rows, plotHeight))
	return nil
}

func toVec(s []float64, name string) (field.Vec3, error) {
	if len(s) != 3 {
		return field.Vec3{}, fmt.Errorf("%s needs 3 values, got %d", name, len(s))
	}
	return field.Vec3{s[0], s[1], s[2]}, nil
}
