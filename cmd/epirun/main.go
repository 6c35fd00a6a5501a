package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"epi-ca/internal/app"
	"epi-ca/internal/export"
	"epi-ca/internal/persistence/framelog"
	"epi-ca/internal/persistence/runstore"
	"epi-ca/internal/sims/epidemic"
)

type options struct {
	configPath string
	overrides  app.KVList
	seed       int64
	turns      int
	ring       bool
	outDir     string
	video      string
	scale      int
	fps        int
	dbPath     string
	label      string
	frameLog   string
	replay     string
	quiet      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flag.Var(&opts.overrides, "set", "parameter override in key=value form (repeatable)")
	flag.Int64Var(&opts.seed, "seed", 0, "RNG seed (0 uses the config seed or the clock)")
	flag.IntVar(&opts.turns, "turns", -1, "turns to simulate (overrides the config when >= 0)")
	flag.BoolVar(&opts.ring, "ring", false, "use ring vaccination")
	flag.StringVar(&opts.outDir, "out", ".", "output directory for line_graph.png and series.csv")
	flag.StringVar(&opts.video, "video", "", "write an MJPEG AVI animation to this file name inside -out")
	flag.IntVar(&opts.scale, "scale", 4, "pixels per cell in the animation")
	flag.IntVar(&opts.fps, "fps", 20, "animation frames per second")
	flag.StringVar(&opts.dbPath, "db", "", "record the run in this SQLite database")
	flag.StringVar(&opts.label, "label", "epirun", "run label stored with -db")
	flag.StringVar(&opts.frameLog, "framelog", "", "write a zstd JSONL frame log to this path")
	flag.StringVar(&opts.replay, "replay", "", "rebuild outputs from a frame log instead of simulating")
	flag.BoolVar(&opts.quiet, "quiet", false, "suppress per-turn count lines")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.New(os.Stdout, "[epirun] ", log.LstdFlags)

	var err error
	if opts.replay != "" {
		err = replay(logger, opts)
	} else {
		err = simulate(ctx, logger, opts)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func buildConfig(opts options) (epidemic.Config, error) {
	cfg := epidemic.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := epidemic.LoadConfig(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	overrides, err := opts.overrides.Map()
	if err != nil {
		return cfg, err
	}
	if err := cfg.Apply(overrides); err != nil {
		return cfg, err
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.turns >= 0 {
		cfg.Turns = opts.turns
	}
	if opts.ring {
		cfg.Params.Ring = true
	}
	return cfg, cfg.Validate()
}

func simulate(ctx context.Context, logger *log.Logger, opts options) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Turns == 0 {
		return fmt.Errorf("%w: a headless run needs a positive turn count", epidemic.ErrInvalidTurns)
	}
	sim, err := epidemic.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	seed := sim.Seed()
	logger.Printf("n=%d turns=%d seed=%d ring=%t", cfg.Size, cfg.Turns, seed, cfg.Params.Ring)

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Printf("close: %v", err)
			}
		}
	}()

	if !opts.quiet {
		sim.Observe(countsLogger(logger))
	}
	if opts.video != "" {
		vw, err := export.NewVideoWriter(filepath.Join(opts.outDir, opts.video), cfg.Size, opts.scale, opts.fps)
		if err != nil {
			return err
		}
		closers = append(closers, vw.Close)
		sim.Observe(vw)
	}
	if opts.frameLog != "" {
		fw, err := framelog.Create(opts.frameLog, framelog.Header{Seed: seed, Config: cfg})
		if err != nil {
			return err
		}
		closers = append(closers, fw.Close)
		sim.Observe(fw)
	}
	if opts.dbPath != "" {
		store, err := runstore.Open(opts.dbPath)
		if err != nil {
			return err
		}
		closers = append(closers, store.Close)
		run, err := store.BeginRun(ctx, opts.label, cfg, seed)
		if err != nil {
			return err
		}
		logger.Printf("recording run %d in %s", run.ID(), opts.dbPath)
		sim.Observe(run)
	}

	// Observers registered after construction missed turn 0; reseeding with
	// the same seed republishes it.
	sim.Reset(seed)
	if err := sim.Run(ctx); err != nil {
		return err
	}
	return writeOutputs(logger, opts.outDir, sim.Series())
}

func replay(logger *log.Logger, opts options) error {
	r, err := framelog.Open(opts.replay)
	if err != nil {
		return err
	}
	defer r.Close()
	h := r.Header()
	logger.Printf("replaying %s: n=%d seed=%d", opts.replay, h.Config.Size, h.Seed)

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	var obs []epidemic.Observer
	if !opts.quiet {
		obs = append(obs, countsLogger(logger))
	}
	if opts.video != "" {
		vw, err := export.NewVideoWriter(filepath.Join(opts.outDir, opts.video), h.Config.Size, opts.scale, opts.fps)
		if err != nil {
			return err
		}
		defer func() {
			if err := vw.Close(); err != nil {
				logger.Printf("close video: %v", err)
			}
		}()
		obs = append(obs, vw)
	}
	series, err := r.Replay(obs...)
	if err != nil {
		return err
	}
	return writeOutputs(logger, opts.outDir, series)
}

func countsLogger(logger *log.Logger) epidemic.Observer {
	return epidemic.ObserverFunc(func(f epidemic.Frame) error {
		var b strings.Builder
		fmt.Fprintf(&b, "turn %3d", f.Turn)
		for _, st := range epidemic.States {
			fmt.Fprintf(&b, " %s=%.3f", st, f.Counts[st])
		}
		logger.Print(b.String())
		return nil
	})
}

func writeOutputs(logger *log.Logger, dir string, series epidemic.Series) error {
	csvPath := filepath.Join(dir, "series.csv")
	if err := export.WriteSeriesFile(csvPath, series); err != nil {
		return err
	}
	logger.Printf("wrote %s", csvPath)

	plotPath := filepath.Join(dir, "line_graph.png")
	err := export.WritePlot(plotPath, series, export.DefaultPlotOptions())
	if errors.Is(err, export.ErrNotEnoughData) {
		logger.Printf("skipping %s: %v", plotPath, err)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Printf("wrote %s", plotPath)
	return nil
}
