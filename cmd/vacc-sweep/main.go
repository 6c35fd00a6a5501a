package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"epi-ca/internal/app"
	"epi-ca/internal/persistence/runstore"
	"epi-ca/internal/sims/epidemic"
)

type policy struct {
	ring bool
	vacc float64
}

func (p policy) String() string {
	if p.ring {
		return "ring"
	}
	return fmt.Sprintf("random vacc=%.4f", p.vacc)
}

type job struct {
	policy policy
	seed   int64
}

type runResult struct {
	job          job
	finalDead    float64
	peakAffected float64
	peakTurn     int
	err          error
}

type summary struct {
	policy       policy
	runs         int
	meanDead     float64
	meanPeak     float64
	worstDead    float64
	meanPeakTurn float64
}

func main() {
	size := flag.Int("n", 100, "grid side length")
	turns := flag.Int("turns", 30, "turns to simulate per run")
	seeds := flag.Int("seeds", 8, "runs per policy")
	baseSeed := flag.Int64("seed", 1, "first seed; run i uses seed+i")
	vaccList := flag.String("vacc", "0,0.001,0.005,0.01,0.05", "comma-separated random vaccination probabilities")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	dbPath := flag.String("db", "", "record every run in this SQLite database")
	var overrides app.KVList
	flag.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	flag.Parse()

	cfg := epidemic.DefaultConfig()
	cfg.Size = *size
	cfg.Turns = *turns
	kv, err := overrides.Map()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Apply(kv); err != nil {
		log.Fatal(err)
	}
	if cfg.Turns <= 0 {
		log.Fatalf("turns must be positive, got %d", cfg.Turns)
	}

	vaccs, err := parseFloats(*vaccList)
	if err != nil {
		log.Fatal(err)
	}
	policies := []policy{{ring: true}}
	for _, v := range vaccs {
		policies = append(policies, policy{vacc: v})
	}
	for _, p := range policies {
		if err := configFor(cfg, p, 0).Validate(); err != nil {
			log.Fatalf("%s: %v", p, err)
		}
	}

	var store *runstore.Store
	if *dbPath != "" {
		store, err = runstore.Open(*dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
	}

	var jobsList []job
	for _, p := range policies {
		for i := 0; i < *seeds; i++ {
			jobsList = append(jobsList, job{policy: p, seed: *baseSeed + int64(i)})
		}
	}

	fmt.Printf("Sweeping %d policies x %d seeds (%d workers, n=%d, %d turns)\n",
		len(policies), *seeds, *workers, cfg.Size, cfg.Turns)

	ctx := context.Background()
	jobs := make(chan job)
	results := make(chan runResult)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- runScenario(ctx, store, cfg, j)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, j := range jobsList {
			jobs <- j
		}
		close(jobs)
	}()

	start := time.Now()
	byPolicy := make(map[policy][]runResult)
	for res := range results {
		if res.err != nil {
			log.Fatalf("%s seed %d: %v", res.job.policy, res.job.seed, res.err)
		}
		byPolicy[res.job.policy] = append(byPolicy[res.job.policy], res)
	}
	elapsed := time.Since(start)

	summaries := make([]summary, 0, len(byPolicy))
	for p, runs := range byPolicy {
		summaries = append(summaries, summarize(p, runs))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].meanDead != summaries[j].meanDead {
			return summaries[i].meanDead < summaries[j].meanDead
		}
		return summaries[i].meanPeak < summaries[j].meanPeak
	})

	fmt.Printf("\n%-22s %5s %10s %10s %12s %10s\n", "policy", "runs", "dead", "worst", "peak A", "peak turn")
	for _, s := range summaries {
		fmt.Printf("%-22s %5d %10.3f %10.3f %12.3f %10.1f\n",
			s.policy, s.runs, s.meanDead, s.worstDead, s.meanPeak, s.meanPeakTurn)
	}
	fmt.Printf("\nCompleted %d runs in %s\n", len(jobsList), elapsed.Round(time.Millisecond))
}

func configFor(base epidemic.Config, p policy, seed int64) epidemic.Config {
	cfg := base
	cfg.Seed = seed
	cfg.Params.Ring = p.ring
	if p.ring {
		cfg.Params.Vaccination = 0
	} else {
		cfg.Params.Vaccination = p.vacc
	}
	return cfg
}

func runScenario(ctx context.Context, store *runstore.Store, base epidemic.Config, j job) runResult {
	res := runResult{job: j}
	cfg := configFor(base, j.policy, j.seed)
	sim, err := epidemic.NewWithConfig(cfg)
	if err != nil {
		res.err = err
		return res
	}
	if store != nil {
		run, err := store.BeginRun(ctx, "vacc-sweep "+j.policy.String(), cfg, j.seed)
		if err != nil {
			res.err = err
			return res
		}
		sim.Observe(run)
		sim.Reset(j.seed)
	}
	if err := sim.Run(ctx); err != nil {
		res.err = err
		return res
	}

	series := sim.Series()
	affected := series.Values(epidemic.Affected)
	for turn, v := range affected {
		if v > res.peakAffected {
			res.peakAffected = v
			res.peakTurn = turn
		}
	}
	dead := series.Values(epidemic.Dead)
	if len(dead) > 0 {
		res.finalDead = dead[len(dead)-1]
	}
	return res
}

func summarize(p policy, runs []runResult) summary {
	s := summary{policy: p, runs: len(runs)}
	for _, r := range runs {
		s.meanDead += r.finalDead
		s.meanPeak += r.peakAffected
		s.meanPeakTurn += float64(r.peakTurn)
		if r.finalDead > s.worstDead {
			s.worstDead = r.finalDead
		}
	}
	if n := float64(len(runs)); n > 0 {
		s.meanDead /= n
		s.meanPeak /= n
		s.meanPeakTurn /= n
	}
	return s
}

func parseFloats(list string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("vacc %q: %w", field, err)
		}
		out = append(out, v)
	}
	return out, nil
}
