package runstore

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"epi-ca/internal/sims/epidemic"
)

func TestRecordAndReloadRun(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "runs.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	cfg := epidemic.DefaultConfig()
	cfg.Size = 12
	cfg.Turns = 8
	cfg.Params.Ring = true
	e, err := epidemic.NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	run, err := store.BeginRun(ctx, "ring", cfg, 31)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	e.Observe(run)
	e.Reset(31)
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	info := runs[0]
	if info.ID != run.ID() || info.Label != "ring" || info.Seed != 31 || !info.Ring || info.Size != 12 {
		t.Fatalf("unexpected run info %+v", info)
	}
	if info.Config != cfg {
		t.Fatalf("config round trip mismatch: %+v", info.Config)
	}

	got, err := store.Series(ctx, run.ID())
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	want := e.Series()
	if got.Len() != want.Len() {
		t.Fatalf("series length %d, expected %d", got.Len(), want.Len())
	}
	for _, st := range epidemic.States {
		if !slices.Equal(got.Values(st), want.Values(st)) {
			t.Fatalf("%s series %v, expected %v", st, got.Values(st), want.Values(st))
		}
	}
}

func TestDuplicateTurnRejected(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "runs.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	run, err := store.BeginRun(ctx, "dup", epidemic.DefaultConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	f := epidemic.Frame{Turn: 0}
	if err := run.ObserveTurn(f); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := run.ObserveTurn(f); err == nil {
		t.Fatal("expected duplicate turn to fail")
	}
}
