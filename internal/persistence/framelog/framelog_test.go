package framelog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"epi-ca/internal/sims/epidemic"
)

func TestWriteAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "frames.jsonl.zst")
	cfg := epidemic.DefaultConfig()
	cfg.Size = 10
	cfg.Turns = 6
	cfg.Params.Infection = 0.5

	e, err := epidemic.NewWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	w, err := Create(path, Header{Seed: 13, Config: cfg})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var cells [][]uint8
	e.Observe(w)
	e.Observe(epidemic.ObserverFunc(func(f epidemic.Frame) error {
		cells = append(cells, append([]uint8(nil), f.Cells...))
		return nil
	}))
	e.Reset(13)
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if h := r.Header(); h.Seed != 13 || h.Config != cfg || h.Version != Version {
		t.Fatalf("unexpected header %+v", h)
	}

	turn := 0
	series, err := r.Replay(epidemic.ObserverFunc(func(f epidemic.Frame) error {
		if f.Turn != turn {
			t.Fatalf("frame turn %d, expected %d", f.Turn, turn)
		}
		if !slices.Equal(f.Cells, cells[turn]) {
			t.Fatalf("turn %d cells differ", turn)
		}
		turn++
		return nil
	}))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	want := e.Series()
	for _, st := range epidemic.States {
		if !slices.Equal(series.Values(st), want.Values(st)) {
			t.Fatalf("%s replayed series %v, expected %v", st, series.Values(st), want.Values(st))
		}
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after replay, got %v", err)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zst")
	if err := os.WriteFile(path, []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for non-zstd file")
	}
}
