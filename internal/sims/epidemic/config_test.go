package epidemic

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"zero size", func(c *Config) { c.Size = 0 }, ErrInvalidSize},
		{"negative size", func(c *Config) { c.Size = -3 }, ErrInvalidSize},
		{"negative turns", func(c *Config) { c.Turns = -1 }, ErrInvalidTurns},
		{"zero normalization", func(c *Config) { c.Normalization = 0 }, ErrInvalidNormalization},
		{"initial sum", func(c *Config) { c.Initial.Affected = 0.1 }, ErrDistribution},
		{"vaccination above one", func(c *Config) { c.Params.Vaccination = 1.5 }, ErrProbabilityRange},
		{"negative infection", func(c *Config) { c.Params.Infection = -0.1 }, ErrProbabilityRange},
		{"recovery plus death", func(c *Config) {
			c.Params.Recovery = 0.7
			c.Params.Death = 0.4
		}, ErrProbabilityRange},
		{"history drift", func(c *Config) {
			c.Turns = 10
			c.Params.Recovery = 0.5
			c.Params.RecoveryInc = 0.1
		}, ErrProbabilityRange},
		{"history drift below zero", func(c *Config) {
			c.Turns = 30
			c.Params.ImmunityLossInc = -0.01
		}, ErrProbabilityRange},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, expected %v", tc.name, err, tc.want)
		}
	}
}

func TestValidateAcceptsDriftWithinRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Turns = 10
	cfg.Params.Recovery = 0.5
	cfg.Params.RecoveryInc = 0.05
	cfg.Params.Death = 0.05
	if err := cfg.Validate(); err != nil {
		t.Fatalf("0.5+9*0.05+0.05 = 1 should be accepted: %v", err)
	}
}

func TestFromMapOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"size":                "40",
		"turns":               "12",
		"beta":                "0.2",
		"gamma_inc":           "0.001",
		"ring":                "true",
		"vacc":                "0.05",
		"unknown":             "ignored",
		"initial_affected":    "0.1",
		"initial_susceptible": "0.9",
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if cfg.Size != 40 || cfg.Turns != 12 {
		t.Fatalf("size/turns = %d/%d", cfg.Size, cfg.Turns)
	}
	if cfg.Params.Infection != 0.2 || cfg.Params.RecoveryInc != 0.001 || cfg.Params.Vaccination != 0.05 {
		t.Fatalf("unexpected params %+v", cfg.Params)
	}
	if !cfg.Params.Ring {
		t.Fatal("ring flag not applied")
	}
	if cfg.Initial.Affected != 0.1 || cfg.Initial.Susceptible != 0.9 {
		t.Fatalf("unexpected initial distribution %+v", cfg.Initial)
	}
	if _, err := FromMap(map[string]string{"death": "lots"}); err == nil {
		t.Fatal("expected malformed float to be rejected")
	}
}

func TestLoadConfigLayersOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
size: 64
turns: 100
params:
  infection: 0.05
  ring: true
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Size != 64 || cfg.Turns != 100 || cfg.Params.Infection != 0.05 || !cfg.Params.Ring {
		t.Fatalf("unexpected config %+v", cfg)
	}
	def := DefaultConfig()
	if cfg.Params.Recovery != def.Params.Recovery || cfg.Normalization != def.Normalization {
		t.Fatal("unset fields should keep defaults")
	}

	raw, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	again := filepath.Join(t.TempDir(), "again.yaml")
	if err := os.WriteFile(again, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	reloaded, err := LoadConfig(again)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded != cfg {
		t.Fatalf("reloaded config %+v differs from %+v", reloaded, cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("size: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}
