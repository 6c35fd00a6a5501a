package epidemic

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Params holds the transition probabilities for a run. Each base
// probability is adjusted per cell by history*increment, where history is the
// number of consecutive turns the cell has kept its state.
type Params struct {
	Infection    float64 `yaml:"infection" json:"infection"`
	InfectionInc float64 `yaml:"infection_inc" json:"infection_inc"`

	Recovery    float64 `yaml:"recovery" json:"recovery"`
	RecoveryInc float64 `yaml:"recovery_inc" json:"recovery_inc"`

	Death    float64 `yaml:"death" json:"death"`
	DeathInc float64 `yaml:"death_inc" json:"death_inc"`

	ImmunityLoss    float64 `yaml:"immunity_loss" json:"immunity_loss"`
	ImmunityLossInc float64 `yaml:"immunity_loss_inc" json:"immunity_loss_inc"`

	Vaccination float64 `yaml:"vaccination" json:"vaccination"`
	Ring        bool    `yaml:"ring" json:"ring"`
}

// InitialDistribution is the probability of each state when seeding a cell.
type InitialDistribution struct {
	Susceptible float64 `yaml:"susceptible" json:"susceptible"`
	Affected    float64 `yaml:"affected" json:"affected"`
	Recovered   float64 `yaml:"recovered" json:"recovered"`
	Dead        float64 `yaml:"dead" json:"dead"`
	Vaccinated  float64 `yaml:"vaccinated" json:"vaccinated"`
}

// Categorical converts the distribution into a sampler over states.
func (d InitialDistribution) Categorical() (Categorical[State], error) {
	return NewCategorical(
		Outcome[State]{Value: Susceptible, P: d.Susceptible},
		Outcome[State]{Value: Affected, P: d.Affected},
		Outcome[State]{Value: Recovered, P: d.Recovered},
		Outcome[State]{Value: Dead, P: d.Dead},
		Outcome[State]{Value: Vaccinated, P: d.Vaccinated},
	)
}

// Config controls the epidemic simulation.
type Config struct {
	Size  int   `yaml:"size" json:"size"`
	Turns int   `yaml:"turns" json:"turns"`
	Seed  int64 `yaml:"seed" json:"seed"`

	// Normalization divides raw per-state counts before they are recorded.
	Normalization float64 `yaml:"normalization" json:"normalization"`

	Initial InitialDistribution `yaml:"initial" json:"initial"`
	Params  Params              `yaml:"params" json:"params"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Size:          100,
		Turns:         30,
		Seed:          0,
		Normalization: 500,
		Initial: InitialDistribution{
			Susceptible: 0.96,
			Affected:    0.04,
		},
		Params: Params{
			Infection:    0.01,
			Recovery:     0.01,
			Death:        0.0001,
			ImmunityLoss: 0.005,
			Vaccination:  0.001,
		},
	}
}

// LoadConfig reads a YAML file layered on top of DefaultConfig and validates
// the result.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// YAML renders the config as a YAML document.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unknown keys are ignored; malformed values are reported.
func FromMap(cfg map[string]string) (Config, error) {
	c := DefaultConfig()
	if err := c.Apply(cfg); err != nil {
		return c, err
	}
	return c, nil
}

// Apply overrides fields of c from a string map.
func (c *Config) Apply(cfg map[string]string) error {
	for key, v := range cfg {
		if err := c.Set(key, v); err != nil {
			return err
		}
	}
	return nil
}

// Set overrides a single field by its flag-style key.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "size", "n":
		c.Size, err = strconv.Atoi(value)
	case "turns":
		c.Turns, err = strconv.Atoi(value)
	case "seed":
		c.Seed, err = strconv.ParseInt(value, 10, 64)
	case "normalization":
		c.Normalization, err = strconv.ParseFloat(value, 64)
	case "ring":
		c.Params.Ring, err = strconv.ParseBool(value)
	default:
		f := c.floatField(key)
		if f == nil {
			return nil
		}
		*f, err = strconv.ParseFloat(value, 64)
	}
	if err != nil {
		return fmt.Errorf("config key %q: %w", key, err)
	}
	return nil
}

func (c *Config) floatField(key string) *float64 {
	switch key {
	case "infection", "beta":
		return &c.Params.Infection
	case "infection_inc", "beta_inc":
		return &c.Params.InfectionInc
	case "recovery", "gamma":
		return &c.Params.Recovery
	case "recovery_inc", "gamma_inc":
		return &c.Params.RecoveryInc
	case "death":
		return &c.Params.Death
	case "death_inc":
		return &c.Params.DeathInc
	case "immunity_loss", "mu":
		return &c.Params.ImmunityLoss
	case "immunity_loss_inc", "mu_inc":
		return &c.Params.ImmunityLossInc
	case "vaccination", "vacc":
		return &c.Params.Vaccination
	case "initial_susceptible":
		return &c.Initial.Susceptible
	case "initial_affected":
		return &c.Initial.Affected
	case "initial_recovered":
		return &c.Initial.Recovered
	case "initial_dead":
		return &c.Initial.Dead
	case "initial_vaccinated":
		return &c.Initial.Vaccinated
	}
	return nil
}

// MaxHistory is the largest history counter the engine can read during a run
// of c.Turns turns.
func (c Config) MaxHistory() int {
	if c.Turns <= 1 {
		return 0
	}
	return c.Turns - 1
}

// Validate reports configuration errors. Adjusted probabilities are linear
// in the history counter, so checking history 0 and MaxHistory bounds every
// turn of the run.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, c.Size)
	}
	if c.Turns < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTurns, c.Turns)
	}
	if !(c.Normalization > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidNormalization, c.Normalization)
	}
	if _, err := c.Initial.Categorical(); err != nil {
		return fmt.Errorf("initial distribution: %w", err)
	}
	if err := checkProbability("vaccination", c.Params.Vaccination); err != nil {
		return err
	}
	for _, h := range []int{0, c.MaxHistory()} {
		if err := c.Params.validateAt(h); err != nil {
			return err
		}
	}
	return nil
}

func (p Params) validateAt(history int) error {
	adj := p.Adjusted(history)
	checks := []struct {
		name string
		v    float64
	}{
		{"infection", adj.Infection},
		{"recovery", adj.Recovery},
		{"death", adj.Death},
		{"immunity loss", adj.ImmunityLoss},
		{"recovery+death", adj.Recovery + adj.Death},
	}
	for _, ch := range checks {
		if err := checkProbability(ch.name, ch.v); err != nil {
			return fmt.Errorf("at history %d: %w", history, err)
		}
	}
	return nil
}

func checkProbability(name string, v float64) error {
	if math.IsNaN(v) || v < -sumTolerance || v > 1+sumTolerance {
		return fmt.Errorf("%w: %s = %g", ErrProbabilityRange, name, v)
	}
	return nil
}

// Adjusted holds the history-adjusted probabilities for one cell.
type Adjusted struct {
	Infection    float64
	Recovery     float64
	Death        float64
	ImmunityLoss float64
}

// Adjusted applies the history increments for a cell that has kept its state
// for history turns.
func (p Params) Adjusted(history int) Adjusted {
	h := float64(history)
	return Adjusted{
		Infection:    p.Infection + h*p.InfectionInc,
		Recovery:     p.Recovery + h*p.RecoveryInc,
		Death:        p.Death + h*p.DeathInc,
		ImmunityLoss: p.ImmunityLoss + h*p.ImmunityLossInc,
	}
}
