package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the whole tuning surface of the planning pipeline. Every field
// can be overridden through a DESKPLAN_-prefixed environment variable.
//
// IsolationWeight and ConsistencyWeight apply to every daily assignment
// solve, including the diagnostic re-solves of the feedback loop; there is
// deliberately a single pair of knobs for all call sites.
type Config struct {
	// Weekly schedule objective.
	PreferencePenalty float64 `env:"PREFERENCE_PENALTY" envDefault:"0.5"`
	RiskWeight        float64 `env:"RISK_WEIGHT" envDefault:"1.0"`

	// Daily assignment objective.
	IsolationWeight   float64 `env:"ISOLATION_WEIGHT" envDefault:"1000"`
	ConsistencyWeight float64 `env:"CONSISTENCY_WEIGHT" envDefault:"1"`

	// Feedback loop.
	MaxIterations    int     `env:"MAX_ITERATIONS" envDefault:"10"`
	DynamicThreshold bool    `env:"DYNAMIC_THRESHOLD" envDefault:"true"`
	FixedThreshold   float64 `env:"FIXED_THRESHOLD" envDefault:"10"`
	DayThreshold     float64 `env:"DAY_THRESHOLD" envDefault:"4"`

	// Solver budget per model.
	SolveTimeLimit int     `env:"SOLVE_TIME_LIMIT" envDefault:"30"` // seconds
	SolveGap       float64 `env:"SOLVE_GAP" envDefault:"0.05"`

	// Worker pool cap for parallel daily solves and diagnosis.
	MaxWorkers int `env:"MAX_WORKERS" envDefault:"8"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "DESKPLAN_"}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in defaults, ignoring the process environment.
func Default() Config {
	cfg := Config{}
	// An empty environment makes ParseWithOptions fill every envDefault.
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(err)
	}
	return cfg
}

func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.SolveTimeLimit) * time.Second
}
