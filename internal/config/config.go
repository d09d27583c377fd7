package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"simlab/internal/errors"
	"simlab/internal/experiment"
)

// Config represents the complete application configuration
type Config struct {
	Simulation SimulationConfig
	Database   DatabaseConfig
	LogLevel   string
}

// SimulationConfig holds everything a lab run draws from
type SimulationConfig struct {
	Seed            uint64
	ConfidenceLevel float64
	Normal          NormalConfig
	Accuracy        AccuracyConfig
	RT              RTConfig
	Design          experiment.Design
}

// NormalConfig parameterizes the Normal worked example
type NormalConfig struct {
	N    int
	Mean float64
	SD   float64
}

// ConditionAccuracy is the success probability of one accuracy condition
type ConditionAccuracy struct {
	Name string  `yaml:"name"`
	P    float64 `yaml:"p"`
}

// AccuracyConfig parameterizes the Bernoulli accuracy sections
type AccuracyConfig struct {
	N                  int
	P                  float64
	TrialsPerCondition int
	Conditions         []ConditionAccuracy
}

// RTConfig parameterizes the single shifted-lognormal RT sample. Mean and SD
// are on the original scale and are log-transformed before sampling.
type RTConfig struct {
	N     int
	Shift float64
	Mean  float64
	SD    float64
}

// DatabaseConfig holds the optional summary store connection
type DatabaseConfig struct {
	Driver string
	URL    string
}

// Enabled reports whether a summary store is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Default returns the lab's canonical parameters
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Seed:            2025,
			ConfidenceLevel: 0.95,
			Normal:          NormalConfig{N: 300, Mean: 0, SD: 1},
			Accuracy: AccuracyConfig{
				N:                  200,
				P:                  0.92,
				TrialsPerCondition: 200,
				Conditions: []ConditionAccuracy{
					{Name: "Easy", P: 0.95},
					{Name: "Hard", P: 0.75},
				},
			},
			RT:     RTConfig{N: 500, Shift: 300, Mean: 250, SD: 20},
			Design: experiment.CueingDesign(),
		},
		Database: DatabaseConfig{Driver: "postgres"},
		LogLevel: "INFO",
	}
}

// Load reads configuration from a .env file (if present) and environment
// variables, and validates it
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with explicit .env files. Missing files are skipped.
func LoadFrom(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, errors.Wrapf(err, "failed to load %s", f)
		}
	}

	config := Default()
	sim := &config.Simulation

	env := &envReader{}
	sim.Seed = env.uintVar("SIM_SEED", sim.Seed)
	sim.ConfidenceLevel = env.floatVar("CONFIDENCE_LEVEL", sim.ConfidenceLevel)

	sim.Normal.N = env.intVar("NORMAL_N", sim.Normal.N)
	sim.Normal.Mean = env.floatVar("NORMAL_MEAN", sim.Normal.Mean)
	sim.Normal.SD = env.floatVar("NORMAL_SD", sim.Normal.SD)

	sim.Accuracy.N = env.intVar("ACCURACY_N", sim.Accuracy.N)
	sim.Accuracy.P = env.floatVar("ACCURACY_P", sim.Accuracy.P)
	sim.Accuracy.TrialsPerCondition = env.intVar("ACCURACY_TRIALS_PER_CONDITION", sim.Accuracy.TrialsPerCondition)
	if raw := os.Getenv("ACCURACY_CONDITIONS"); raw != "" {
		conds, err := parseConditions(raw)
		if err != nil {
			return nil, err
		}
		sim.Accuracy.Conditions = conds
	}

	sim.RT.N = env.intVar("RT_N", sim.RT.N)
	sim.RT.Shift = env.floatVar("RT_SHIFT", sim.RT.Shift)
	sim.RT.Mean = env.floatVar("RT_MEAN", sim.RT.Mean)
	sim.RT.SD = env.floatVar("RT_SD", sim.RT.SD)
	if env.err != nil {
		return nil, env.err
	}

	if path := os.Getenv("DESIGN_FILE"); path != "" {
		design, err := loadDesignFile(path)
		if err != nil {
			return nil, err
		}
		sim.Design = design
	}

	config.Database = DatabaseConfig{
		Driver: getEnvOrDefault("DB_DRIVER", config.Database.Driver),
		URL:    getEnvOrDefault("DATABASE_URL", ""),
	}
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadDesign decodes a YAML experiment design
func LoadDesign(r io.Reader) (experiment.Design, error) {
	var d experiment.Design
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return experiment.Design{}, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to decode experiment design")
	}
	if err := d.Validate(); err != nil {
		return experiment.Design{}, errors.Wrap(err, "invalid experiment design")
	}
	return d, nil
}

func loadDesignFile(path string) (experiment.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return experiment.Design{}, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to open DESIGN_FILE")
	}
	defer f.Close()
	return LoadDesign(f)
}

// parseConditions reads "Easy=0.95,Hard=0.75"
func parseConditions(raw string) ([]ConditionAccuracy, error) {
	var out []ConditionAccuracy
	for _, part := range strings.Split(raw, ",") {
		name, p, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			return nil, errors.ConfigInvalid(fmt.Sprintf("ACCURACY_CONDITIONS entry %q must be name=p", part))
		}
		prob, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("ACCURACY_CONDITIONS entry %q: %v", part, err))
		}
		out = append(out, ConditionAccuracy{Name: name, P: prob})
	}
	return out, nil
}

func validateConfig(config *Config) error {
	sim := config.Simulation
	if sim.ConfidenceLevel <= 0 || sim.ConfidenceLevel >= 1 {
		return errors.ConfigInvalid("CONFIDENCE_LEVEL must be within (0, 1)")
	}
	if sim.Normal.N <= 0 || sim.Accuracy.N <= 0 || sim.Accuracy.TrialsPerCondition <= 0 || sim.RT.N <= 0 {
		return errors.ConfigInvalid("sample counts must be positive")
	}
	if sim.Accuracy.P < 0 || sim.Accuracy.P > 1 {
		return errors.ConfigInvalid("ACCURACY_P must be within [0, 1]")
	}
	if len(sim.Accuracy.Conditions) == 0 {
		return errors.ConfigInvalid("at least one accuracy condition is required")
	}
	seen := make(map[string]bool)
	for _, c := range sim.Accuracy.Conditions {
		if c.P < 0 || c.P > 1 {
			return errors.ConfigInvalid(fmt.Sprintf("accuracy condition %s: p must be within [0, 1]", c.Name))
		}
		if seen[c.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("accuracy condition %s is repeated", c.Name))
		}
		seen[c.Name] = true
	}
	if err := sim.Design.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if config.Database.Enabled() {
		switch config.Database.Driver {
		case "postgres", "sqlite3":
		default:
			return errors.ConfigInvalid(fmt.Sprintf("DB_DRIVER %q is not supported", config.Database.Driver))
		}
	}
	return nil
}

func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses numeric variables, keeping the first malformed one.
// Unset variables keep their defaults; malformed ones are never ignored.
type envReader struct {
	err error
}

func (e *envReader) fail(key, want string, err error) {
	if e.err == nil {
		e.err = errors.ConfigInvalid(fmt.Sprintf("%s must be %s: %v", key, want, err))
	}
}

func (e *envReader) intVar(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, "an integer", err)
		return defaultValue
	}
	return intValue
}

func (e *envReader) floatVar(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		e.fail(key, "a number", err)
		return defaultValue
	}
	return floatValue
}

func (e *envReader) uintVar(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	u, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		e.fail(key, "a non-negative integer", err)
		return defaultValue
	}
	return u
}
