// Package config loads the application configuration from slopekit.yaml with
// environment expansion and .env support.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/geostab/slopekit/internal/errors"
	"github.com/geostab/slopekit/internal/solve"
)

// Config represents the application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Solver  SolverConfig  `yaml:"solver"`
	Store   StoreConfig   `yaml:"store"`
	Monitor MonitorConfig `yaml:"monitor"`
	Docs    DocsConfig    `yaml:"docs"`
}

// InputConfig selects the analysis input and discretization.
type InputConfig struct {
	Path   string `yaml:"path"`
	Slices int    `yaml:"slices,omitempty"`
	Method string `yaml:"method,omitempty"`
}

// SolverConfig tunes the iterative solvers.
type SolverConfig struct {
	Tolerance float64 `yaml:"tolerance,omitempty"`
	MaxIter   int     `yaml:"max_iterations,omitempty"`
	Workers   int     `yaml:"workers,omitempty"`
}

// StoreConfig configures the run history database.
type StoreConfig struct {
	Path    string `yaml:"path,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

// Duration parses Go duration strings ("2s", "1h") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MonitorConfig configures the monitor daemon.
type MonitorConfig struct {
	Interval    Duration `yaml:"interval,omitempty"`
	Debounce    Duration `yaml:"debounce,omitempty"`
	ListenAddr  string   `yaml:"listen_addr,omitempty"`
	NATSURL     string   `yaml:"nats_url,omitempty"`
	NATSSubject string   `yaml:"nats_subject,omitempty"`
}

// DocsConfig points at the documentation source tree and its manifest.
type DocsConfig struct {
	SourceDir  string `yaml:"source_dir,omitempty"`
	ConfigPath string `yaml:"config_path,omitempty"`
}

// New builds a configuration around a single input path with defaults
// applied, for commands run without a config file.
func New(inputPath string) *Config {
	cfg := &Config{Input: InputConfig{Path: inputPath}}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the specified file. A .env file beside the
// working directory is loaded first (existing environment wins), and ${VAR}
// references inside the YAML are expanded before parsing.
func Load(configPath string) (*Config, error) {
	// Missing .env is normal.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigNotFound(configPath)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal,
			"failed to read config file").WithContext("path", configPath)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal,
			"failed to unmarshal config").WithContext("path", configPath)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Input.Slices == 0 {
		c.Input.Slices = 20
	}
	if c.Input.Method == "" {
		c.Input.Method = string(solve.MethodBishop)
	}
	if c.Solver.Tolerance == 0 {
		c.Solver.Tolerance = 1e-6
	}
	if c.Solver.MaxIter == 0 {
		c.Solver.MaxIter = 100
	}
	if c.Solver.Workers == 0 {
		c.Solver.Workers = 4
	}
	if c.Store.Path == "" {
		c.Store.Path = "slopekit.db"
	}
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = Duration(time.Hour)
	}
	if c.Monitor.Debounce == 0 {
		c.Monitor.Debounce = Duration(2 * time.Second)
	}
	if c.Monitor.ListenAddr == "" {
		c.Monitor.ListenAddr = ":8080"
	}
	if c.Monitor.NATSSubject == "" {
		c.Monitor.NATSSubject = "slopekit.runs"
	}
	if c.Docs.SourceDir == "" {
		c.Docs.SourceDir = "docs"
	}
	if c.Docs.ConfigPath == "" {
		c.Docs.ConfigPath = "mkdocs.yml"
	}
}

func (c *Config) validate() error {
	if c.Input.Path == "" {
		return errors.ConfigRequired("input.path")
	}
	if _, err := solve.ParseMethod(c.Input.Method); err != nil {
		return errors.ValidationFailed("input.method", err.Error())
	}
	if c.Input.Slices < 1 {
		return errors.ValidationFailed("input.slices", "must be at least 1")
	}
	if c.Solver.Tolerance <= 0 {
		return errors.ValidationFailed("solver.tolerance", "must be positive")
	}
	if c.Monitor.Interval.Std() < time.Second {
		return errors.ValidationFailed("monitor.interval", "must be at least one second")
	}
	return nil
}

// SolveOptions converts the solver section to solve.Options.
func (c *Config) SolveOptions() solve.Options {
	return solve.Options{Tol: c.Solver.Tolerance, MaxIter: c.Solver.MaxIter}
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.New(errors.CategoryConfig, errors.SeverityFatal,
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath))
	}

	example := Config{
		Input: InputConfig{
			Path:   "dam.xlsx",
			Slices: 20,
			Method: string(solve.MethodBishop),
		},
		Solver: SolverConfig{
			Tolerance: 1e-6,
			MaxIter:   100,
			Workers:   4,
		},
		Store: StoreConfig{
			Path:    "slopekit.db",
			Enabled: true,
		},
		Monitor: MonitorConfig{
			Interval:    Duration(time.Hour),
			Debounce:    Duration(2 * time.Second),
			ListenAddr:  ":8080",
			NATSURL:     "${SLOPEKIT_NATS_URL}",
			NATSSubject: "slopekit.runs",
		},
		Docs: DocsConfig{
			SourceDir:  "docs",
			ConfigPath: "mkdocs.yml",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.Wrap(err, errors.CategoryConfig, errors.SeverityError,
			"failed to marshal config")
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CategoryConfig, errors.SeverityError,
			"failed to write config file").WithContext("path", configPath)
	}
	return nil
}
