// Package config loads the purpose configuration that drives the
// calculators, and the plate files they run over.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"platecalc/plate"
)

const (
	EnvConfig   = "PLATECALC_CONFIG"
	EnvLogLevel = "PLATECALC_LOG_LEVEL"
	EnvWorkers  = "PLATECALC_WORKERS"

	DefaultPath = "platecalc.yaml"
)

var (
	ErrUnknownPurpose  = errors.New("unknown purpose")
	ErrUnknownTagGroup = errors.New("unknown tag group")
	ErrNoCalculation   = errors.New("purpose has no calculation")
	ErrAmbiguous       = errors.New("purpose has more than one calculation")
	ErrInvalid         = errors.New("invalid configuration")
)

type Config struct {
	Logging   LoggingConfig             `yaml:"logging"`
	Workers   int                       `yaml:"workers"`
	TagGroups map[string]TagGroupConfig `yaml:"tag_groups,omitempty"`
	Purposes  map[string]PurposeConfig  `yaml:"purposes"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Workers: 4,
		Purposes: map[string]PurposeConfig{
			"LB Lib PCR-XP": {
				Size: 96,
				ConcentrationBinning: &ConcentrationBinningConfig{
					SourceVolume:  decimalPtr(10),
					DiluentVolume: decimalPtr(25),
					Bins: []BinConfig{
						{Max: decimalPtr(25), Colour: intPtr(1), PCRCycles: intPtr(16)},
						{Min: decimalPtr(25), Max: decimalPtr(500), Colour: intPtr(2), PCRCycles: intPtr(12)},
						{Min: decimalPtr(500), Colour: intPtr(3), PCRCycles: intPtr(8)},
					},
				},
			},
			"LB Lib PCR-XP Norm": {
				Size: 96,
				NormalisedBinning: &NormalisedBinningConfig{
					TargetAmount:        decimalPtr(50),
					TargetVolume:        decimalPtr(20),
					MinimumSourceVolume: decimalPtr(0.2),
					Bins: []BinConfig{
						{Max: decimalPtr(25), Colour: intPtr(1), PCRCycles: intPtr(16)},
						{Min: decimalPtr(25), Colour: intPtr(2), PCRCycles: intPtr(14)},
					},
				},
			},
			"LB Lib Norm": {
				Size: 96,
				FixedNormalisation: &FixedNormalisationConfig{
					SourceVolume:  decimalPtr(2),
					DiluentVolume: decimalPtr(33),
				},
			},
		},
	}
}

// Path is the config file to load: the environment's choice, else the
// default.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return DefaultPath
}

// Load loads configuration from a YAML file, keeping the defaults when the
// file doesn't exist. A .env file in the working directory is read first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		// A file replaces the default purposes rather than merging into them.
		cfg.Purposes = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if w := os.Getenv(EnvWorkers); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s=%q is not a positive number", ErrInvalid, EnvWorkers, w)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks every purpose converts cleanly.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Workers)
	}
	for _, name := range c.PurposeNames() {
		p := c.Purposes[name]
		if _, err := p.Destination(); err != nil {
			return fmt.Errorf("purpose %q: %w", name, err)
		}
		if p.hasCalculation() {
			if _, err := p.Calculator(); err != nil {
				return fmt.Errorf("purpose %q: %w", name, err)
			}
		}
		if p.TagLayout != nil {
			if _, err := c.TagLayout(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) PurposeNames() []string {
	names := make([]string, 0, len(c.Purposes))
	for name := range c.Purposes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Purpose looks a purpose up by name, ignoring case.
func (c *Config) Purpose(name string) (PurposeConfig, error) {
	if p, ok := c.Purposes[name]; ok {
		return p, nil
	}
	for n, p := range c.Purposes {
		if strings.EqualFold(n, name) {
			return p, nil
		}
	}
	return PurposeConfig{}, fmt.Errorf("%w: %q", ErrUnknownPurpose, name)
}

// PurposeConfig describes the plate made by a purpose. At most one of the
// calculation sections may be set.
type PurposeConfig struct {
	// Labware names a standard plate, e.g. "384". Otherwise Size gives the
	// destination's well count. Rows and Columns take precedence over both.
	Labware string `yaml:"labware,omitempty"`
	Size    int    `yaml:"size,omitempty"`
	Rows    int    `yaml:"rows,omitempty"`
	Columns int    `yaml:"columns,omitempty"`

	ConcentrationBinning *ConcentrationBinningConfig `yaml:"concentration_binning,omitempty"`
	NormalisedBinning    *NormalisedBinningConfig    `yaml:"normalised_binning,omitempty"`
	FixedNormalisation   *FixedNormalisationConfig   `yaml:"fixed_normalisation,omitempty"`
	TagLayout            *TagLayoutConfig            `yaml:"tag_layout,omitempty"`
}

// Destination is the destination plate geometry, 96 wells unless
// configured otherwise.
func (p PurposeConfig) Destination() (plate.Geometry, error) {
	if p.Rows != 0 || p.Columns != 0 {
		return plate.NewGeometry(p.Rows, p.Columns)
	}
	if p.Labware != "" {
		return plate.DefaultLayout().Find(p.Labware)
	}
	if p.Size != 0 {
		return plate.ForSize(p.Size)
	}
	return plate.ForSize(96)
}

func (p PurposeConfig) hasCalculation() bool {
	return p.ConcentrationBinning != nil || p.NormalisedBinning != nil || p.FixedNormalisation != nil
}
