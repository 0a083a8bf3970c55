package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/class-scheduler/pkg/core/constraints"
	"github.com/jakechorley/class-scheduler/pkg/core/scoring"
	"github.com/jakechorley/class-scheduler/pkg/core/solver"
)

const configBaseName = "scheduler_config"

// DefaultServerAddr is used by serve when no address is configured
const DefaultServerAddr = ":8080"

// DefaultScheduleLimit caps the ranked schedules kept when a profile sets no limit
const DefaultScheduleLimit = 100

// SearchConfig bounds the schedule search
type SearchConfig struct {
	Workers    int    `yaml:"workers,omitempty" validate:"min=0,max=256"`
	NodeBudget uint64 `yaml:"nodeBudget,omitempty"`
	// Limit is how many ranked schedules to keep; an explicit 0 keeps all of them
	Limit *int `yaml:"limit,omitempty" validate:"omitempty,min=0"`
}

// ScheduleLimit returns the configured limit, or DefaultScheduleLimit when none is set
func (s SearchConfig) ScheduleLimit() int {
	if s.Limit == nil {
		return DefaultScheduleLimit
	}
	return *s.Limit
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Config is a saved solver profile: what to schedule, what to avoid, and how to rank
type Config struct {
	Term        string `yaml:"term" validate:"required"`
	CatalogPath string `yaml:"catalogPath,omitempty"`
	DatabaseURL string `yaml:"databaseURL,omitempty"`
	Timezone    string `yaml:"timezone,omitempty"`

	Includes       []string              `yaml:"includes" validate:"required,min=1,dive,required"`
	Constraints    []map[string]any      `yaml:"constraints,omitempty"`
	Priorities     scoring.Priorities    `yaml:"priorities"`
	Tuning         scoring.Tuning        `yaml:"tuning,omitempty"`
	SubjectFilters solver.SubjectFilters `yaml:"subjectFilters,omitempty"`

	Search SearchConfig `yaml:"search,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from scheduler_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads scheduler_config.<env>.yaml, or scheduler_config.yaml when env is empty
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(configFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, then the includes, constraints and time zone
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.ParsedIncludes(); err != nil {
		return fmt.Errorf("invalid includes: %w", err)
	}

	if _, err := cfg.ParsedConstraints(); err != nil {
		return fmt.Errorf("invalid constraints: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	return nil
}

// ParsedIncludes parses the include selectors in order
func (c *Config) ParsedIncludes() ([]solver.Include, error) {
	return solver.ParseIncludes(c.Includes)
}

// ConstraintSpecs decodes the raw constraint entries
func (c *Config) ConstraintSpecs() ([]constraints.Spec, error) {
	return constraints.DecodeSpecs(c.Constraints)
}

// ParsedConstraints decodes and builds the typed constraints
func (c *Config) ParsedConstraints() ([]constraints.Constraint, error) {
	specs, err := c.ConstraintSpecs()
	if err != nil {
		return nil, err
	}
	return constraints.FromSpecs(specs)
}

// Location returns the campus time zone, UTC when unset
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ServerAddr returns the configured listen address or the default
func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultServerAddr
	}
	return c.Server.Addr
}

func configFileName(env string) string {
	if env == "" {
		return configBaseName + ".yaml"
	}
	return fmt.Sprintf("%s.%s.yaml", configBaseName, env)
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
