package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"slices"
	"strings"

	"github.com/compozy/m2release/internal/domain"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "M2RELEASE"

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type Config struct {
	ListenAddr     string           `mapstructure:"listen_addr"`
	QueueDir       string           `mapstructure:"queue_dir"`
	IdentityHeader string           `mapstructure:"identity_header"`
	LogLevel       string           `mapstructure:"log_level"`
	Projects       []domain.Project `mapstructure:"projects"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     "localhost:8080",
		QueueDir:       ".m2release-queue",
		IdentityHeader: "X-Forwarded-User",
		LogLevel:       "info",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen_addr: %w", err)
	}
	if c.QueueDir == "" {
		return fmt.Errorf("queue_dir cannot be empty")
	}
	// Check for path traversal in queue directory
	if strings.Contains(c.QueueDir, "..") {
		return fmt.Errorf("queue_dir contains invalid path traversal")
	}
	if strings.TrimSpace(c.IdentityHeader) == "" {
		return fmt.Errorf("identity_header cannot be empty")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s (expected debug, info, warn or error)", c.LogLevel)
	}
	seen := make(map[string]bool, len(c.Projects))
	for i := range c.Projects {
		p := &c.Projects[i]
		if err := ValidateProject(p); err != nil {
			return fmt.Errorf("invalid project %q: %w", p.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate project: %s", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// ValidateProject validates a single project entry (exported for reuse)
func ValidateProject(p *domain.Project) error {
	if !projectNamePattern.MatchString(p.Name) || strings.Contains(p.Name, "..") {
		return fmt.Errorf("invalid name format")
	}
	params := make(map[string]bool, len(p.ParameterDefinitions))
	for _, d := range p.ParameterDefinitions {
		if strings.TrimSpace(d.Name) == "" {
			return errors.New("parameter name cannot be empty")
		}
		if params[d.Name] {
			return fmt.Errorf("duplicate parameter: %s", d.Name)
		}
		params[d.Name] = true
		switch d.Kind {
		case "", domain.ParameterKindString, domain.ParameterKindText,
			domain.ParameterKindBoolean, domain.ParameterKindPassword:
		case domain.ParameterKindChoice:
			if len(d.Choices) == 0 {
				return fmt.Errorf("choice parameter %s has no choices", d.Name)
			}
		default:
			return fmt.Errorf("unknown kind %q for parameter %s", d.Kind, d.Name)
		}
	}
	return nil
}

// LoadConfig reads .m2release.yaml from the working directory, or configFile
// when given, and applies M2RELEASE_* environment overrides.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".m2release")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	// Configure environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("queue_dir", defaults.QueueDir)
	v.SetDefault("identity_header", defaults.IdentityHeader)
	v.SetDefault("log_level", defaults.LogLevel)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
