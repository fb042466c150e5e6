package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// HomarrConfig holds dashboard endpoint configuration.
type HomarrConfig struct {
	BaseUrl        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// AdapterConfig holds the adapter's own file locations and label contract.
type AdapterConfig struct {
	StateFile         string `mapstructure:"state_file"`
	BrandingFile      string `mapstructure:"branding_file"`
	DockerLabelPrefix string `mapstructure:"docker_label_prefix"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the top-level configuration struct.
type Config struct {
	Homarr  HomarrConfig  `mapstructure:"homarr"`
	Adapter AdapterConfig `mapstructure:"adapter"`
	Logging LoggingConfig `mapstructure:"log"`
}

// InitConfig sets defaults, points viper at the config file, and reads it.
// An absent file is not an error; defaults and environment variables still apply.
func InitConfig(path string) error {
	viper.SetDefault("homarr.base_url", "http://localhost:7575")
	viper.SetDefault("homarr.timeout_seconds", 10)
	viper.SetDefault("homarr.max_retries", 5)
	viper.SetDefault("adapter.state_file", "/var/lib/homarr-adapter/state.json")
	viper.SetDefault("adapter.branding_file", "/etc/homarr-adapter/branding.toml")
	viper.SetDefault("adapter.docker_label_prefix", "homarr")
	viper.SetDefault("log.level", "INFO")

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config") // Looks for config.toml
		viper.SetConfigType("toml")
		viper.AddConfigPath("/etc/homarr-adapter")
		viper.AddConfigPath(".")
	}

	// Read the config file if available.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &config, nil
}
