package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Intake      IntakeConfig     `mapstructure:"intake"`
	Validation  ValidationConfig `mapstructure:"validation"`
	Monitoring  MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	HTTPPort     int `mapstructure:"http_port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	IdleTimeout  int `mapstructure:"idle_timeout"`
}

// IntakeConfig bounds a single upload
type IntakeConfig struct {
	MaxRows        int   `mapstructure:"max_rows"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// ValidationConfig carries the documented bounds the field validators apply
// to raw values
type ValidationConfig struct {
	HourlyRateCap       float64 `mapstructure:"hourly_rate_cap"`
	WeeklyHoursCap      float64 `mapstructure:"weekly_hours_cap"`
	MaxTaskHours        float64 `mapstructure:"max_task_hours"`
	MinDueDateYear      int     `mapstructure:"min_due_date_year"`
	DueDateHorizonYears int     `mapstructure:"due_date_horizon_years"`
}

// MonitoringConfig represents monitoring configuration
type MonitoringConfig struct {
	MetricsEnabled  bool   `mapstructure:"metrics_enabled"`
	HealthCheckPath string `mapstructure:"health_check_path"`
	LogLevel        string `mapstructure:"log_level"`
}

// Load loads configuration from file and environment
func Load() (Config, error) {
	var config Config

	viper.SetDefault("environment", "development")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 30)

	viper.SetDefault("intake.max_rows", 50000)
	viper.SetDefault("intake.max_upload_bytes", 32<<20) // 32 MiB

	viper.SetDefault("validation.hourly_rate_cap", 1000)
	viper.SetDefault("validation.weekly_hours_cap", 168)
	viper.SetDefault("validation.max_task_hours", 10000)
	viper.SetDefault("validation.min_due_date_year", 2000)
	viper.SetDefault("validation.due_date_horizon_years", 5)

	viper.SetDefault("monitoring.metrics_enabled", true)
	viper.SetDefault("monitoring.health_check_path", "/health")
	viper.SetDefault("monitoring.log_level", "info")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/skedplan")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SKEDPLAN")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// DefaultValidation returns the documented validation bounds without touching
// viper, for library callers and tests.
func DefaultValidation() ValidationConfig {
	return ValidationConfig{
		HourlyRateCap:       1000,
		WeeklyHoursCap:      168,
		MaxTaskHours:        10000,
		MinDueDateYear:      2000,
		DueDateHorizonYears: 5,
	}
}

// validateConfig validates the loaded configuration
func validateConfig(config Config) error {
	if config.Server.HTTPPort <= 0 || config.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", config.Server.HTTPPort)
	}

	if config.Intake.MaxRows <= 0 {
		return fmt.Errorf("intake max rows must be positive")
	}

	if config.Intake.MaxUploadBytes <= 0 {
		return fmt.Errorf("intake max upload bytes must be positive")
	}

	if config.Validation.HourlyRateCap <= 0 {
		return fmt.Errorf("hourly rate cap must be positive")
	}

	if config.Validation.WeeklyHoursCap <= 0 {
		return fmt.Errorf("weekly hours cap must be positive")
	}

	if config.Validation.DueDateHorizonYears <= 0 {
		return fmt.Errorf("due date horizon must be positive")
	}

	return nil
}
