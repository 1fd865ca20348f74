package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Approval ApprovalConfig `mapstructure:"approval"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// ApprovalConfig holds vendor-approval workflow configuration
type ApprovalConfig struct {
	// PendingTTL is how long an order may sit in pendingVendorApproval before
	// the expiry worker moves it to expired. Zero disables auto-expiry.
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
	// ExpiryScanInterval is how often the expiry worker scans for overdue orders
	ExpiryScanInterval time.Duration `mapstructure:"expiry_scan_interval"`
}

// PricingConfig holds marketplace fee configuration
type PricingConfig struct {
	PlatformFeeRate    float64 `mapstructure:"platform_fee_rate"`
	PlatformFeeMinimum float64 `mapstructure:"platform_fee_minimum"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/ordering.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("approval.pending_ttl", 15*time.Minute)
	viper.SetDefault("approval.expiry_scan_interval", 30*time.Second)

	viper.SetDefault("pricing.platform_fee_rate", 0.05)
	viper.SetDefault("pricing.platform_fee_minimum", 1.00)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "ORDERING_PORT")
	viper.BindEnv("database.path", "ORDERING_DB_PATH")
	viper.BindEnv("logger.level", "ORDERING_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Pricing.PlatformFeeRate < 0 || c.Pricing.PlatformFeeRate >= 1 {
		return fmt.Errorf("pricing.platform_fee_rate out of range: %f", c.Pricing.PlatformFeeRate)
	}
	if c.Pricing.PlatformFeeMinimum < 0 {
		return fmt.Errorf("pricing.platform_fee_minimum must not be negative")
	}
	if c.Approval.PendingTTL < 0 {
		return fmt.Errorf("approval.pending_ttl must not be negative")
	}
	if c.Approval.PendingTTL > 0 && c.Approval.ExpiryScanInterval <= 0 {
		return fmt.Errorf("approval.expiry_scan_interval must be positive when pending_ttl is set")
	}
	return nil
}
