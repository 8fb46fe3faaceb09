// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DefaultTargetURL is the form this tool was built for. Any other multi-step
// form can be scanned by passing a different URL to the scan command.
const DefaultTargetURL = "https://udyamregistration.gov.in/UdyamRegistration.aspx"

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Scan    ScanConfig    `mapstructure:"scan" yaml:"scan"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless        bool     `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors bool     `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	UserAgent       string   `mapstructure:"user_agent" yaml:"user_agent"`
	WindowWidth     int      `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight    int      `mapstructure:"window_height" yaml:"window_height"`
	Args            []string `mapstructure:"args" yaml:"args"`
}

// NetworkConfig tunes waits and timeouts around page interaction.
type NetworkConfig struct {
	// NavigationTimeout bounds the initial page load.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// PostLoadWait gives the landing page time to settle before metadata capture.
	PostLoadWait time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	// FormWaitTimeout bounds the per-step wait for a form element to appear.
	FormWaitTimeout time.Duration `mapstructure:"form_wait_timeout" yaml:"form_wait_timeout"`
	// AdvanceSettle is how long to wait after clicking a step navigation control.
	AdvanceSettle time.Duration `mapstructure:"advance_settle" yaml:"advance_settle"`
	// ActionsPerSecond throttles navigation and click actions against the
	// target. The portals this tool scans rate-limit aggressively.
	ActionsPerSecond float64 `mapstructure:"actions_per_second" yaml:"actions_per_second"`
}

// ScanConfig holds per-run settings, mostly populated from CLI flags.
type ScanConfig struct {
	// Steps is the number of form steps the target is expected to have.
	Steps  int    `mapstructure:"steps" yaml:"steps"`
	Output string `mapstructure:"output" yaml:"output"`
}

// StoreConfig configures the optional Postgres run archive. An empty DSN
// disables archiving.
type StoreConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "formscope")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "90s")
	v.SetDefault("network.post_load_wait", "5s")
	v.SetDefault("network.form_wait_timeout", "10s")
	v.SetDefault("network.advance_settle", "3s")
	v.SetDefault("network.actions_per_second", 1.0)

	// -- Scan --
	v.SetDefault("scan.steps", 2)
	v.SetDefault("scan.output", "udyam_form_structure.json")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults above, but fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Scan.Steps <= 0 {
		return fmt.Errorf("scan.steps must be a positive integer")
	}
	if c.Network.FormWaitTimeout <= 0 {
		return fmt.Errorf("network.form_wait_timeout must be a positive duration")
	}
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be a positive duration")
	}
	if c.Network.ActionsPerSecond <= 0 {
		return fmt.Errorf("network.actions_per_second must be positive")
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("browser window dimensions must be positive")
	}
	return nil
}
