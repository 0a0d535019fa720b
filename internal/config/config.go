// File: internal/config/config.go
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
	Bearing  BearingConfig  `mapstructure:"bearing" yaml:"bearing"`
	Circle   CircleConfig   `mapstructure:"circle" yaml:"circle"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless          bool           `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors   bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath          string         `mapstructure:"exec_path" yaml:"exec_path"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	Viewport          ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ElementTimeout    time.Duration  `mapstructure:"element_timeout" yaml:"element_timeout"`
}

// ViewportConfig is the emulated window size in CSS pixels.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// DatabaseConfig holds the database connection details. An empty URL disables
// run history persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ReportConfig controls the JSON run report. An empty path disables it.
type ReportConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// BearingConfig configures the "follow the direction" game.
type BearingConfig struct {
	URL                  string `mapstructure:"url" yaml:"url"`
	FrameSelector        string `mapstructure:"frame_selector" yaml:"frame_selector"`
	RangeSelector        string `mapstructure:"range_selector" yaml:"range_selector"`
	RangeIndex           int    `mapstructure:"range_index" yaml:"range_index"`
	InstructionsSelector string `mapstructure:"instructions_selector" yaml:"instructions_selector"`
	MarkerSelector       string `mapstructure:"marker_selector" yaml:"marker_selector"`
	ScoreSelector        string `mapstructure:"score_selector" yaml:"score_selector"`
	// TargetSelector is a template; {x} and {y} are replaced with the computed target.
	TargetSelector string        `mapstructure:"target_selector" yaml:"target_selector"`
	ScoreThreshold int           `mapstructure:"score_threshold" yaml:"score_threshold"`
	StepLength     float64       `mapstructure:"step_length" yaml:"step_length"`
	SettleDelay    time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	// MaxRounds stops the loop after this many rounds; 0 plays until the threshold.
	MaxRounds int `mapstructure:"max_rounds" yaml:"max_rounds"`
}

// CircleConfig configures the "perfect circle" game.
type CircleConfig struct {
	URL             string                    `mapstructure:"url" yaml:"url"`
	ConsentSelector string                    `mapstructure:"consent_selector" yaml:"consent_selector"`
	StartSelector   string                    `mapstructure:"start_selector" yaml:"start_selector"`
	CanvasSelector  string                    `mapstructure:"canvas_selector" yaml:"canvas_selector"`
	ResultSelector  string                    `mapstructure:"result_selector" yaml:"result_selector"`
	ObserveDelay    time.Duration             `mapstructure:"observe_delay" yaml:"observe_delay"`
	PointerRate     float64                   `mapstructure:"pointer_rate" yaml:"pointer_rate"`
	Scenarios       map[string]ScenarioConfig `mapstructure:"scenarios" yaml:"scenarios"`
}

// ScenarioConfig parameterizes one circle drawing pass.
type ScenarioConfig struct {
	// RadiusRatio scales half the canvas width into the drawn radius.
	RadiusRatio float64 `mapstructure:"radius_ratio" yaml:"radius_ratio"`
	// Density multiplies the radius to get the point count; 0 uses the radius itself.
	Density float64 `mapstructure:"density" yaml:"density"`
	// BiasFactor places a leading miss point at center + (radius*BiasFactor, 0); 0 disables it.
	BiasFactor float64 `mapstructure:"bias_factor" yaml:"bias_factor"`
}

// ScenarioNames returns the configured scenario names in a stable order.
func (c CircleConfig) ScenarioNames() []string {
	names := make([]string, 0, len(c.Scenarios))
	for name := range c.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scenario looks a scenario up by name, case-insensitively (viper lowercases keys).
func (c CircleConfig) Scenario(name string) (ScenarioConfig, bool) {
	sc, ok := c.Scenarios[strings.ToLower(name)]
	return sc, ok
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "gamepilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.viewport.width", 1280)
	v.SetDefault("browser.viewport.height", 900)
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.element_timeout", "10s")

	// -- Persistence --
	v.SetDefault("database.url", "")
	v.SetDefault("report.path", "")

	// -- Bearing game --
	v.SetDefault("bearing.url", "https://www.mathsisfun.com/games/direction-bearing-.html")
	v.SetDefault("bearing.frame_selector", "iframe")
	v.SetDefault("bearing.range_selector", "#rangeType")
	v.SetDefault("bearing.range_index", 5)
	v.SetDefault("bearing.instructions_selector", "#instr")
	v.SetDefault("bearing.marker_selector", "#smile")
	v.SetDefault("bearing.score_selector", "#score")
	v.SetDefault("bearing.target_selector", `canvas[style*="left: {x}px; top: {y}px;"]`)
	v.SetDefault("bearing.score_threshold", 500)
	v.SetDefault("bearing.step_length", 30)
	v.SetDefault("bearing.settle_delay", "3s")
	v.SetDefault("bearing.max_rounds", 0)

	// -- Circle game --
	v.SetDefault("circle.url", "https://neal.fun/perfect-circle/")
	v.SetDefault("circle.consent_selector", "button.fc-cta-consent")
	v.SetDefault("circle.start_selector", `//button[normalize-space(.)="Go"]`)
	v.SetDefault("circle.canvas_selector", "svg")
	v.SetDefault("circle.result_selector", "")
	v.SetDefault("circle.observe_delay", "10s")
	v.SetDefault("circle.pointer_rate", 0)
	v.SetDefault("circle.scenarios.worst.radius_ratio", 0.75)
	v.SetDefault("circle.scenarios.worst.bias_factor", 0.3)
	v.SetDefault("circle.scenarios.best.radius_ratio", 0.75)
	v.SetDefault("circle.scenarios.best.density", 1.2)
	v.SetDefault("circle.scenarios.two-thirds.radius_ratio", 0.76)
	v.SetDefault("circle.scenarios.two-thirds.bias_factor", 0.75)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("database.url", "GAMEPILOT_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Browser.Viewport.Width < 0 || c.Browser.Viewport.Height < 0 {
		return fmt.Errorf("browser.viewport dimensions must not be negative")
	}
	if c.Browser.NavigationTimeout < 0 || c.Browser.ElementTimeout < 0 {
		return fmt.Errorf("browser timeouts must not be negative")
	}
	if err := c.Bearing.Validate(); err != nil {
		return fmt.Errorf("bearing configuration invalid: %w", err)
	}
	if err := c.Circle.Validate(); err != nil {
		return fmt.Errorf("circle configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the bearing game settings.
func (b *BearingConfig) Validate() error {
	if b.ScoreThreshold < 0 {
		return fmt.Errorf("score_threshold must not be negative")
	}
	if b.StepLength <= 0 {
		return fmt.Errorf("step_length must be positive")
	}
	if b.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must not be negative")
	}
	if b.MaxRounds < 0 {
		return fmt.Errorf("max_rounds must not be negative")
	}
	if b.RangeIndex < 0 {
		return fmt.Errorf("range_index must not be negative")
	}
	if !strings.Contains(b.TargetSelector, "{x}") || !strings.Contains(b.TargetSelector, "{y}") {
		return fmt.Errorf("target_selector must contain {x} and {y} placeholders")
	}
	if b.InstructionsSelector == "" || b.MarkerSelector == "" || b.ScoreSelector == "" {
		return fmt.Errorf("instructions_selector, marker_selector, and score_selector are required")
	}
	return nil
}

// Validate checks the circle game settings and every scenario.
func (c *CircleConfig) Validate() error {
	if c.CanvasSelector == "" {
		return fmt.Errorf("canvas_selector is required")
	}
	if c.ObserveDelay < 0 {
		return fmt.Errorf("observe_delay must not be negative")
	}
	if c.PointerRate < 0 {
		return fmt.Errorf("pointer_rate must not be negative")
	}
	for _, name := range c.ScenarioNames() {
		if err := c.Scenarios[name].Validate(); err != nil {
			return fmt.Errorf("scenario %q: %w", name, err)
		}
	}
	return nil
}

// Validate checks a single scenario.
func (s ScenarioConfig) Validate() error {
	if s.RadiusRatio <= 0 {
		return fmt.Errorf("radius_ratio must be positive")
	}
	if s.Density < 0 {
		return fmt.Errorf("density must not be negative")
	}
	if s.BiasFactor < 0 {
		return fmt.Errorf("bias_factor must not be negative")
	}
	return nil
}
