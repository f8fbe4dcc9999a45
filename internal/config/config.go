package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "LOGOS"

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Storage       StorageConfig       `yaml:"storage" envconfig:"STORAGE"`
	Layout        LayoutConfig        `yaml:"layout" envconfig:"LAYOUT"`
	Narrative     NarrativeConfig     `yaml:"narrative" envconfig:"NARRATIVE"`
	Report        ReportConfig        `yaml:"report" envconfig:"REPORT"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// StorageConfig locates the per-run upload folders.
type StorageConfig struct {
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR"`
}

// LayoutConfig points at an external sheet layout. An empty File selects the
// embedded layout.
type LayoutConfig struct {
	File string `yaml:"file" envconfig:"FILE"`
}

// NarrativeConfig configures the completion model used for report prose.
type NarrativeConfig struct {
	Provider    string        `yaml:"provider" envconfig:"PROVIDER"`
	Model       string        `yaml:"model" envconfig:"MODEL"`
	APIKey      string        `yaml:"api_key" envconfig:"API_KEY"`
	Concurrency int           `yaml:"concurrency" envconfig:"CONCURRENCY"`
	RPS         float64       `yaml:"rps" envconfig:"RPS"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// ReportConfig configures report composition and PDF rendering.
type ReportConfig struct {
	Title      string        `yaml:"title" envconfig:"TITLE"`
	TopN       int           `yaml:"top_n" envconfig:"TOP_N"`
	ChromePath string        `yaml:"chrome_path" envconfig:"CHROME_PATH"`
	PDFTimeout time.Duration `yaml:"pdf_timeout" envconfig:"PDF_TIMEOUT"`
}

// ObservabilityConfig configures tracing and metrics exporters.
type ObservabilityConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first when present.
//
// An empty path searches the usual locations for config.yaml.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags so envconfig only touches variables that are set.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile decodes a YAML file over cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if c.Storage.UploadsDir == "" {
		return fmt.Errorf("uploads directory must be set")
	}

	// Logs are always structured JSON
	c.Logging.Format = "json"

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	switch c.Narrative.Provider {
	case ProviderGemini, ProviderStatic:
	default:
		return fmt.Errorf("unknown narrative provider: %q", c.Narrative.Provider)
	}

	if c.Narrative.Concurrency <= 0 {
		return fmt.Errorf("narrative concurrency must be positive")
	}

	if c.Report.TopN <= 0 {
		return fmt.Errorf("report top_n must be positive")
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("sample ratio must be within [0,1]: %v", c.Observability.SampleRatio)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  32 << 20, // 32MB
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Storage: StorageConfig{
			UploadsDir: DefaultUploadsDir,
		},
		Narrative: NarrativeConfig{
			Provider:    ProviderStatic,
			Model:       DefaultNarrativeModel,
			Concurrency: 3,
			RPS:         1,
			Timeout:     2 * time.Minute,
		},
		Report: ReportConfig{
			Title:      DefaultReportTitle,
			TopN:       DefaultTopN,
			PDFTimeout: time.Minute,
		},
		Observability: ObservabilityConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
