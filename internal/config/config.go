package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Run        RunConfig        `yaml:"run" mapstructure:"run"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Places API settings.
type GoogleConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	StreetViewURL  string  `yaml:"street_view_url" mapstructure:"street_view_url"`
	StreetViewSize string  `yaml:"street_view_size" mapstructure:"street_view_size"`
	Query          string  `yaml:"query" mapstructure:"query"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig configures the per-place search strategies.
type SearchConfig struct {
	RadiusMeters    int     `yaml:"radius_meters" mapstructure:"radius_meters"`
	GridStepDegrees float64 `yaml:"grid_step_degrees" mapstructure:"grid_step_degrees"`
	PacingMS        int     `yaml:"pacing_ms" mapstructure:"pacing_ms"`
	MaxExtraPages   int     `yaml:"max_extra_pages" mapstructure:"max_extra_pages"`
	RetryAttempts   int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMS  int     `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
}

// ThresholdsConfig holds the population cut-offs between strategies.
type ThresholdsConfig struct {
	Min           int64 `yaml:"min" mapstructure:"min"`
	PaginationMin int64 `yaml:"pagination_min" mapstructure:"pagination_min"`
	PaginationMax int64 `yaml:"pagination_max" mapstructure:"pagination_max"`
	GridMin       int64 `yaml:"grid_min" mapstructure:"grid_min"`
}

// OutputConfig configures result capping and the written artifacts.
type OutputConfig struct {
	MaxResults  int      `yaml:"max_results" mapstructure:"max_results"`
	CapScope    string   `yaml:"cap_scope" mapstructure:"cap_scope"`
	Dedup       bool     `yaml:"dedup" mapstructure:"dedup"`
	LogSkips    bool     `yaml:"log_skips" mapstructure:"log_skips"`
	SkipLogPath string   `yaml:"skip_log_path" mapstructure:"skip_log_path"`
	SaveJSON    bool     `yaml:"save_json" mapstructure:"save_json"`
	JSONDir     string   `yaml:"json_dir" mapstructure:"json_dir"`
	TablePath   string   `yaml:"table_path" mapstructure:"table_path"`
	Formats     []string `yaml:"formats" mapstructure:"formats"`
	SummaryPath string   `yaml:"summary_path" mapstructure:"summary_path"`
}

// InputConfig configures the place source.
type InputConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`
	TestMode  bool   `yaml:"test_mode" mapstructure:"test_mode"`
	TestLimit int    `yaml:"test_limit" mapstructure:"test_limit"`
}

// RunConfig configures execution.
type RunConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreConfig configures the optional run ledger.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PricingConfig holds per-call Places pricing in USD.
type PricingConfig struct {
	TextSearch float64 `yaml:"text_search" mapstructure:"text_search"`
	Details    float64 `yaml:"details" mapstructure:"details"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level    string `yaml:"level" mapstructure:"level"`
	Format   string `yaml:"format" mapstructure:"format"`
	Progress bool   `yaml:"progress" mapstructure:"progress"`
}

// Cap scopes for output.max_results.
const (
	CapScopeRun   = "run"
	CapScopePlace = "place"
)

// Supported table formats.
var supportedFormats = map[string]bool{
	"xlsx":    true,
	"csv":     true,
	"geojson": true,
	"shp":     true,
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RAMEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("google.key", "RAMEN_GOOGLE_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind google key")
	}

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("google.street_view_url", "https://maps.googleapis.com/maps/api/streetview")
	v.SetDefault("google.street_view_size", "600x300")
	v.SetDefault("google.query", "ramen")
	v.SetDefault("google.timeout_secs", 10)
	v.SetDefault("google.rate_limit", 10)
	v.SetDefault("search.radius_meters", 5000)
	v.SetDefault("search.grid_step_degrees", 0.045)
	v.SetDefault("search.pacing_ms", 2000)
	v.SetDefault("search.max_extra_pages", 2)
	v.SetDefault("search.retry_attempts", 3)
	v.SetDefault("search.retry_backoff_ms", 2000)
	v.SetDefault("thresholds.min", 100_000)
	v.SetDefault("thresholds.pagination_min", 1_000_000)
	v.SetDefault("thresholds.pagination_max", 5_000_000)
	v.SetDefault("thresholds.grid_min", 5_000_001)
	v.SetDefault("output.max_results", 60)
	v.SetDefault("output.cap_scope", CapScopeRun)
	v.SetDefault("output.dedup", true)
	v.SetDefault("output.log_skips", true)
	v.SetDefault("output.skip_log_path", "logs/skipped_cities.log")
	v.SetDefault("output.save_json", true)
	v.SetDefault("output.json_dir", "json_results/")
	v.SetDefault("output.table_path", "ramen_shops_usa.xlsx")
	v.SetDefault("output.formats", []string{"xlsx"})
	v.SetDefault("output.summary_path", "")
	v.SetDefault("input.path", "us_all_cities_sample.xlsx")
	v.SetDefault("input.sheet", "")
	v.SetDefault("input.test_mode", false)
	v.SetDefault("input.test_limit", 5)
	v.SetDefault("run.concurrency", 1)
	v.SetDefault("store.driver", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("pricing.text_search", 0.032)
	v.SetDefault("pricing.details", 0.017)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.progress", true)
}

// Validate checks the settings a sweep cannot run without. The API key check
// is what makes startup fail fast when GOOGLE_API_KEY is missing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Google.Key) == "" {
		return eris.New("config: GOOGLE_API_KEY not set in environment variables")
	}
	return c.ValidateOffline()
}

// ValidateOffline checks everything except credentials, for commands that
// never call the API.
func (c *Config) ValidateOffline() error {
	t := c.Thresholds
	if t.Min < 0 || t.PaginationMin < t.Min || t.PaginationMax < t.PaginationMin || t.GridMin <= t.PaginationMax {
		return eris.Errorf("config: thresholds must satisfy 0 <= min <= pagination_min <= pagination_max < grid_min (got %d/%d/%d/%d)",
			t.Min, t.PaginationMin, t.PaginationMax, t.GridMin)
	}
	if c.Search.RadiusMeters <= 0 {
		return eris.New("config: search.radius_meters must be positive")
	}
	if c.Output.MaxResults <= 0 {
		return eris.New("config: output.max_results must be positive")
	}
	switch c.Output.CapScope {
	case CapScopeRun, CapScopePlace:
	default:
		return eris.Errorf("config: output.cap_scope must be %q or %q, got %q", CapScopeRun, CapScopePlace, c.Output.CapScope)
	}
	for _, f := range c.Output.Formats {
		if !supportedFormats[strings.ToLower(f)] {
			return eris.Errorf("config: unsupported output format %q", f)
		}
	}
	switch c.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		return eris.Errorf("config: unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.Driver != "" && c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required when store.driver is set")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
