package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig     `yaml:"store" mapstructure:"store"`
	Log        LogConfig       `yaml:"log" mapstructure:"log"`
	Server     ServerConfig    `yaml:"server" mapstructure:"server"`
	Fetch      FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Pipeline   PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Providers  ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Profile    ProfileConfig   `yaml:"profile" mapstructure:"profile"`
	Discovery  DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Scoring    ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	PresetsDir string          `yaml:"presets_dir" mapstructure:"presets_dir"`
	ExportDir  string          `yaml:"export_dir" mapstructure:"export_dir"`
}

// StoreConfig configures the profile cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	RedisURL    string `yaml:"redis_url" mapstructure:"redis_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP server. A non-empty BearerToken is
// required on every route except /health.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	BearerToken    string   `yaml:"bearer_token" mapstructure:"bearer_token"`
}

// FetchConfig configures website page fetching.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyKB   int    `yaml:"max_body_kb" mapstructure:"max_body_kb"`
}

// PipelineConfig configures the lead pipeline stages.
type PipelineConfig struct {
	Concurrency  int `yaml:"concurrency" mapstructure:"concurrency"`
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
}

// ProvidersConfig holds credentials and endpoints for every external provider.
type ProvidersConfig struct {
	SearchPreference string            `yaml:"search_preference" mapstructure:"search_preference"`
	Serper           APIConfig         `yaml:"serper" mapstructure:"serper"`
	Perplexity       PerplexityConfig  `yaml:"perplexity" mapstructure:"perplexity"`
	Jina             APIConfig         `yaml:"jina" mapstructure:"jina"`
	NewsAPI          APIConfig         `yaml:"newsapi" mapstructure:"newsapi"`
	Hunter           APIConfig         `yaml:"hunter" mapstructure:"hunter"`
	EmailVerify      EmailVerifyConfig `yaml:"email_verify" mapstructure:"email_verify"`
	OpenCorporates   APIConfig         `yaml:"opencorporates" mapstructure:"opencorporates"`
	Google           APIConfig         `yaml:"google" mapstructure:"google"`
	Anthropic        AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
}

// APIConfig is the common key + base URL pair for a simple HTTP provider.
type APIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// EmailVerifyConfig selects the generic email verifier.
type EmailVerifyConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ProfileConfig configures the reference project profile builder.
type ProfileConfig struct {
	Enabled  bool `yaml:"enabled" mapstructure:"enabled"`
	TTLDays  int  `yaml:"ttl_days" mapstructure:"ttl_days"`
	MaxLinks int  `yaml:"max_links" mapstructure:"max_links"`
	MaxChars int  `yaml:"max_chars" mapstructure:"max_chars"`
}

// DiscoveryConfig configures candidate discovery.
type DiscoveryConfig struct {
	GrowthKeywords []string `yaml:"growth_keywords" mapstructure:"growth_keywords"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	WebResults     int      `yaml:"web_results" mapstructure:"web_results"`
	NewsResults    int      `yaml:"news_results" mapstructure:"news_results"`
}

// ScoringConfig holds the composite score weights, budget thresholds and
// class ranges.
type ScoringConfig struct {
	Weights      ScoreWeights `yaml:"weights" mapstructure:"weights"`
	BudgetMin    float64      `yaml:"budget_min" mapstructure:"budget_min"`
	BudgetTarget float64      `yaml:"budget_target" mapstructure:"budget_target"`
	Classes      []ScoreClass `yaml:"classes" mapstructure:"classes"`
}

// ScoreWeights are the maximum points of each sub-score.
type ScoreWeights struct {
	Fit       int `yaml:"fit" mapstructure:"fit"`
	Budget    int `yaml:"budget" mapstructure:"budget"`
	Timing    int `yaml:"timing" mapstructure:"timing"`
	Growth    int `yaml:"growth" mapstructure:"growth"`
	Alignment int `yaml:"alignment" mapstructure:"alignment"`
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() int {
	return w.Fit + w.Budget + w.Timing + w.Growth + w.Alignment
}

// ScoreClass is an inclusive score range mapped to a label.
type ScoreClass struct {
	Name string `yaml:"name" mapstructure:"name"`
	Low  int    `yaml:"low" mapstructure:"low"`
	High int    `yaml:"high" mapstructure:"high"`
}

// DefaultGrowthKeywords are the Italian growth-signal keywords used to build
// discovery queries.
var DefaultGrowthKeywords = []string{
	"assunzioni",
	"lavora con noi",
	"nuova sede",
	"ampliamento",
	"investimento",
	"commessa",
	"acquisizione",
	"funding",
}

// DefaultScoring returns the scoring configuration used when none is set.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Weights: ScoreWeights{
			Fit:       25,
			Budget:    25,
			Timing:    25,
			Growth:    15,
			Alignment: 10,
		},
		BudgetMin:    30000,
		BudgetTarget: 50000,
		Classes: []ScoreClass{
			{Name: "hot", Low: 80, High: 100},
			{Name: "warm", Low: 60, High: 79},
			{Name: "cold", Low: 0, High: 59},
		},
	}
}

// Validate checks the scoring configuration and returns every problem found.
func (s ScoringConfig) Validate() error {
	var errs []string

	named := map[string]int{
		"fit":       s.Weights.Fit,
		"budget":    s.Weights.Budget,
		"timing":    s.Weights.Timing,
		"growth":    s.Weights.Growth,
		"alignment": s.Weights.Alignment,
	}
	for _, name := range []string{"fit", "budget", "timing", "growth", "alignment"} {
		if named[name] < 0 {
			errs = append(errs, fmt.Sprintf("weight %s must be >= 0, got %d", name, named[name]))
		}
	}
	if s.BudgetMin < 0 {
		errs = append(errs, fmt.Sprintf("budget_min must be >= 0, got %.0f", s.BudgetMin))
	}
	if s.BudgetTarget < s.BudgetMin {
		errs = append(errs, fmt.Sprintf("budget_target (%.0f) must be >= budget_min (%.0f)", s.BudgetTarget, s.BudgetMin))
	}
	for i, c := range s.Classes {
		if c.Name == "" {
			errs = append(errs, fmt.Sprintf("classes[%d]: name is required", i))
		}
		if c.Low > c.High {
			errs = append(errs, fmt.Sprintf("classes[%d] (%s): low %d > high %d", i, c.Name, c.Low, c.High))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: scoring validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the configuration for settings the commands cannot run
// without.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres", "redis":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite, postgres or redis, got %q", c.Store.Driver))
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required for postgres")
	}
	if c.Store.Driver == "redis" && c.Store.RedisURL == "" {
		errs = append(errs, "store.redis_url is required for redis")
	}
	if c.Pipeline.Concurrency < 1 {
		errs = append(errs, "pipeline.concurrency must be >= 1")
	}
	if c.Profile.TTLDays < 1 {
		errs = append(errs, "profile.ttl_days must be >= 1")
	}
	if err := c.Scoring.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	scoring := DefaultScoring()
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "project_profiles.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.bearer_token", "")
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; LeadScout/1.0)")
	v.SetDefault("fetch.max_body_kb", 2048)
	v.SetDefault("pipeline.concurrency", 5)
	v.SetDefault("pipeline.default_limit", 30)
	v.SetDefault("presets_dir", "presets")
	v.SetDefault("export_dir", "exports")
	v.SetDefault("providers.search_preference", "auto")
	v.SetDefault("providers.serper.base_url", "https://google.serper.dev")
	v.SetDefault("providers.perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("providers.perplexity.model", "sonar")
	v.SetDefault("providers.jina.base_url", "https://s.jina.ai")
	v.SetDefault("providers.newsapi.base_url", "https://newsapi.org/v2")
	v.SetDefault("providers.hunter.base_url", "https://api.hunter.io/v2")
	// Keys need a default so AutomaticEnv can bind them during Unmarshal.
	for _, p := range []string{"serper", "perplexity", "jina", "newsapi", "hunter", "email_verify", "opencorporates", "google", "anthropic"} {
		v.SetDefault("providers."+p+".key", "")
	}
	v.SetDefault("store.redis_url", "")
	v.SetDefault("providers.email_verify.provider", "")
	v.SetDefault("providers.opencorporates.base_url", "https://api.opencorporates.com/v0.4")
	v.SetDefault("providers.google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("providers.anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("profile.enabled", true)
	v.SetDefault("profile.ttl_days", 183)
	v.SetDefault("profile.max_links", 8)
	v.SetDefault("profile.max_chars", 12000)
	v.SetDefault("discovery.growth_keywords", DefaultGrowthKeywords)
	v.SetDefault("discovery.rate_limit", 2.0)
	v.SetDefault("discovery.web_results", 10)
	v.SetDefault("discovery.news_results", 5)
	v.SetDefault("scoring.weights.fit", scoring.Weights.Fit)
	v.SetDefault("scoring.weights.budget", scoring.Weights.Budget)
	v.SetDefault("scoring.weights.timing", scoring.Weights.Timing)
	v.SetDefault("scoring.weights.growth", scoring.Weights.Growth)
	v.SetDefault("scoring.weights.alignment", scoring.Weights.Alignment)
	v.SetDefault("scoring.budget_min", scoring.BudgetMin)
	v.SetDefault("scoring.budget_target", scoring.BudgetTarget)

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

	// Lists of structs do not round-trip through viper defaults.
	if len(cfg.Scoring.Classes) == 0 {
		cfg.Scoring.Classes = scoring.Classes
	}

	return &cfg, nil
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
