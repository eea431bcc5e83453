package config

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/price-check/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Market  MarketConfig  `yaml:"market" mapstructure:"market"`
	Pricing PricingConfig `yaml:"pricing" mapstructure:"pricing"`
	Keybind KeybindConfig `yaml:"keybind" mapstructure:"keybind"`
	Filters FiltersConfig `yaml:"filters" mapstructure:"filters"`
	Overlay OverlayConfig `yaml:"overlay" mapstructure:"overlay"`
	Chat    ChatConfig    `yaml:"chat" mapstructure:"chat"`
	Toast   ToastConfig   `yaml:"toast" mapstructure:"toast"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// MarketConfig configures the Universalis market board client.
type MarketConfig struct {
	BaseURL                 string  `yaml:"base_url" mapstructure:"base_url"`
	RequestTimeoutMs        int     `yaml:"request_timeout_ms" mapstructure:"request_timeout_ms"`
	UserAgent               string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateLimit               float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst               int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	CircuitFailureThreshold int     `yaml:"circuit_failure_threshold" mapstructure:"circuit_failure_threshold"`
	CircuitResetSecs        int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
}

// RequestTimeout returns the per-request timeout, falling back to 5s.
func (m MarketConfig) RequestTimeout() time.Duration {
	if m.RequestTimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(m.RequestTimeoutMs) * time.Millisecond
}

// PricingConfig configures evaluation thresholds.
type PricingConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	ShowPrices     bool `yaml:"show_prices" mapstructure:"show_prices"`
	PriceMode      int  `yaml:"price_mode" mapstructure:"price_mode"`
	HoverDelaySecs int  `yaml:"hover_delay_secs" mapstructure:"hover_delay_secs"`
	MaxUploadDays  int  `yaml:"max_upload_days" mapstructure:"max_upload_days"`
	MinPrice       int  `yaml:"min_price" mapstructure:"min_price"`
}

// HoverDelay returns the debounce wait. Negative values count as zero.
func (p PricingConfig) HoverDelay() time.Duration {
	if p.HoverDelaySecs <= 0 {
		return 0
	}
	return time.Duration(p.HoverDelaySecs) * time.Second
}

// KeybindConfig configures keybind gating of hover events.
type KeybindConfig struct {
	Enabled         bool `yaml:"enabled" mapstructure:"enabled"`
	AllowAfterHover bool `yaml:"allow_after_hover" mapstructure:"allow_after_hover"`
}

// FiltersConfig restricts evaluations by game state.
type FiltersConfig struct {
	RestrictInCombat  bool `yaml:"restrict_in_combat" mapstructure:"restrict_in_combat"`
	RestrictInContent bool `yaml:"restrict_in_content" mapstructure:"restrict_in_content"`
}

// ResultFilter toggles a notification channel per item result.
type ResultFilter struct {
	Success               bool `yaml:"success" mapstructure:"success"`
	FailedToProcess       bool `yaml:"failed_to_process" mapstructure:"failed_to_process"`
	FailedToGetData       bool `yaml:"failed_to_get_data" mapstructure:"failed_to_get_data"`
	NoDataAvailable       bool `yaml:"no_data_available" mapstructure:"no_data_available"`
	NoRecentDataAvailable bool `yaml:"no_recent_data_available" mapstructure:"no_recent_data_available"`
	BelowVendor           bool `yaml:"below_vendor" mapstructure:"below_vendor"`
	BelowMinimum          bool `yaml:"below_minimum" mapstructure:"below_minimum"`
	Unmarketable          bool `yaml:"unmarketable" mapstructure:"unmarketable"`
}

// Allows reports whether results of kind r pass the filter. None never does.
func (f ResultFilter) Allows(r model.ItemResult) bool {
	switch r {
	case model.ResultSuccess:
		return f.Success
	case model.ResultFailedToProcess:
		return f.FailedToProcess
	case model.ResultFailedToGetData:
		return f.FailedToGetData
	case model.ResultNoDataAvailable:
		return f.NoDataAvailable
	case model.ResultNoRecentDataAvailable:
		return f.NoRecentDataAvailable
	case model.ResultBelowVendor:
		return f.BelowVendor
	case model.ResultBelowMinimum:
		return f.BelowMinimum
	case model.ResultUnmarketable:
		return f.Unmarketable
	default:
		return false
	}
}

// OverlayConfig configures the overlay item list.
type OverlayConfig struct {
	Show          bool         `yaml:"show" mapstructure:"show"`
	MaxItems      int          `yaml:"max_items" mapstructure:"max_items"`
	HideAfterSecs int          `yaml:"hide_after_secs" mapstructure:"hide_after_secs"`
	ShowByKeybind bool         `yaml:"show_by_keybind" mapstructure:"show_by_keybind"`
	Results       ResultFilter `yaml:"results" mapstructure:"results"`
}

// ChatConfig configures chat notifications.
type ChatConfig struct {
	Show      bool         `yaml:"show" mapstructure:"show"`
	UseColors bool         `yaml:"use_colors" mapstructure:"use_colors"`
	Results   ResultFilter `yaml:"results" mapstructure:"results"`
}

// ToastConfig configures toast notifications.
type ToastConfig struct {
	Show       bool         `yaml:"show" mapstructure:"show"`
	WebhookURL string       `yaml:"webhook_url" mapstructure:"webhook_url"`
	Results    ResultFilter `yaml:"results" mapstructure:"results"`
}

// CatalogConfig points at the item catalog file.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// HistoryConfig configures the optional evaluation history backend.
type HistoryConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the local HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RefreshMs      int      `yaml:"refresh_ms" mapstructure:"refresh_ms"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

var resultKeys = []string{
	"success",
	"failed_to_process",
	"failed_to_get_data",
	"no_data_available",
	"no_recent_data_available",
	"below_vendor",
	"below_minimum",
	"unmarketable",
}

func newViper() *viper.Viper {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRICECHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.refresh_ms", 100)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("market.base_url", "https://universalis.app/api")
	v.SetDefault("market.request_timeout_ms", 5000)
	v.SetDefault("market.user_agent", "price-check/1.0")
	v.SetDefault("market.rate_limit", 20)
	v.SetDefault("market.rate_burst", 20)
	v.SetDefault("market.circuit_failure_threshold", 5)
	v.SetDefault("market.circuit_reset_secs", 30)
	v.SetDefault("pricing.enabled", true)
	v.SetDefault("pricing.show_prices", true)
	v.SetDefault("pricing.price_mode", 0)
	v.SetDefault("pricing.hover_delay_secs", 1)
	v.SetDefault("pricing.max_upload_days", 60)
	v.SetDefault("pricing.min_price", 0)
	v.SetDefault("keybind.enabled", false)
	v.SetDefault("keybind.allow_after_hover", false)
	v.SetDefault("filters.restrict_in_combat", true)
	v.SetDefault("filters.restrict_in_content", true)
	v.SetDefault("overlay.show", true)
	v.SetDefault("overlay.max_items", 10)
	v.SetDefault("overlay.hide_after_secs", 300)
	v.SetDefault("overlay.show_by_keybind", false)
	v.SetDefault("chat.show", true)
	v.SetDefault("chat.use_colors", true)
	v.SetDefault("toast.show", true)
	v.SetDefault("toast.webhook_url", "")
	v.SetDefault("catalog.path", "items.yaml")
	// Empty defaults register the keys so env overrides unmarshal.
	v.SetDefault("history.driver", "")
	v.SetDefault("history.database_url", "")
	for _, k := range resultKeys {
		v.SetDefault("overlay.results."+k, true)
		v.SetDefault("chat.results."+k, true)
		v.SetDefault("toast.results."+k, true)
	}

	return v
}

func read(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := newViper()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	return read(v)
}

// LoadWatched loads configuration into a Live holder and keeps it current
// as the config file changes. Without a config file it behaves like Load.
func LoadWatched() (*Live, error) {
	v := newViper()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
		fileFound = false
	}

	cfg, err := read(v)
	if err != nil {
		return nil, err
	}
	live := NewLive(cfg)

	if fileFound {
		v.OnConfigChange(func(e fsnotify.Event) {
			next, err := read(v)
			if err != nil {
				zap.L().Warn("config: reload failed, keeping previous", zap.String("file", e.Name), zap.Error(err))
				return
			}
			live.Set(next)
			zap.L().Info("config: reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return live, nil
}

// Live holds the current configuration. Readers take a snapshot per use;
// a reload swaps the pointer without coordinating with readers.
type Live struct {
	cur       atomic.Pointer[Config]
	listeners atomic.Pointer[[]func(*Config)]
}

// NewLive creates a Live holder seeded with cfg.
func NewLive(cfg *Config) *Live {
	l := &Live{}
	if cfg == nil {
		cfg = &Config{}
	}
	l.cur.Store(cfg)
	return l
}

// Get returns the current configuration snapshot. Never nil.
func (l *Live) Get() *Config {
	return l.cur.Load()
}

// Set publishes a new configuration and notifies listeners.
func (l *Live) Set(cfg *Config) {
	if cfg == nil {
		return
	}
	l.cur.Store(cfg)
	if fns := l.listeners.Load(); fns != nil {
		for _, fn := range *fns {
			fn(cfg)
		}
	}
}

// OnChange registers fn to run after every Set. Not safe for concurrent
// registration; register during startup.
func (l *Live) OnChange(fn func(*Config)) {
	var fns []func(*Config)
	if cur := l.listeners.Load(); cur != nil {
		fns = append(fns, *cur...)
	}
	fns = append(fns, fn)
	l.listeners.Store(&fns)
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Market.BaseURL == "" {
		return eris.New("config: market.base_url is required")
	}
	switch c.History.Driver {
	case "", "sqlite":
	case "postgres":
		if c.History.DatabaseURL == "" {
			return eris.New("config: history.database_url is required for postgres (PRICECHECK_HISTORY_DATABASE_URL)")
		}
	default:
		return eris.Errorf("config: unsupported history driver %q", c.History.Driver)
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
