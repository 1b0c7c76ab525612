package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/choropleth/internal/dataset"
	"github.com/sells-group/choropleth/internal/fetcher"
)

// Default data sources.
const (
	DefaultStatsURL    = "https://cdn.freecodecamp.org/testable-projects-fcc/data/choropleth_map/for_user_education.json"
	DefaultTopologyURL = "https://cdn.freecodecamp.org/testable-projects-fcc/data/choropleth_map/counties.json"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Legend LegendConfig `yaml:"legend" mapstructure:"legend"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig names the statistic and geometry sources.
type DataConfig struct {
	StatsURL         string          `yaml:"stats_url" mapstructure:"stats_url"`
	StatsFormat      string          `yaml:"stats_format" mapstructure:"stats_format"`
	Columns          dataset.Columns `yaml:"columns" mapstructure:"columns"`
	Charset          string          `yaml:"charset" mapstructure:"charset"`
	SkipRows         int             `yaml:"skip_rows" mapstructure:"skip_rows"`
	Sheet            string          `yaml:"sheet" mapstructure:"sheet"`
	GeometryURL      string          `yaml:"geometry_url" mapstructure:"geometry_url"`
	GeometryFormat   string          `yaml:"geometry_format" mapstructure:"geometry_format"`
	RegionsObject    string          `yaml:"regions_object" mapstructure:"regions_object"`
	SeparatorsObject string          `yaml:"separators_object" mapstructure:"separators_object"`
	KeyField         string          `yaml:"key_field" mapstructure:"key_field"`
}

// MapConfig configures the canvas and fills.
type MapConfig struct {
	Width         int      `yaml:"width" mapstructure:"width"`
	Height        int      `yaml:"height" mapstructure:"height"`
	Palette       []string `yaml:"palette" mapstructure:"palette"`
	NoDataColor   string   `yaml:"no_data_color" mapstructure:"no_data_color"`
	OverlayStroke string   `yaml:"overlay_stroke" mapstructure:"overlay_stroke"`
	Title         string   `yaml:"title" mapstructure:"title"`
	Description   string   `yaml:"description" mapstructure:"description"`
}

// LegendConfig places the legend on the canvas.
type LegendConfig struct {
	Width    int `yaml:"width" mapstructure:"width"`
	Height   int `yaml:"height" mapstructure:"height"`
	X        int `yaml:"x" mapstructure:"x"`
	Y        int `yaml:"y" mapstructure:"y"`
	TickSize int `yaml:"tick_size" mapstructure:"tick_size"`
}

// HostRate is a per-host request budget.
type HostRate struct {
	Host string  `yaml:"host" mapstructure:"host"`
	RPS  float64 `yaml:"rps" mapstructure:"rps"`
}

// FetchConfig configures source retrieval.
type FetchConfig struct {
	UserAgent   string     `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int        `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int        `yaml:"max_retries" mapstructure:"max_retries"`
	BackoffMS   int        `yaml:"backoff_ms" mapstructure:"backoff_ms"`
	DefaultRate float64    `yaml:"default_rate" mapstructure:"default_rate"`
	HostRates   []HostRate `yaml:"host_rates" mapstructure:"host_rates"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	SessionTTLMins      int      `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
	MaxSessions         int      `yaml:"max_sessions" mapstructure:"max_sessions"`
	RequestTimeoutSecs  int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the working
// directory, when present, is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CHOROPLETH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	cols := dataset.DefaultColumns()
	v.SetDefault("data.stats_url", DefaultStatsURL)
	v.SetDefault("data.stats_format", "")
	v.SetDefault("data.columns.key", cols.Key)
	v.SetDefault("data.columns.name", cols.Name)
	v.SetDefault("data.columns.subregion", cols.Subregion)
	v.SetDefault("data.columns.value", cols.Value)
	v.SetDefault("data.charset", "")
	v.SetDefault("data.skip_rows", 0)
	v.SetDefault("data.sheet", "")
	v.SetDefault("data.geometry_url", DefaultTopologyURL)
	v.SetDefault("data.geometry_format", "")
	v.SetDefault("data.regions_object", dataset.DefaultRegionsObject)
	v.SetDefault("data.separators_object", dataset.DefaultSeparatorsObject)
	v.SetDefault("data.key_field", dataset.DefaultKeyField)
	v.SetDefault("map.width", 960)
	v.SetDefault("map.height", 600)
	v.SetDefault("map.palette", []string{})
	v.SetDefault("map.no_data_color", "#cccccc")
	v.SetDefault("map.overlay_stroke", "#ffffff")
	v.SetDefault("map.title", "United States Educational Attainment")
	v.SetDefault("map.description", "Percentage of adults age 25 and older with a bachelor's degree or higher (2010-2014)")
	v.SetDefault("legend.width", 250)
	v.SetDefault("legend.height", 10)
	v.SetDefault("legend.x", 600)
	v.SetDefault("legend.y", 30)
	v.SetDefault("legend.tick_size", 6)
	v.SetDefault("fetch.user_agent", "choropleth/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.backoff_ms", 1000)
	v.SetDefault("fetch.default_rate", 20)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.session_ttl_mins", 30)
	v.SetDefault("server.max_sessions", 10000)
	v.SetDefault("server.request_timeout_secs", 30)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a command needs. mode is "render", "inspect" or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string
	if c.Data.StatsURL == "" {
		errs = append(errs, "data.stats_url is required")
	}
	if c.Data.GeometryURL == "" {
		errs = append(errs, "data.geometry_url is required")
	}
	if c.Fetch.MaxRetries < 0 {
		errs = append(errs, "fetch.max_retries must be >= 0")
	}

	switch mode {
	case "inspect":
	case "render", "serve":
		if c.Map.Width <= 0 || c.Map.Height <= 0 {
			errs = append(errs, "map.width and map.height must be > 0")
		}
		if c.Legend.Width <= 0 {
			errs = append(errs, "legend.width must be > 0")
		}
		if mode == "serve" {
			if c.Server.Port <= 0 || c.Server.Port > 65535 {
				errs = append(errs, "server.port must be > 0 and <= 65535")
			}
			if c.Server.MaxSessions <= 0 {
				errs = append(errs, "server.max_sessions must be > 0")
			}
			if c.Server.SessionTTLMins <= 0 {
				errs = append(errs, "server.session_ttl_mins must be > 0")
			}
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Sources maps the data section to loader inputs.
func (c *Config) Sources() dataset.Sources {
	return dataset.Sources{
		Stats: dataset.StatsSource{
			URL:      c.Data.StatsURL,
			Format:   c.Data.StatsFormat,
			Columns:  c.Data.Columns,
			Charset:  c.Data.Charset,
			SkipRows: c.Data.SkipRows,
			Sheet:    c.Data.Sheet,
		},
		Geometry: dataset.GeometrySource{
			URL:              c.Data.GeometryURL,
			Format:           c.Data.GeometryFormat,
			RegionsObject:    c.Data.RegionsObject,
			SeparatorsObject: c.Data.SeparatorsObject,
			KeyField:         c.Data.KeyField,
		},
	}
}

// FetchOptions maps the fetch section to fetcher options.
func (c *Config) FetchOptions() (fetcher.HTTPOptions, fetcher.FTPOptions) {
	timeout := time.Duration(c.Fetch.TimeoutSecs) * time.Second
	rates := make(map[string]float64, len(c.Fetch.HostRates))
	for _, hr := range c.Fetch.HostRates {
		rates[hr.Host] = hr.RPS
	}
	httpOpts := fetcher.HTTPOptions{
		UserAgent:   c.Fetch.UserAgent,
		Timeout:     timeout,
		MaxRetries:  c.Fetch.MaxRetries,
		BaseBackoff: time.Duration(c.Fetch.BackoffMS) * time.Millisecond,
		HostRates:   rates,
		DefaultRate: c.Fetch.DefaultRate,
	}
	return httpOpts, fetcher.FTPOptions{Timeout: timeout}
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
