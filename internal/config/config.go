package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Cron   CronConfig   `mapstructure:"cron"`
	ESPN   ESPNConfig   `mapstructure:"espn"`
	Kalshi KalshiConfig `mapstructure:"kalshi"`
	Store  StoreConfig  `mapstructure:"store"`
	Model  ModelConfig  `mapstructure:"model"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	GameSync     string `mapstructure:"game_sync"`
	MarketSync   string `mapstructure:"market_sync"`
	EdgeScan     string `mapstructure:"edge_scan"`
	PositionMark string `mapstructure:"position_mark"`
}

type ESPNConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Leagues []LeagueSpec  `mapstructure:"leagues"`
}

type LeagueSpec struct {
	Sport  string `mapstructure:"sport"`
	League string `mapstructure:"league"`
}

type KalshiConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Series    []string      `mapstructure:"series"`
	PageLimit int           `mapstructure:"page_limit"`

	// EventGames maps exchange event tickers to game business keys for
	// markets that cannot be matched automatically.
	EventGames map[string]string `mapstructure:"event_games"`
}

// StoreConfig tunes the versioned store's conflict retry budget and the
// edge scanner's per-run market cap.
type StoreConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
	ScanLimit  int           `mapstructure:"scan_limit"`
}

type ModelConfig struct {
	ID      string `mapstructure:"id"`
	Version string `mapstructure:"version"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.game_sync", "@every 15s")
	v.SetDefault("cron.market_sync", "@every 30s")
	v.SetDefault("cron.edge_scan", "@every 20s")
	v.SetDefault("cron.position_mark", "@every 30s")
	v.SetDefault("espn.base_url", "https://site.api.espn.com/apis/site/v2/sports")
	v.SetDefault("espn.timeout", "15s")
	v.SetDefault("kalshi.base_url", "https://api.elections.kalshi.com/trade-api/v2")
	v.SetDefault("kalshi.timeout", "15s")
	v.SetDefault("kalshi.page_limit", 100)
	v.SetDefault("store.max_retries", 3)
	v.SetDefault("store.backoff", "25ms")
	v.SetDefault("store.max_backoff", "500ms")
	v.SetDefault("store.scan_limit", 500)
	v.SetDefault("model.id", "score_diff")
	v.SetDefault("model.version", "v1.0")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
