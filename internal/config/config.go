package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"SignalDesk/internal/catalog"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Market     MarketConfig     `yaml:"market"`
	Strategy   StrategyConfig   `yaml:"strategy"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Database   DatabaseConfig   `yaml:"database"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	DataSource DataSourceConfig `yaml:"data_source"`
	Proxy      string           `yaml:"proxy"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

type MarketConfig struct {
	Symbols []string `yaml:"symbols" default:"[\"EUR/USD\",\"GBP/USD\",\"BTC/USD\",\"GOLD\",\"S&P500\"]" validate:"min=1,dive,required"`
	// Source selects the bar feed: simulated, rest or yahoo.
	Source    string        `yaml:"source" default:"simulated" validate:"oneof=simulated rest yahoo"`
	Period    time.Duration `yaml:"period" default:"1m" validate:"gt=0"`
	Resample  time.Duration `yaml:"resample" validate:"gte=0"`
	History   int           `yaml:"history" default:"100" validate:"gte=0"`
	MaxBars   int           `yaml:"max_bars" default:"500" validate:"gt=0"`
	Seed      int64         `yaml:"seed"`
	StateFile string        `yaml:"state_file" default:"data/prices.json"`
}

type StrategyConfig struct {
	MinBars          int              `yaml:"min_bars" default:"55" validate:"gt=0"`
	MinStrength      float64          `yaml:"min_strength" default:"70" validate:"gte=0,lte=100"`
	MinConfidence    float64          `yaml:"min_confidence" default:"75" validate:"gte=0,lte=100"`
	HighThreshold    float64          `yaml:"high_threshold" default:"85" validate:"gte=0,lte=100"`
	ExpectedDuration int              `yaml:"expected_duration" default:"60" validate:"gt=0"`
	Timeframe        string           `yaml:"timeframe" default:"1m" validate:"required"`
	FibTolerance     float64          `yaml:"fib_tolerance" default:"0.001" validate:"gt=0,lt=1"`
	Acceptance       AcceptanceConfig `yaml:"acceptance"`
}

type AcceptanceConfig struct {
	MinStrength   float64 `yaml:"min_strength" default:"80" validate:"gte=0,lte=100"`
	MinConfidence float64 `yaml:"min_confidence" default:"85" validate:"gte=0,lte=100"`
	MinConsensus  float64 `yaml:"min_consensus" default:"0.3" validate:"gte=0,lte=1"`
}

// ScheduleConfig holds cron specs with a seconds field.
type ScheduleConfig struct {
	RefreshCron string `yaml:"refresh_cron" default:"@every 1s" validate:"required"`
	SignalCron  string `yaml:"signal_cron" default:"*/5 * * * * *" validate:"required"`
	OutcomeCron string `yaml:"outcome_cron" default:"*/10 * * * * *" validate:"required"`
}

type DatabaseConfig struct {
	// SQLitePath empty disables signal history.
	SQLitePath string `yaml:"sqlite_path" default:"data/signaldesk.db"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Enabled reports whether both credentials are set.
func (t TelegramConfig) Enabled() bool { return t.BotToken != "" && t.ChatID != "" }

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic" default:"trading-signals" validate:"required"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl" default:"5m" validate:"gt=0"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type DataSourceConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variable overrides
func applyEnv(cfg *Config) error {
	if v := os.Getenv("SIGNALDESK_SYMBOLS"); v != "" {
		cfg.Market.Symbols = splitList(v)
	}
	if v := os.Getenv("MARKET_SOURCE"); v != "" {
		cfg.Market.Source = v
	}
	if v := os.Getenv("MARKET_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MARKET_SEED: %w", err)
		}
		cfg.Market.Seed = seed
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var validate = validator.New()

// Validate checks field constraints and the combinations they cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var errs []error
	for _, sym := range c.Market.Symbols {
		if _, err := catalog.Lookup(sym); err != nil {
			errs = append(errs, fmt.Errorf("market.symbols: %w", err))
		}
	}
	if c.Market.Source == "rest" && c.DataSource.BaseURL == "" {
		errs = append(errs, errors.New("data_source.base_url is required for the rest source"))
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, errors.New("telegram.bot_token and telegram.chat_id must be set together"))
	}
	if c.Market.Resample > 0 && c.Market.Resample%c.Market.Period != 0 {
		errs = append(errs, fmt.Errorf("market.resample %s is not a multiple of market.period %s", c.Market.Resample, c.Market.Period))
	}
	if c.Strategy.Acceptance.MinConfidence < c.Strategy.MinConfidence {
		errs = append(errs, errors.New("strategy.acceptance.min_confidence is below the confidence floor"))
	}
	return errors.Join(errs...)
}
