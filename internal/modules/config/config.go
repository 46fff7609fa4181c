package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	defaultConfigFile = "values_local.yaml"
)

// Config ...
type Config struct {
	Service struct {
		Name       string `mapstructure:"name"`
		HealthAddr string `mapstructure:"health_addr"`
	} `mapstructure:"service"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// пусто: журнал сигналов в памяти
	DB string `mapstructure:"db_dsn"`

	Strategy StrategyConfig `mapstructure:"strategy"`
	Market   MarketConfig   `mapstructure:"market"`
	Redis    RedisConfig    `mapstructure:"redis"`

	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`

	Tracing struct {
		Enabled bool   `mapstructure:"enabled"`
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"tracing"`

	Report struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"report"`
}

type StrategyConfig struct {
	ShortPeriod int `mapstructure:"short_period"`
	LongPeriod  int `mapstructure:"long_period"`
}

type MarketConfig struct {
	Source      string   `mapstructure:"source"` // csv | okx
	Symbols     []string `mapstructure:"symbols"`
	Timeframe   string   `mapstructure:"timeframe"`
	CSVPath     string   `mapstructure:"csv_path"`
	CSVSkipRows int      `mapstructure:"csv_skip_rows"`
	WarmupBars  int      `mapstructure:"warmup_bars"` // 0: long_period + 1
	RestURL     string   `mapstructure:"rest_url"`
	WSURL       string   `mapstructure:"ws_url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"` // пусто: шина выключена
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
	Stream   string `mapstructure:"stream"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "sma_bot")
	v.SetDefault("service.health_addr", ":8080")
	v.SetDefault("log.level", "info")

	v.SetDefault("strategy.short_period", 25)
	v.SetDefault("strategy.long_period", 80)

	v.SetDefault("market.source", "okx")
	v.SetDefault("market.symbols", []string{"BTC-USDT"})
	v.SetDefault("market.timeframe", "1D")
	v.SetDefault("market.csv_path", "btc_data.csv")
	v.SetDefault("market.csv_skip_rows", 3)
	v.SetDefault("market.warmup_bars", 0)
	v.SetDefault("market.rest_url", "https://www.okx.com")
	v.SetDefault("market.ws_url", "wss://ws.okx.com:8443/ws/v5/business")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "signals")
	v.SetDefault("redis.stream", "signals:stream")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)

	v.SetDefault("report.path", "backtest_report.yaml")
}

func bindEnv(v *viper.Viper) error {
	binds := map[string]string{
		"db_dsn":                "DATABASE_DSN",
		"telegram.token":        "TELEGRAM_TOKEN",
		"telegram.chat_id":      "TELEGRAM_CHAT_ID",
		"redis.addr":            "REDIS_ADDR",
		"redis.password":        "REDIS_PASSWORD",
		"strategy.short_period": "SHORT_PERIOD",
		"strategy.long_period":  "LONG_PERIOD",
		"log.level":             "LOG_LEVEL",
		"service.health_addr":   "HEALTH_ADDR",
		"market.csv_path":       "CSV_PATH",
		"market.source":         "MARKET_SOURCE",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return errors.Wrapf(err, "bind env %s", env)
		}
	}
	return nil
}

// NewConfig читает configs/<CONFIG_FILE> поверх дефолтов, env перекрывает файл.
// Отсутствие файла не ошибка.
func NewConfig() (*Config, error) {
	return Load(defaultPath())
}

// ReadConfig: как NewConfig, но без Validate. Для CLI, которые
// сначала накладывают флаги и проверяют итог сами.
func ReadConfig() (*Config, error) {
	return Read(defaultPath())
}

func defaultPath() string {
	_ = godotenv.Load()

	dir := os.Getenv(configDirENV)
	if dir == "" {
		dir = "configs"
	}
	name := os.Getenv(configFilePathENV)
	if name == "" {
		name = defaultConfigFile
	}
	return filepath.Join(dir, name)
}

// Load: то же, что NewConfig, но с явным путём к файлу.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read собирает конфиг из дефолтов, файла и env без проверки значений.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !isNotFound(err) {
				return nil, errors.Wrapf(err, "read config %s", path)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Market.Symbols = NormalizeSymbols(cfg.Market.Symbols)
	return &cfg, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) {
		return true
	}
	return errors.Is(err, os.ErrNotExist)
}

// NormalizeSymbols: верхний регистр, без пустых и повторов.
func NormalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (c *Config) Validate() error {
	if c.Strategy.ShortPeriod <= 0 || c.Strategy.LongPeriod <= 0 {
		return errors.Errorf("strategy periods must be positive: short=%d long=%d",
			c.Strategy.ShortPeriod, c.Strategy.LongPeriod)
	}
	if c.Strategy.ShortPeriod >= c.Strategy.LongPeriod {
		return errors.Errorf("short_period (%d) must be < long_period (%d)",
			c.Strategy.ShortPeriod, c.Strategy.LongPeriod)
	}
	switch c.Market.Source {
	case "csv", "okx":
	default:
		return errors.Errorf("unknown market.source %q (csv|okx)", c.Market.Source)
	}
	if len(c.Market.Symbols) == 0 {
		return errors.New("market.symbols is empty")
	}
	// csv-файл несёт один инструмент
	if c.Market.Source == "csv" && len(c.Market.Symbols) > 1 {
		return errors.Errorf("market.source csv takes one symbol, got %v", c.Market.Symbols)
	}
	if c.Market.CSVSkipRows < 0 {
		return errors.Errorf("market.csv_skip_rows must be >= 0, got %d", c.Market.CSVSkipRows)
	}
	return nil
}

// WarmupBars: сколько истории подтянуть до старта стрима.
func (c *Config) WarmupBars() int {
	if c.Market.WarmupBars > 0 {
		return c.Market.WarmupBars
	}
	return c.Strategy.LongPeriod + 1
}
