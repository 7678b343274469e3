package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type TelegramConfig struct {
	BotToken string
	ChatID   string
}

type SMTPConfig struct {
	Server   string
	Port     int
	User     string
	Password string
	From     string
	To       string
	UseSSL   bool
}

type DatabaseConfig struct {
	User string
	Pass string
	DB   string
	Host string
	Port int
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Pass + "@" + d.Host + ":" + strconv.Itoa(d.Port) + "/" + d.DB
}

type ScannerConfig struct {
	Symbols              map[string]string
	ScanInterval         time.Duration
	HeartbeatInterval    time.Duration
	EmailSummaryInterval time.Duration
	RiskPercentage       float64
	DefaultEquity        float64
	Parallelism          int
}

type Config struct {
	Timezone      string
	Telegram      TelegramConfig
	SMTP          SMTPConfig
	Database      DatabaseConfig
	Scanner       ScannerConfig
	HTTPAddr      string
	VendorBaseURL string
}

const symbolsPrefix = "SCANNER__SYMBOLS__"

// Load reads the environment once at process start. Symbols are parsed as
// part of configuration here, not reconstructed after the fact (§9 Design
// Note: the source's scanner-config-reconstruction artefact is not
// reproduced).
func Load() (Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyYAMLOverlay(path); err != nil {
			return Config{}, err
		}
	}

	var c Config
	var missing []string

	c.Timezone = getenvDefault("APP_TIMEZONE", "Africa/Johannesburg")
	c.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")
	c.VendorBaseURL = getenvDefault("MARKET_DATA__VENDOR_URL", "https://api.marketdata.vendor")

	c.Telegram.BotToken = os.Getenv("TELEGRAM__BOT_TOKEN")
	c.Telegram.ChatID = os.Getenv("TELEGRAM__CHAT_ID")
	if c.Telegram.BotToken == "" {
		missing = append(missing, "TELEGRAM__BOT_TOKEN")
	}
	if c.Telegram.ChatID == "" {
		missing = append(missing, "TELEGRAM__CHAT_ID")
	}

	c.SMTP.Server = os.Getenv("SMTP__SERVER")
	c.SMTP.User = os.Getenv("SMTP__USER")
	c.SMTP.Password = os.Getenv("SMTP__PASSWORD")
	c.SMTP.From = os.Getenv("SMTP__FROM_EMAIL")
	c.SMTP.To = os.Getenv("SMTP__TO_EMAIL")
	if c.SMTP.Server == "" {
		missing = append(missing, "SMTP__SERVER")
	}
	if c.SMTP.User == "" {
		missing = append(missing, "SMTP__USER")
	}
	if c.SMTP.Password == "" {
		missing = append(missing, "SMTP__PASSWORD")
	}
	if raw := os.Getenv("SMTP__PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return c, errors.New("invalid SMTP__PORT")
		}
		c.SMTP.Port = port
	} else {
		missing = append(missing, "SMTP__PORT")
	}
	if raw := os.Getenv("SMTP__USE_SSL"); raw != "" {
		useSSL, err := strconv.ParseBool(raw)
		if err != nil {
			return c, errors.New("invalid SMTP__USE_SSL")
		}
		c.SMTP.UseSSL = useSSL
	}

	c.Database.User = os.Getenv("POSTGRES_USER")
	c.Database.Pass = os.Getenv("POSTGRES_PASSWORD")
	c.Database.DB = os.Getenv("POSTGRES_DB")
	c.Database.Host = os.Getenv("POSTGRES_HOST")
	if c.Database.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if c.Database.Pass == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.Database.DB == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if c.Database.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if raw := os.Getenv("POSTGRES_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return c, errors.New("invalid POSTGRES_PORT")
		}
		c.Database.Port = port
	} else {
		c.Database.Port = 5432
	}

	c.Scanner.Symbols = loadSymbols()
	if len(c.Scanner.Symbols) == 0 {
		missing = append(missing, "SCANNER__SYMBOLS__<ALIAS>")
	}

	c.Scanner.ScanInterval = time.Duration(intEnvDefault("SCANNER__SCAN_INTERVAL_SECONDS", 60)) * time.Second
	c.Scanner.HeartbeatInterval = time.Duration(intEnvDefault("SCANNER__HEARTBEAT_INTERVAL_MINUTES", 15)) * time.Minute
	c.Scanner.EmailSummaryInterval = time.Duration(intEnvDefault("SCANNER__EMAIL_SUMMARY_INTERVAL_HOURS", 2)) * time.Hour
	c.Scanner.RiskPercentage = floatEnvDefault("SCANNER__RISK_PERCENTAGE", 0.01)
	c.Scanner.DefaultEquity = floatEnvDefault("SCANNER__DEFAULT_EQUITY", 10000)
	c.Scanner.Parallelism = intEnvDefault("SCANNER__PARALLELISM", 4)

	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}

func loadSymbols() map[string]string {
	symbols := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, symbolsPrefix) {
			continue
		}
		alias := strings.TrimPrefix(key, symbolsPrefix)
		if alias == "" || value == "" {
			continue
		}
		symbols[alias] = value
	}
	return symbols
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnvDefault(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func floatEnvDefault(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// yamlOverlay mirrors the env vars Load reads, for local development where
// exporting two dozen SCANNER__* / TELEGRAM__* variables is impractical.
type yamlOverlay struct {
	AppTimezone string            `yaml:"app_timezone"`
	HTTPAddr    string            `yaml:"http_addr"`
	VendorURL   string            `yaml:"vendor_url"`
	Telegram    map[string]string `yaml:"telegram"`
	SMTP        map[string]string `yaml:"smtp"`
	Postgres    map[string]string `yaml:"postgres"`
	Scanner     map[string]string `yaml:"scanner"`
	Symbols     map[string]string `yaml:"symbols"`
}

// applyYAMLOverlay reads a YAML file and sets any of Load's environment
// variables that are not already set in the process environment. Explicit
// env vars always win.
func applyYAMLOverlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var o yamlOverlay
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return err
	}

	setDefault("APP_TIMEZONE", o.AppTimezone)
	setDefault("HTTP_ADDR", o.HTTPAddr)
	setDefault("MARKET_DATA__VENDOR_URL", o.VendorURL)
	for k, v := range o.Telegram {
		setDefault("TELEGRAM__"+strings.ToUpper(k), v)
	}
	for k, v := range o.SMTP {
		setDefault("SMTP__"+strings.ToUpper(k), v)
	}
	for k, v := range o.Postgres {
		setDefault("POSTGRES_"+strings.ToUpper(k), v)
	}
	for k, v := range o.Scanner {
		setDefault("SCANNER__"+strings.ToUpper(k), v)
	}
	for alias, symbol := range o.Symbols {
		setDefault(symbolsPrefix+alias, symbol)
	}
	return nil
}

func setDefault(key, value string) {
	if value == "" {
		return
	}
	if _, ok := os.LookupEnv(key); ok {
		return
	}
	os.Setenv(key, value)
}
