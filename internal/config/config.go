package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramToken    string
	WebhookPublicURL string
	OpenAIKey        string // optional; commentary is disabled without it
	Port             string
	DBPath           string
	LogLevel         string
	LogFile          string
	Engine           Engine
}

// Engine holds the analytics defaults, optionally overridden from the YAML file
// named by ENGINE_CONFIG.
type Engine struct {
	RiskFree       float64 `yaml:"risk_free"`
	DefaultWindow  string  `yaml:"default_window"`
	Benchmark      string  `yaml:"benchmark"`
	Rebalancing    string  `yaml:"rebalancing"`
	Scales         []int   `yaml:"scales"`
	Lags           []int   `yaml:"lags"`
	RegimeWindow   int     `yaml:"regime_window"`
	RollingWindow  int     `yaml:"rolling_window"`
	BacktestSymbol string  `yaml:"backtest_symbol"`
	Capital        float64 `yaml:"capital"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
}

func DefaultEngine() Engine {
	return Engine{
		RiskFree:       0.02,
		DefaultWindow:  "1y",
		Benchmark:      "SPY",
		Rebalancing:    "never",
		Scales:         []int{1, 5, 10, 20, 60},
		Lags:           []int{2, 5, 10, 20},
		RegimeWindow:   60,
		RollingWindow:  60,
		BacktestSymbol: "GLE.PA",
		Capital:        10000,
		RequestsPerSec: 2,
	}
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func requireEnv(k string) (string, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return "", fmt.Errorf("missing env %s", k)
	}
	return v, nil
}

// Load reads .env (if present), the environment and the optional engine file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	token, err := requireEnv("TELEGRAM_BOT_TOKEN")
	if err != nil {
		return Config{}, err
	}
	hook, err := requireEnv("WEBHOOK_PUBLIC_URL")
	if err != nil {
		return Config{}, err
	}
	engine, err := LoadEngine(os.Getenv("ENGINE_CONFIG"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		TelegramToken:    token,
		WebhookPublicURL: hook,
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		Port:             env("PORT", "9095"),
		DBPath:           env("DB_PATH", "/app/data/usage.db"),
		LogLevel:         env("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
		Engine:           engine,
	}, nil
}

// LoadEngine overlays the YAML file at path onto DefaultEngine. An empty path
// returns the defaults.
func LoadEngine(path string) (Engine, error) {
	e := DefaultEngine()
	if path == "" {
		return e, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return e, fmt.Errorf("read engine config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("parse engine config %s: %w", path, err)
	}
	if e.RiskFree < 0 || e.RiskFree > 1 {
		return e, fmt.Errorf("engine config: risk_free %.4f out of range", e.RiskFree)
	}
	if e.RegimeWindow < 2 {
		return e, fmt.Errorf("engine config: regime_window must be at least 2")
	}
	if e.RollingWindow < 2 {
		return e, fmt.Errorf("engine config: rolling_window must be at least 2")
	}
	return e, nil
}
