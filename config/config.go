// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/warp/workshop-engine/engine"
	"github.com/warp/workshop-engine/inventory"
	"github.com/warp/workshop-engine/workshop"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Autosave AutosaveConfig
}

type ServerConfig struct {
	AppEnv             string
	HTTPPort           int
	CORSAllowedOrigins []string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type DatabaseConfig struct {
	Path string
}

type EngineConfig struct {
	OverpaymentPolicy        string
	CostDiscipline           string
	PurchaseDefaultThreshold string
}

type AutosaveConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	_ = godotenv.Load() // Load .env file if it exists
	return LoadEnv()
}

// LoadEnv reads the environment only. Production logs JSON unless
// LOG_ENCODING says otherwise.
func LoadEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			AppEnv:             getEnv("APP_ENV", "development"),
			HTTPPort:           getEnvInt("HTTP_PORT", 8080),
			CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "workshop.db"),
		},
		Engine: EngineConfig{
			OverpaymentPolicy:        getEnv("OVERPAYMENT_POLICY", string(workshop.OverpaymentAccept)),
			CostDiscipline:           getEnv("COST_DISCIPLINE", string(inventory.CostRecursive)),
			PurchaseDefaultThreshold: getEnv("PURCHASE_DEFAULT_THRESHOLD", "10"),
		},
		Autosave: AutosaveConfig{
			Enabled:  getEnvBool("AUTOSAVE_ENABLED", true),
			Interval: getEnvDuration("AUTOSAVE_INTERVAL", 2*time.Second),
		},
	}
	if _, set := os.LookupEnv("LOG_ENCODING"); !set && cfg.IsProduction() {
		cfg.Logger.Encoding = "json"
	}
	return cfg
}

// EngineOptions parses the engine settings. Unknown policy or discipline
// names are an error rather than a silent default.
func (c *Config) EngineOptions() (engine.Options, error) {
	policy, err := workshop.ParseOverpaymentPolicy(c.Engine.OverpaymentPolicy)
	if err != nil {
		return engine.Options{}, fmt.Errorf("OVERPAYMENT_POLICY: %w", err)
	}
	discipline, err := inventory.ParseDiscipline(c.Engine.CostDiscipline)
	if err != nil {
		return engine.Options{}, fmt.Errorf("COST_DISCIPLINE: %w", err)
	}
	threshold, err := decimal.NewFromString(c.Engine.PurchaseDefaultThreshold)
	if err != nil || threshold.IsNegative() {
		return engine.Options{}, fmt.Errorf("PURCHASE_DEFAULT_THRESHOLD: %q is not a non-negative number", c.Engine.PurchaseDefaultThreshold)
	}
	return engine.Options{
		Valuer:    inventory.Valuer{Discipline: discipline},
		Payments:  policy,
		Purchases: inventory.PurchaseOptions{DefaultThreshold: threshold},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return fallback
}
