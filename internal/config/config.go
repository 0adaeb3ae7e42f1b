package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// PayHereConfig carries the merchant settings for the hosted checkout
// gateway. The merchant secret lives here and is injected into the signer at
// construction time; nothing reads it from the environment at request time.
type PayHereConfig struct {
	MerchantID     string `yaml:"merchant_id"`
	MerchantSecret string `yaml:"merchant_secret"`
	CheckoutURL    string `yaml:"checkout_url"`
	Currency       string `yaml:"currency"`
	ReturnURL      string `yaml:"return_url"`
	CancelURL      string `yaml:"cancel_url"`
	NotifyURL      string `yaml:"notify_url"`
	VerifyMode     string `yaml:"verify_mode"` // enforce|warn|skip
}

type PaymentConfig struct {
	Mode    string        `yaml:"mode"` // payhere | mock
	PayHere PayHereConfig `yaml:"payhere"`
}

// ClientConfig holds the browser-facing pages the gateway redirects back to.
type ClientConfig struct {
	StatusURL string `yaml:"status_url"`
	CancelURL string `yaml:"cancel_url"`
}

type SweeperConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Payment  PaymentConfig  `yaml:"payment"`
	Client   ClientConfig   `yaml:"client"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Payment.Mode == "" {
		cfg.Payment.Mode = "mock"
	}
	if cfg.Payment.PayHere.Currency == "" {
		cfg.Payment.PayHere.Currency = "LKR"
	}
	if cfg.Payment.PayHere.CheckoutURL == "" {
		cfg.Payment.PayHere.CheckoutURL = "https://sandbox.payhere.lk/pay/checkout"
	}
	if cfg.Payment.PayHere.VerifyMode == "" {
		cfg.Payment.PayHere.VerifyMode = "warn"
	}
	if cfg.Sweeper.Interval <= 0 {
		cfg.Sweeper.Interval = 5 * time.Minute
	}
	if cfg.Sweeper.StaleAfter <= 0 {
		cfg.Sweeper.StaleAfter = 30 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	switch strings.ToLower(cfg.Payment.Mode) {
	case "payhere":
		if cfg.Payment.PayHere.MerchantID == "" {
			return nil, errors.New("payment.payhere.merchant_id is required in payhere mode")
		}
	case "mock":
	default:
		return nil, fmt.Errorf("payment.mode must be payhere or mock, got %q", cfg.Payment.Mode)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
