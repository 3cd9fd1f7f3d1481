// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr       string `mapstructure:"listen_addr"`
	RPCURL           string `mapstructure:"rpc_url"`
	PostgresURL      string `mapstructure:"postgres_url"`
	JupiterURL       string `mapstructure:"jupiter_url"`
	PortalURL        string `mapstructure:"portal_url"`
	PumpAPIURL       string `mapstructure:"pump_api_url"`
	TokenInfoURL     string `mapstructure:"token_info_url"`
	CommissionWallet string `mapstructure:"commission_wallet"`
	CurvePollTries   int    `mapstructure:"curve_poll_tries"`
	CurvePollDelayMs int    `mapstructure:"curve_poll_delay_ms"`
	DebugLogging     bool   `mapstructure:"debug_logging"`
	LogFile          string `mapstructure:"log_file"`
}

const (
	DefaultListenAddr       = ":8080"
	DefaultJupiterURL       = "https://quote-api.jup.ag/v6"
	DefaultPortalURL        = "https://pumpportal.fun/api"
	DefaultPumpAPIURL       = "https://pump.fun"
	DefaultTokenInfoURL     = "https://frontend-api.pump.fun"
	DefaultCurvePollTries   = 20
	DefaultCurvePollDelayMs = 500
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":         DefaultListenAddr,
		"jupiter_url":         DefaultJupiterURL,
		"portal_url":          DefaultPortalURL,
		"pump_api_url":        DefaultPumpAPIURL,
		"token_info_url":      DefaultTokenInfoURL,
		"curve_poll_tries":    DefaultCurvePollTries,
		"curve_poll_delay_ms": DefaultCurvePollDelayMs,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("missing rpc_url in configuration")
	}
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if cfg.PostgresURL == "" {
		return errors.New("missing postgres_url in configuration")
	}
	if cfg.CommissionWallet == "" {
		return errors.New("missing commission_wallet in configuration")
	}
	for _, u := range []string{cfg.JupiterURL, cfg.PortalURL, cfg.PumpAPIURL, cfg.TokenInfoURL} {
		if err := validateURLWithCache(u, "http"); err != nil {
			return errors.New("invalid upstream API URL protocol")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.CurvePollTries <= 0 {
		return errors.New("invalid curve_poll_tries")
	}
	if cfg.CurvePollDelayMs <= 0 {
		return errors.New("invalid curve_poll_delay_ms")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("BLINKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envRPC := v.GetString("RPC_URL")
	if envRPC != "" {
		cfg.RPCURL = envRPC
	}

	envPostgres := v.GetString("POSTGRES_URL")
	if envPostgres != "" {
		cfg.PostgresURL = envPostgres
	}

	envWallet := v.GetString("COMMISSION_WALLET")
	if envWallet != "" {
		cfg.CommissionWallet = envWallet
	}
	return nil
}
