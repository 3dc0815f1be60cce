package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PricingConfig holds the operator-tunable constants of the fare pipeline.
type PricingConfig struct {
	TaxRate          string `mapstructure:"taxRate"`
	Currency         string `mapstructure:"currency"`
	ChildMultiplier  string `mapstructure:"childMultiplier"`
	InfantMultiplier string `mapstructure:"infantMultiplier"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRate:          "0.15",
		Currency:         "USD",
		ChildMultiplier:  "0.75",
		InfantMultiplier: "0.10",
	}
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewStaticPricingConfigHolder returns a holder that never reloads.
func NewStaticPricingConfigHolder(cfg PricingConfig) (*PricingConfigHolder, error) {
	if err := ValidatePricingConfig(cfg); err != nil {
		return nil, err
	}
	holder := &PricingConfigHolder{}
	holder.current.Store(normalizePricingConfig(cfg))
	return holder, nil
}

func NewPricingConfigHolder(cfg Config, log *zap.Logger) (*PricingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("pricing.config")

	v := viper.New()
	if cfg.PricingConfigFile != "" {
		v.SetConfigFile(cfg.PricingConfigFile)
	} else {
		v.SetConfigName("pricing")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/skyfare")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SKYFARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	v.SetDefault("pricing.taxRate", defaults.TaxRate)
	v.SetDefault("pricing.currency", defaults.Currency)
	v.SetDefault("pricing.childMultiplier", defaults.ChildMultiplier)
	v.SetDefault("pricing.infantMultiplier", defaults.InfantMultiplier)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var pc PricingConfig
	if err := v.UnmarshalKey("pricing", &pc); err != nil {
		return nil, err
	}
	if err := ValidatePricingConfig(pc); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(normalizePricingConfig(pc))

	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Warn("pricing config reload failed", zap.Error(err))
			return
		}
		if err := ValidatePricingConfig(updated); err != nil {
			log.Warn("invalid pricing config ignored", zap.Error(err))
			return
		}
		holder.current.Store(normalizePricingConfig(updated))
		log.Info("pricing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func (c PricingConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.TaxRate)
}

func (c PricingConfig) ChildMultiplierDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.ChildMultiplier)
}

func (c PricingConfig) InfantMultiplierDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.InfantMultiplier)
}

func ValidatePricingConfig(cfg PricingConfig) error {
	if err := validateRatio("pricing.taxRate", cfg.TaxRate); err != nil {
		return err
	}
	if err := validateRatio("pricing.childMultiplier", cfg.ChildMultiplier); err != nil {
		return err
	}
	if err := validateRatio("pricing.infantMultiplier", cfg.InfantMultiplier); err != nil {
		return err
	}
	currency := strings.TrimSpace(cfg.Currency)
	if len(currency) != 3 {
		return errors.New("pricing.currency must be a 3-letter ISO code")
	}
	return nil
}

func validateRatio(key, raw string) error {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s must be a decimal: %w", key, err)
	}
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be between 0 and 1", key)
	}
	return nil
}

func normalizePricingConfig(cfg PricingConfig) PricingConfig {
	cfg.TaxRate = strings.TrimSpace(cfg.TaxRate)
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	cfg.ChildMultiplier = strings.TrimSpace(cfg.ChildMultiplier)
	cfg.InfantMultiplier = strings.TrimSpace(cfg.InfantMultiplier)
	return cfg
}
