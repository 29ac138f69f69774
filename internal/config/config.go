// README: Config loader; .env file, optional config.yaml and ALQUIPC_* env vars over defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"alquipc/internal/modules/pricing"
)

const envPrefix = "ALQUIPC"

type TariffConfig struct {
	Currency             string  `mapstructure:"currency"`
	DailyRatePerUnit     int64   `mapstructure:"daily_rate_per_unit"`
	MinEquipment         int     `mapstructure:"min_equipment"`
	OutsideCitySurcharge float64 `mapstructure:"outside_city_surcharge"`
	OnPremisesDiscount   float64 `mapstructure:"on_premises_discount"`
	ExtraDayDiscount     float64 `mapstructure:"extra_day_discount"`
}

type MapsConfig struct {
	APIKey   string `mapstructure:"api_key"`
	HomeCity string `mapstructure:"home_city"`
	Region   string `mapstructure:"region"`
	Language string `mapstructure:"language"`
}

type Config struct {
	Env  string `mapstructure:"env"`
	HTTP struct {
		Addr            string        `mapstructure:"addr"`
		RateLimitPerMin int           `mapstructure:"rate_limit_per_min"`
		RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
		CORSOrigins     []string      `mapstructure:"cors_origins"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr      string        `mapstructure:"addr"`
		Password  string        `mapstructure:"password"`
		DB        int           `mapstructure:"db"`
		TariffTTL time.Duration `mapstructure:"tariff_ttl"`
	} `mapstructure:"redis"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Pricing struct {
		DefaultTariff string                  `mapstructure:"default_tariff"`
		Tariffs       map[string]TariffConfig `mapstructure:"tariffs"`
	} `mapstructure:"pricing"`
	Maps MapsConfig `mapstructure:"maps"`
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration. A missing .env or config.yaml is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.rate_limit_per_min", 120)
	v.SetDefault("http.rate_limit_burst", 20)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tariff_ttl", 10*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("pricing.default_tariff", "default")
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.home_city", "Bogotá")
	v.SetDefault("maps.region", "co")
	v.SetDefault("maps.language", "es")
}

func (c Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("config: http.addr is required")
	}
	if c.HTTP.RateLimitPerMin <= 0 || c.HTTP.RateLimitBurst <= 0 {
		return errors.New("config: http rate limit values must be positive")
	}
	if c.Pricing.DefaultTariff == "" {
		return errors.New("config: pricing.default_tariff is required")
	}
	for code, t := range c.Pricing.Tariffs {
		if t.DailyRatePerUnit <= 0 {
			return fmt.Errorf("config: pricing.tariffs.%s.daily_rate_per_unit must be > 0", code)
		}
	}
	return nil
}

// TariffCatalog converts the configured tariffs. A missing currency defaults to COP and
// a missing min_equipment to the global minimum of two units.
func (c Config) TariffCatalog() (pricing.Catalog, error) {
	catalog := pricing.Catalog{
		DefaultCode: c.Pricing.DefaultTariff,
		Tariffs:     make(map[string]pricing.Tariff, len(c.Pricing.Tariffs)),
	}
	for code, tc := range c.Pricing.Tariffs {
		t := pricing.Tariff{
			Code:                 code,
			Currency:             tc.Currency,
			DailyRatePerUnit:     tc.DailyRatePerUnit,
			MinEquipment:         tc.MinEquipment,
			OutsideCitySurcharge: tc.OutsideCitySurcharge,
			OnPremisesDiscount:   tc.OnPremisesDiscount,
			ExtraDayDiscount:     tc.ExtraDayDiscount,
		}
		if t.Currency == "" {
			t.Currency = pricing.DefaultCurrency
		}
		if t.MinEquipment == 0 {
			t.MinEquipment = pricing.MinEquipment
		}
		if err := t.Validate(); err != nil {
			return pricing.Catalog{}, err
		}
		catalog.Tariffs[code] = t
	}
	return catalog, nil
}
