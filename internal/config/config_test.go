package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http.addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Redis.TariffTTL != 10*time.Minute {
		t.Errorf("redis.tariff_ttl = %v", cfg.Redis.TariffTTL)
	}
	if cfg.Pricing.DefaultTariff != "default" || cfg.DB.DSN != "" {
		t.Errorf("pricing/db defaults = %q / %q", cfg.Pricing.DefaultTariff, cfg.DB.DSN)
	}
	if cfg.IsProduction() {
		t.Error("default env must not be production")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ALQUIPC_HTTP_ADDR", ":9090")
	t.Setenv("ALQUIPC_DB_DSN", "postgres://localhost/alquipc")
	t.Setenv("ALQUIPC_REDIS_TARIFF_TTL", "30s")
	t.Setenv("ALQUIPC_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.DB.DSN != "postgres://localhost/alquipc" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Redis.TariffTTL != 30*time.Second {
		t.Errorf("redis.tariff_ttl = %v", cfg.Redis.TariffTTL)
	}
	if !cfg.IsProduction() {
		t.Error("expected production env")
	}
}

func TestLoad_ConfigFileTariffs(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
pricing:
  default_tariff: weekend
  tariffs:
    weekend:
      currency: COP
      daily_rate_per_unit: 30000
      min_equipment: 2
      outside_city_surcharge: 0.05
      on_premises_discount: 0.1
      extra_day_discount: 0.02
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	tc, ok := cfg.Pricing.Tariffs["weekend"]
	if !ok {
		t.Fatalf("tariff weekend not loaded: %+v", cfg.Pricing.Tariffs)
	}
	if cfg.Pricing.DefaultTariff != "weekend" || tc.DailyRatePerUnit != 30000 || tc.OnPremisesDiscount != 0.1 {
		t.Errorf("tariff = %+v", tc)
	}

	catalog, err := cfg.TariffCatalog()
	if err != nil {
		t.Fatalf("TariffCatalog() error = %v", err)
	}
	if catalog.DefaultCode != "weekend" || catalog.Tariffs["weekend"].Code != "weekend" {
		t.Errorf("catalog = %+v", catalog)
	}
}

func TestTariffCatalog_EquipmentFloor(t *testing.T) {
	var cfg Config
	cfg.Pricing.DefaultTariff = "default"
	cfg.Pricing.Tariffs = map[string]TariffConfig{"plain": {DailyRatePerUnit: 1000}}
	catalog, err := cfg.TariffCatalog()
	if err != nil {
		t.Fatalf("TariffCatalog() error = %v", err)
	}
	if got := catalog.Tariffs["plain"]; got.MinEquipment != 2 || got.Currency != "COP" {
		t.Errorf("tariff = %+v", got)
	}

	cfg.Pricing.Tariffs = map[string]TariffConfig{"single": {DailyRatePerUnit: 1000, MinEquipment: 1}}
	if _, err := cfg.TariffCatalog(); err == nil {
		t.Fatal("expected error for min_equipment below two")
	}
}

func TestTariffCatalog_RejectsInvalidPercentages(t *testing.T) {
	var cfg Config
	cfg.Pricing.DefaultTariff = "default"
	cfg.Pricing.Tariffs = map[string]TariffConfig{
		"free": {DailyRatePerUnit: 1000, MinEquipment: 2, OnPremisesDiscount: 1},
	}
	if _, err := cfg.TariffCatalog(); err == nil {
		t.Fatal("expected error for a 100% on-premises discount")
	}
}

func TestLoad_RejectsBadTariff(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
pricing:
  tariffs:
    broken:
      daily_rate_per_unit: 0
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero daily rate")
	}
}
