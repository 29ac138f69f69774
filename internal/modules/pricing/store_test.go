package pricing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func TestStore_GetTariff(t *testing.T) {
	dsn := os.Getenv("ALQUIPC_DB_DSN")
	if dsn == "" {
		t.Skip("ALQUIPC_DB_DSN not set; skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	code := fmt.Sprintf("test_%d", time.Now().UnixNano())
	_, err = pool.Exec(ctx, `
		INSERT INTO tariffs (code, currency, daily_rate_per_unit, min_equipment,
		                     outside_city_surcharge, on_premises_discount, extra_day_discount)
		VALUES ($1, 'COP', 40000, 3, 0.1, 0.05, 0.01)`, code)
	if err != nil {
		t.Fatalf("seed tariff (is migrations/0001_tariffs.sql applied?): %v", err)
	}
	defer pool.Exec(ctx, `DELETE FROM tariffs WHERE code = $1`, code)

	store := NewStore(pool)
	got, err := store.GetTariff(ctx, code)
	if err != nil {
		t.Fatalf("GetTariff() error = %v", err)
	}
	if got.DailyRatePerUnit != 40000 || got.MinEquipment != 3 || got.OutsideCitySurcharge != 0.1 {
		t.Errorf("GetTariff() = %+v", got)
	}

	if _, err := store.GetTariff(ctx, code+"_missing"); !errors.Is(err, ErrTariffNotFound) {
		t.Errorf("expected ErrTariffNotFound, got %v", err)
	}
}

func TestCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("ALQUIPC_REDIS_ADDR")
	if addr == "" {
		t.Skip("ALQUIPC_REDIS_ADDR not set; skipping integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	cache := NewCache(rdb, time.Minute)
	tariff := DefaultTariff()
	tariff.Code = fmt.Sprintf("test_%d", time.Now().UnixNano())

	if _, ok, err := cache.Get(ctx, tariff.Code); err != nil || ok {
		t.Fatalf("Get() before Set = %v, %v", ok, err)
	}
	if err := cache.Set(ctx, tariff); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := cache.Get(ctx, tariff.Code)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got != tariff {
		t.Errorf("Get() = %+v, want %+v", got, tariff)
	}
	if err := cache.Invalidate(ctx, tariff.Code); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, ok, _ := cache.Get(ctx, tariff.Code); ok {
		t.Error("tariff still cached after Invalidate")
	}

	if err := rdb.Set(ctx, tariffKeyPrefix+tariff.Code, `{"code":"`+tariff.Code+`"}`, time.Minute).Err(); err != nil {
		t.Fatal(err)
	}
	defer rdb.Del(ctx, tariffKeyPrefix+tariff.Code)
	if _, ok, err := cache.Get(ctx, tariff.Code); ok || !errors.Is(err, ErrInvalidTariff) {
		t.Errorf("Get() on a partial entry = %v, %v; want miss with ErrInvalidTariff", ok, err)
	}
}
