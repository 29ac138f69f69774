// README: Tariff store backed by PostgreSQL (read-only).
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetTariff(ctx context.Context, code string) (Tariff, error) {
	row := s.db.QueryRow(ctx, `
		SELECT code, currency, daily_rate_per_unit, min_equipment,
		       outside_city_surcharge, on_premises_discount, extra_day_discount
		FROM tariffs
		WHERE code = $1 AND active`, code,
	)

	var t Tariff
	err := row.Scan(
		&t.Code, &t.Currency, &t.DailyRatePerUnit, &t.MinEquipment,
		&t.OutsideCitySurcharge, &t.OnPremisesDiscount, &t.ExtraDayDiscount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tariff{}, ErrTariffNotFound
	}
	if err != nil {
		return Tariff{}, err
	}
	if err := t.Validate(); err != nil {
		return Tariff{}, err
	}
	return t, nil
}
