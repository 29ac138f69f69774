// README: Pricing service resolves tariffs and computes rental quotes.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrTariffNotFound = errors.New("tariff not found")
	ErrInvalidTariff  = errors.New("invalid tariff")
)

// TariffStore is the read-only tariff table.
type TariffStore interface {
	GetTariff(ctx context.Context, code string) (Tariff, error)
}

// TariffCache keeps resolved tariffs close to the API.
type TariffCache interface {
	Get(ctx context.Context, code string) (Tariff, bool, error)
	Set(ctx context.Context, t Tariff) error
}

// Catalog is the set of tariffs declared in configuration.
type Catalog struct {
	DefaultCode string
	Tariffs     map[string]Tariff
}

type Service struct {
	store   TariffStore
	cache   TariffCache
	catalog Catalog
	logger  *zap.Logger
}

// NewService wires the tariff sources. store and cache may be nil; the built-in
// default tariff is always part of the catalog.
func NewService(store TariffStore, cache TariffCache, catalog Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	tariffs := make(map[string]Tariff, len(catalog.Tariffs)+1)
	tariffs[DefaultTariffCode] = DefaultTariff()
	for code, t := range catalog.Tariffs {
		if t.Code == "" {
			t.Code = code
		}
		tariffs[code] = t
	}
	if catalog.DefaultCode == "" {
		catalog.DefaultCode = DefaultTariffCode
	}
	catalog.Tariffs = tariffs
	return &Service{store: store, cache: cache, catalog: catalog, logger: logger}
}

// Tariff resolves code through cache, store and catalog, in that order.
func (s *Service) Tariff(ctx context.Context, code string) (Tariff, error) {
	if code == "" {
		code = s.catalog.DefaultCode
	}

	if s.cache != nil {
		t, ok, err := s.cache.Get(ctx, code)
		if err == nil && ok {
			err = t.Validate()
		}
		if err != nil {
			s.logger.Warn("tariff cache read failed", zap.String("tariff", code), zap.Error(err))
		} else if ok {
			return t, nil
		}
	}

	if s.store != nil {
		t, err := s.store.GetTariff(ctx, code)
		switch {
		case err == nil:
			if s.cache != nil {
				if err := s.cache.Set(ctx, t); err != nil {
					s.logger.Warn("tariff cache write failed", zap.String("tariff", code), zap.Error(err))
				}
			}
			return t, nil
		case errors.Is(err, ErrTariffNotFound):
		case ctx.Err() != nil:
			return Tariff{}, ctx.Err()
		default:
			s.logger.Warn("tariff store read failed", zap.String("tariff", code), zap.Error(err))
		}
	}

	if t, ok := s.catalog.Tariffs[code]; ok {
		return t, nil
	}
	return Tariff{}, fmt.Errorf("%w: %q", ErrTariffNotFound, code)
}

// Quote prices an already typed request.
func (s *Service) Quote(ctx context.Context, req RentalRequest, tariffCode string) (Quote, error) {
	t, err := s.Tariff(ctx, tariffCode)
	if err != nil {
		return Quote{}, err
	}
	return s.price(req, t)
}

// QuoteRaw validates boundary input against the resolved tariff and prices it.
func (s *Service) QuoteRaw(ctx context.Context, raw RawRental, tariffCode string) (Quote, error) {
	t, err := s.Tariff(ctx, tariffCode)
	if err != nil {
		return Quote{}, err
	}
	req, err := ParseRaw(raw, t)
	if err != nil {
		return Quote{}, err
	}
	return s.price(req, t)
}

func (s *Service) price(req RentalRequest, t Tariff) (Quote, error) {
	q, err := Price(req, t)
	if err != nil {
		return Quote{}, err
	}
	if q.Total.Amount <= 0 {
		s.logger.Warn("non-positive rental total",
			zap.Int("extra_days", req.ExtraDays),
			zap.Int64("amount_minor", q.Total.Amount),
			zap.String("tariff", t.Code),
		)
	}
	return q, nil
}

// Validate reports whether t can be used for pricing.
func (t Tariff) Validate() error {
	switch {
	case t.Code == "":
		return fmt.Errorf("%w: code is required", ErrInvalidTariff)
	case t.Currency == "":
		return fmt.Errorf("%w: %s: currency is required", ErrInvalidTariff, t.Code)
	case t.DailyRatePerUnit <= 0:
		return fmt.Errorf("%w: %s: daily_rate_per_unit must be > 0", ErrInvalidTariff, t.Code)
	case t.MinEquipment < MinEquipment:
		return fmt.Errorf("%w: %s: min_equipment must be >= %d", ErrInvalidTariff, t.Code, MinEquipment)
	case t.OutsideCitySurcharge < 0, t.OnPremisesDiscount < 0 || t.OnPremisesDiscount >= 1, t.ExtraDayDiscount < 0:
		return fmt.Errorf("%w: %s: percentages out of range", ErrInvalidTariff, t.Code)
	}
	return nil
}
