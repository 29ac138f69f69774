// README: Rental request, tariff and quote definitions.
package pricing

import (
	"strings"

	"alquipc/internal/types"
)

type Mode string

const (
	ModeWithinCity  Mode = "WithinCity"
	ModeOutsideCity Mode = "OutsideCity"
	ModeOnPremises  Mode = "OnPremises"
)

// modeAliases maps normalized spellings (lower case, no separators) to modes.
var modeAliases = map[string]Mode{
	"withincity":            ModeWithinCity,
	"dentrociudad":          ModeWithinCity,
	"outsidecity":           ModeOutsideCity,
	"fueraciudad":           ModeOutsideCity,
	"onpremises":            ModeOnPremises,
	"dentroestablecimiento": ModeOnPremises,
}

// ParseMode accepts the canonical names and the legacy Spanish labels.
// An empty string means WithinCity.
func ParseMode(s string) (Mode, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return ModeWithinCity, true
	}
	m, ok := modeAliases[key]
	return m, ok
}

// Label is the Spanish name shown on the e-mail summary.
func (m Mode) Label() string {
	switch m {
	case ModeOutsideCity:
		return "Fuera Ciudad"
	case ModeOnPremises:
		return "Dentro Establecimiento"
	default:
		return "Dentro Ciudad"
	}
}

// RentalRequest is a validated price query. Build it with NewRentalRequest or ParseRaw.
type RentalRequest struct {
	EquipmentCount int
	InitialDays    int
	ExtraDays      int
	Mode           Mode
}

func (r RentalRequest) TotalDays() int {
	return r.InitialDays + r.ExtraDays
}

// RawRental is the untyped boundary form of a request: values decoded from JSON with
// UseNumber, or strings taken from the command line.
type RawRental struct {
	EquipmentCount any
	InitialDays    any
	ExtraDays      any
	Mode           string
}

// Tariff holds the rates applied by Calculate. Percentages are fractions (0.05 = 5%).
type Tariff struct {
	Code                 string  `json:"code" mapstructure:"code"`
	Currency             string  `json:"currency" mapstructure:"currency"`
	DailyRatePerUnit     int64   `json:"daily_rate_per_unit" mapstructure:"daily_rate_per_unit"`
	MinEquipment         int     `json:"min_equipment" mapstructure:"min_equipment"`
	OutsideCitySurcharge float64 `json:"outside_city_surcharge" mapstructure:"outside_city_surcharge"`
	OnPremisesDiscount   float64 `json:"on_premises_discount" mapstructure:"on_premises_discount"`
	ExtraDayDiscount     float64 `json:"extra_day_discount" mapstructure:"extra_day_discount"`
}

const (
	DefaultTariffCode       = "default"
	DefaultCurrency         = "COP"
	DailyRatePerUnit        = 35000
	MinEquipment            = 2
	OutsideCitySurchargePct = 0.05
	OnPremisesDiscountPct   = 0.05
	ExtraDayDiscountPct     = 0.02
)

// DefaultTariff returns the published ALQUIPC rates.
func DefaultTariff() Tariff {
	return Tariff{
		Code:                 DefaultTariffCode,
		Currency:             DefaultCurrency,
		DailyRatePerUnit:     DailyRatePerUnit,
		MinEquipment:         MinEquipment,
		OutsideCitySurcharge: OutsideCitySurchargePct,
		OnPremisesDiscount:   OnPremisesDiscountPct,
		ExtraDayDiscount:     ExtraDayDiscountPct,
	}
}

// Breakdown lists the intermediate amounts of a calculation, in major units.
type Breakdown struct {
	TotalDays           int     `json:"total_days"`
	BaseCost            float64 `json:"base_cost"`
	ModeAdjustmentPct   float64 `json:"mode_adjustment_pct"`
	ModeAdjustment      float64 `json:"mode_adjustment"`
	AdjustedCost        float64 `json:"adjusted_cost"`
	ExtraDayDiscountPct float64 `json:"extra_day_discount_pct"`
	ExtraDayDiscount    float64 `json:"extra_day_discount"`
	Total               float64 `json:"total"`
	Adjustment          string  `json:"adjustment"`
}

type Quote struct {
	Request    RentalRequest
	TariffCode string
	Total      types.Money
	Breakdown  Breakdown
}
