package pricing

import (
	"errors"
	"math/big"
	"strconv"

	"alquipc/internal/types"
)

var ErrAmountOverflow = errors.New("amount out of range")

const (
	labelNoAdjustment  = "Sin ajuste"
	labelOutsideCity   = "Incremento Domicilio"
	labelOnPremises    = "Descuento Establecimiento"
	labelExtraDaysOnly = "Descuento Días Adicionales"
	labelExtraDaysAlso = " y Descuento Adicional"
)

// Calculate returns the rental total for req under t, rounded to cents.
func Calculate(req RentalRequest, t Tariff) (types.Money, error) {
	q, err := Price(req, t)
	if err != nil {
		return types.Money{}, err
	}
	return q.Total, nil
}

// Price runs the tariff rules in their fixed order:
//
//	base     = equipment * (initial + extra) * daily rate
//	adjusted = base * mode factor
//	total    = adjusted * (1 - extra * per-day discount)   when extra > 0
//
// The per-day discount is taken from the mode-adjusted amount and is not capped, so
// 50 or more extra days at 2% yield a zero or negative total. Arithmetic is exact and
// only the final amount is rounded.
func Price(req RentalRequest, t Tariff) (Quote, error) {
	if err := Validate(req, t); err != nil {
		return Quote{}, err
	}

	one := big.NewRat(1, 1)
	days := new(big.Rat).SetInt64(int64(req.InitialDays))
	days.Add(days, new(big.Rat).SetInt64(int64(req.ExtraDays)))
	base := new(big.Rat).SetInt64(int64(req.EquipmentCount))
	base.Mul(base, days)
	base.Mul(base, new(big.Rat).SetInt64(t.DailyRatePerUnit))

	label := labelNoAdjustment
	modePct := new(big.Rat)
	switch req.Mode {
	case ModeOutsideCity:
		modePct = fraction(t.OutsideCitySurcharge)
		label = labelOutsideCity
	case ModeOnPremises:
		modePct = new(big.Rat).Neg(fraction(t.OnPremisesDiscount))
		label = labelOnPremises
	}
	modeAdj := new(big.Rat).Mul(base, modePct)
	adjusted := new(big.Rat).Add(base, modeAdj)

	total := new(big.Rat).Set(adjusted)
	discountPct := new(big.Rat)
	if req.ExtraDays > 0 {
		discountPct.Mul(new(big.Rat).SetInt64(int64(req.ExtraDays)), fraction(t.ExtraDayDiscount))
		total.Mul(adjusted, new(big.Rat).Sub(one, discountPct))
		if label == labelNoAdjustment {
			label = labelExtraDaysOnly
		} else {
			label += labelExtraDaysAlso
		}
	}
	discount := new(big.Rat).Sub(adjusted, total)

	cents, ok := types.RoundCents(new(big.Rat).Mul(total, big.NewRat(100, 1)))
	if !ok {
		return Quote{}, ErrAmountOverflow
	}

	return Quote{
		Request:    req,
		TariffCode: t.Code,
		Total:      types.Money{Amount: cents, Currency: t.Currency},
		Breakdown: Breakdown{
			TotalDays:           req.TotalDays(),
			BaseCost:            major(base),
			ModeAdjustmentPct:   ratFloat(modePct),
			ModeAdjustment:      major(modeAdj),
			AdjustedCost:        major(adjusted),
			ExtraDayDiscountPct: ratFloat(discountPct),
			ExtraDayDiscount:    major(discount),
			Total:               types.Money{Amount: cents}.Float64(),
			Adjustment:          label,
		},
	}, nil
}

// fraction converts a configured percentage such as 0.05 into the exact decimal it was
// written as, rather than its nearest binary float.
func fraction(f float64) *big.Rat {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'f', -1, 64))
	if !ok {
		return new(big.Rat)
	}
	return r
}

func major(r *big.Rat) float64 {
	cents, _ := types.RoundCents(new(big.Rat).Mul(r, big.NewRat(100, 1)))
	return types.Money{Amount: cents}.Float64()
}

func ratFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}
