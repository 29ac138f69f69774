// README: Common money value object used across modules.
package types

import "math/big"

// Money is an amount in minor units (cents) of Currency.
type Money struct {
	Amount   int64
	Currency string
}

// Float64 returns the amount in major units, e.g. 31752000 -> 317520.00.
func (m Money) Float64() float64 {
	f, _ := new(big.Rat).SetFrac64(m.Amount, 100).Float64()
	return f
}

// Split returns the sign and the whole/fractional parts of the absolute amount.
func (m Money) Split() (negative bool, whole int64, cents int64) {
	a := m.Amount
	if a < 0 {
		negative = true
		a = -a
	}
	return negative, a / 100, a % 100
}

// FromMajor converts a major-unit amount to Money, rounding half away from zero.
func FromMajor(v float64, currency string) Money {
	r := new(big.Rat).SetFloat64(v)
	if r == nil {
		return Money{Currency: currency}
	}
	cents, _ := RoundCents(r.Mul(r, big.NewRat(100, 1)))
	return Money{Amount: cents, Currency: currency}
}

// RoundCents rounds an exact cent quantity to the nearest integer, half away from zero.
// ok is false when the result does not fit in an int64.
func RoundCents(cents *big.Rat) (v int64, ok bool) {
	num := new(big.Int).Set(cents.Num())
	den := cents.Denom()
	neg := num.Sign() < 0
	if neg {
		num.Neg(num)
	}
	// (2*num + den) / (2*den) == floor(num/den + 1/2)
	num.Mul(num, big.NewInt(2)).Add(num, den)
	q := num.Quo(num, new(big.Int).Mul(den, big.NewInt(2)))
	if neg {
		q.Neg(q)
	}
	if !q.IsInt64() {
		return 0, false
	}
	return q.Int64(), true
}
