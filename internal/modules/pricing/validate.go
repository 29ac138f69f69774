package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Kind classifies a validation failure.
type Kind string

const (
	KindInvalidType       Kind = "InvalidType"
	KindBelowMinimum      Kind = "BelowMinimum"
	KindNonPositiveDays   Kind = "NonPositiveDays"
	KindNegativeExtraDays Kind = "NegativeExtraDays"
	KindUnknownMode       Kind = "UnknownMode"
)

var (
	ErrInvalidType       = errors.New("value must be a whole number")
	ErrBelowMinimum      = errors.New("equipment count below minimum")
	ErrNonPositiveDays   = errors.New("initial days must be positive")
	ErrNegativeExtraDays = errors.New("extra days must not be negative")
	ErrUnknownMode       = errors.New("unknown rental mode")
)

var kindErrors = map[Kind]error{
	KindInvalidType:       ErrInvalidType,
	KindBelowMinimum:      ErrBelowMinimum,
	KindNonPositiveDays:   ErrNonPositiveDays,
	KindNegativeExtraDays: ErrNegativeExtraDays,
	KindUnknownMode:       ErrUnknownMode,
}

// ValidationError reports which field failed and why. errors.Is matches the
// sentinel of its Kind.
type ValidationError struct {
	Kind  Kind
	Field string
	Value any
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Field + ": " + e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Field, kindErrors[e.Kind])
}

func (e *ValidationError) Is(target error) bool {
	return kindErrors[e.Kind] == target
}

// KindOf returns the validation kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}

// Validate checks a typed request against the tariff minimums.
func Validate(req RentalRequest, t Tariff) error {
	if err := validateCounts(req.EquipmentCount, req.InitialDays, t); err != nil {
		return err
	}
	if req.ExtraDays < 0 {
		return &ValidationError{Kind: KindNegativeExtraDays, Field: "extra_days", Value: req.ExtraDays}
	}
	switch req.Mode {
	case ModeWithinCity, ModeOutsideCity, ModeOnPremises:
	default:
		return &ValidationError{Kind: KindUnknownMode, Field: "mode", Value: string(req.Mode)}
	}
	return nil
}

func validateCounts(equipment, initialDays int, t Tariff) error {
	minEquipment := t.MinEquipment
	if minEquipment < MinEquipment {
		minEquipment = MinEquipment
	}
	if equipment < minEquipment {
		return &ValidationError{
			Kind:  KindBelowMinimum,
			Field: "equipment_count",
			Value: equipment,
			Msg:   fmt.Sprintf("a minimum of %d units is required", minEquipment),
		}
	}
	if initialDays <= 0 {
		return &ValidationError{Kind: KindNonPositiveDays, Field: "initial_days", Value: initialDays}
	}
	return nil
}

// NewRentalRequest builds and validates a typed request.
func NewRentalRequest(equipment, initialDays, extraDays int, mode Mode, t Tariff) (RentalRequest, error) {
	if mode == "" {
		mode = ModeWithinCity
	}
	req := RentalRequest{
		EquipmentCount: equipment,
		InitialDays:    initialDays,
		ExtraDays:      extraDays,
		Mode:           mode,
	}
	if err := Validate(req, t); err != nil {
		return RentalRequest{}, err
	}
	return req, nil
}

// ParseRaw converts boundary input into a validated request. Equipment count and
// initial days are type checked and range checked before extra days are looked at.
// A nil ExtraDays means zero. Strings are never numbers here; callers holding text
// (command-line flags) convert it first.
func ParseRaw(raw RawRental, t Tariff) (RentalRequest, error) {
	equipment, err := wholeNumber("equipment_count", raw.EquipmentCount, false)
	if err != nil {
		return RentalRequest{}, err
	}
	initial, err := wholeNumber("initial_days", raw.InitialDays, false)
	if err != nil {
		return RentalRequest{}, err
	}
	if err := validateCounts(equipment, initial, t); err != nil {
		return RentalRequest{}, err
	}
	extra, err := wholeNumber("extra_days", raw.ExtraDays, true)
	if err != nil {
		return RentalRequest{}, err
	}
	mode, ok := ParseMode(raw.Mode)
	if !ok {
		mode = Mode(raw.Mode)
	}
	return NewRentalRequest(equipment, initial, extra, mode, t)
}

func wholeNumber(field string, v any, optional bool) (int, error) {
	invalid := &ValidationError{Kind: KindInvalidType, Field: field, Value: v}
	switch n := v.(type) {
	case nil:
		if optional {
			return 0, nil
		}
		invalid.Msg = "is required"
		return 0, invalid
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		if int64(int(n)) != n {
			return 0, invalid
		}
		return int(n), nil
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, strconv.IntSize)
		if err != nil {
			return 0, invalid
		}
		return int(i), nil
	default:
		// strings, float64 and anything else: not an integer value.
		return 0, invalid
	}
}
