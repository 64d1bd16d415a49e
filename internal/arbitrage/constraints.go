package arbitrage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when an on-demand caller leaves a parameter unset.
const (
	DefaultWallet    = 50_000_000
	DefaultCargo     = 230.0
	DefaultMinProfit = 1_000_000
	DefaultLimit     = 10
)

// ErrInvalidConstraints is wrapped by every ValidationError.
var ErrInvalidConstraints = errors.New("invalid constraints")

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var validate = validator.New(validator.WithRequiredStructEnabled())

// Constraints are the hard limits of an on-demand computation.
type Constraints struct {
	Wallet    float64 `json:"wallet" validate:"gte=0"`
	Cargo     float64 `json:"cargo" validate:"gte=0"`
	MinProfit float64 `json:"min_profit" validate:"gte=0"`
	Limit     int     `json:"limit" validate:"gte=0"`
}

// DefaultConstraints returns the constraints used when nothing is supplied.
func DefaultConstraints() Constraints {
	return Constraints{
		Wallet:    DefaultWallet,
		Cargo:     DefaultCargo,
		MinProfit: DefaultMinProfit,
		Limit:     DefaultLimit,
	}
}

// ValidationError describes a rejected on-demand parameter.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConstraints
}

// Validate checks that every constraint is a non-negative number.
func (c Constraints) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:  paramName(fe.Field()),
			Value:  fmt.Sprintf("%v", fe.Value()),
			Reason: "must be a non-negative number",
		}
	}

	return fmt.Errorf("%w: %v", ErrInvalidConstraints, err)
}

// ParseConstraints builds constraints from named string parameters, such as
// URL query values. Empty parameters take their default.
func ParseConstraints(get func(name string) string) (Constraints, error) {
	c := DefaultConstraints()

	var err error
	c.Wallet, err = parseFloatParam(get, "wallet", c.Wallet)
	if err != nil {
		return Constraints{}, err
	}

	c.Cargo, err = parseFloatParam(get, "cargo", c.Cargo)
	if err != nil {
		return Constraints{}, err
	}

	c.MinProfit, err = parseFloatParam(get, "min_profit", c.MinProfit)
	if err != nil {
		return Constraints{}, err
	}

	raw := strings.TrimSpace(get("limit"))
	if raw != "" {
		c.Limit, err = strconv.Atoi(raw)
		if err != nil {
			return Constraints{}, &ValidationError{Field: "limit", Value: raw, Reason: "not an integer"}
		}
	}

	err = c.Validate()
	if err != nil {
		return Constraints{}, err
	}

	return c, nil
}

func parseFloatParam(get func(name string) string, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(get(name))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: name, Value: raw, Reason: "not a number"}
	}

	return v, nil
}

func paramName(field string) string {
	switch field {
	case "Wallet":
		return "wallet"
	case "Cargo":
		return "cargo"
	case "MinProfit":
		return "min_profit"
	case "Limit":
		return "limit"
	default:
		return strings.ToLower(field)
	}
}
