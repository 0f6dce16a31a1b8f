// Package amount implements the fixed-point monetary quantity used throughout
// the ledger: a signed decimal with exactly four fractional digits and
// checked (never-wrapping) arithmetic.
//
// Amount is backed by github.com/shopspring/decimal, whose Decimal is an
// arbitrary-precision type built on math/big.Int. That buys us the range the
// ledger needs (at least ±10^28) for free; what it does not buy us is
// "checked" overflow semantics, since an arbitrary-precision type never
// actually overflows. Add and Sub therefore perform the real decimal
// arithmetic and then compare the rounded result against Bound, turning
// "exceeds the representable range" into the explicit ErrAdditionOverflow /
// ErrSubtractionOverflow errors the state machine expects.
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DecimalPlaces is the fixed number of fractional digits every Amount is
// rounded to.
const DecimalPlaces = 4

// ErrAdditionOverflow is returned by Add when the true sum exceeds the
// representable range.
var ErrAdditionOverflow = errors.New("addition overflow")

// ErrSubtractionOverflow is returned by Sub when the true difference exceeds
// the representable range.
var ErrSubtractionOverflow = errors.New("subtraction overflow")

// ErrInvalidAmount is returned by Parse when the input is not a valid decimal
// string.
var ErrInvalidAmount = errors.New("invalid amount")

// Bound is the representable magnitude every Amount value is checked
// against after an arithmetic operation. It comfortably covers the ±10^28
// range required of the type.
var Bound = decimal.New(1, 28) // 10^28

// Amount is a signed fixed-point decimal with exactly DecimalPlaces
// fractional digits. The zero value is a valid, positive-signed zero.
type Amount struct {
	d decimal.Decimal
}

// Zero returns the additive identity.
func Zero() Amount {
	return Amount{d: decimal.Zero}
}

// Parse parses a decimal string with an optional leading sign. Surrounding
// whitespace is trimmed and the parsed value is rounded to DecimalPlaces
// fractional digits using half-away-from-zero rounding before it is
// returned, matching the external input contract.
func Parse(s string) (Amount, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Amount{}, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return Amount{d: roundHalfAwayFromZero(d)}, nil
}

// FromDecimal wraps an already-parsed decimal.Decimal, rounding it to
// DecimalPlaces using half-away-from-zero rounding.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: roundHalfAwayFromZero(d)}
}

// roundHalfAwayFromZero rounds d to DecimalPlaces fractional digits, rounding
// ties away from zero (1.00005 -> 1.0001, -1.00005 -> -1.0001). decimal.Round
// already rounds half away from zero (as opposed to RoundBank's round-half-
// to-even), which matches rust_decimal's RoundingStrategy::MidpointAwayFromZero
// used by the original engine this system is modeled on.
func roundHalfAwayFromZero(d decimal.Decimal) decimal.Decimal {
	return d.Round(DecimalPlaces)
}

// checkBound reports whether d's magnitude stays within Bound.
func checkBound(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Bound)
}

// Add computes a+b, rounded to DecimalPlaces. Returns ErrAdditionOverflow if
// the result's magnitude exceeds Bound.
func Add(a, b Amount) (Amount, error) {
	sum := a.d.Add(b.d).Round(DecimalPlaces)
	if !checkBound(sum) {
		return Amount{}, ErrAdditionOverflow
	}
	return Amount{d: sum}, nil
}

// Sub computes a-b, rounded to DecimalPlaces. Returns ErrSubtractionOverflow
// if the result's magnitude exceeds Bound.
func Sub(a, b Amount) (Amount, error) {
	diff := a.d.Sub(b.d).Round(DecimalPlaces)
	if !checkBound(diff) {
		return Amount{}, ErrSubtractionOverflow
	}
	return Amount{d: diff}, nil
}

// Negate returns -a. Negation can never overflow since Bound is symmetric.
func Negate(a Amount) Amount {
	return Amount{d: a.d.Neg()}
}

// IsPositive reports whether a is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// IsZero reports whether a is exactly zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// Cmp compares a and b, returning -1, 0 or 1 as a is less than, equal to, or
// greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// GreaterThanOrEqual reports whether a >= b.
func (a Amount) GreaterThanOrEqual(b Amount) bool {
	return a.d.GreaterThanOrEqual(b.d)
}

// Equal reports whether a and b represent the same value.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// String renders the amount with exactly DecimalPlaces fractional digits,
// e.g. "5.0000" or "-1.1235".
func (a Amount) String() string {
	return a.d.StringFixed(DecimalPlaces)
}
