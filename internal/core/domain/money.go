package domain

import (
	"fmt"

	"github.com/corebank/bancore/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MinorUnitScale is the number of decimal places carried by account balances
// and transaction amounts. Balances are stored as int64 minor units; decimals
// exist only at the API boundary.
const MinorUnitScale = 2

// ToMinorUnits converts a boundary decimal amount into integer minor units.
// Amounts with more fractional digits than the scale allows are rejected
// rather than rounded, so no precision is ever invented or lost.
func ToMinorUnits(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(MinorUnitScale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, d.String(), MinorUnitScale)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: amount %s out of range", apperrors.ErrValidation, d.String())
	}
	return shifted.IntPart(), nil
}

// FromMinorUnits converts integer minor units back into a decimal for display.
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -MinorUnitScale)
}
