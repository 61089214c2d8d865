// Package types defines core value types shared across the domain.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with exact decimal arithmetic.
type Money = decimal.Decimal

// NewMoney creates Money from a float (convenience for handlers and tests).
func NewMoney(value float64) Money {
	return decimal.NewFromFloat(value)
}

// NewMoneyFromString parses a decimal string into Money.
func NewMoneyFromString(value string) (Money, error) {
	return decimal.NewFromString(value)
}

// ZeroMoney returns the zero amount.
func ZeroMoney() Money {
	return decimal.Zero
}

// MulQuantity multiplies a unit price by an integer quantity.
func MulQuantity(price Money, qty int64) Money {
	return price.Mul(decimal.NewFromInt(qty))
}
