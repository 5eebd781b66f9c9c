package core

import "github.com/shopspring/decimal"

// FiatValue converts price (currency decimals) times amount (token decimals)
// into currency decimals, truncating towards zero. Both inputs are integers
// in their asset's smallest unit.
func FiatValue(price, tokenAmount decimal.Decimal, currencyDecimals, tokenDecimals int32) decimal.Decimal {
	return price.Mul(tokenAmount).Shift(currencyDecimals - tokenDecimals).Floor()
}
