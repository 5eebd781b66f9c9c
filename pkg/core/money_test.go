package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFiatValue(t *testing.T) {
	tests := []struct {
		name             string
		price            string
		tokenAmount      string
		currencyDecimals int32
		tokenDecimals    int32
		want             string
	}{
		{
			name:             "token decimals above currency decimals",
			price:            "450",
			tokenAmount:      "2000000000000000000", // 2 tokens at 18 decimals
			currencyDecimals: 3,
			tokenDecimals:    18,
			want:             "900000",
		},
		{
			name:             "equal decimals",
			price:            "450",
			tokenAmount:      "2000",
			currencyDecimals: 3,
			tokenDecimals:    3,
			want:             "900000",
		},
		{
			name:             "currency decimals above token decimals",
			price:            "5",
			tokenAmount:      "100",
			currencyDecimals: 6,
			tokenDecimals:    2,
			want:             "5000000",
		},
		{
			name:             "rounds down to an integer",
			price:            "1",
			tokenAmount:      "1999999999999999999",
			currencyDecimals: 3,
			tokenDecimals:    18,
			want:             "1999",
		},
		{
			name:             "zero amount",
			price:            "450",
			tokenAmount:      "0",
			currencyDecimals: 3,
			tokenDecimals:    18,
			want:             "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			amount := decimal.RequireFromString(tt.tokenAmount)

			got := FiatValue(price, amount, tt.currencyDecimals, tt.tokenDecimals)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
