package utils_test

import (
	"testing"

	"github.com/SscSPs/tax_filing_app/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMinorUnitConversion(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		minor    int64
	}{
		{name: "deposit", amount: "50.00", currency: "CAD", minor: 5000},
		{name: "final balance", amount: "250", currency: "cad", minor: 25000},
		{name: "rounds half away from zero", amount: "10.005", currency: "CAD", minor: 1001},
		{name: "zero decimal currency", amount: "1200", currency: "JPY", minor: 1200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.minor, utils.ToMinorUnits(amount, tt.currency))
		})
	}

	assert.True(t, decimal.RequireFromString("250").Equal(utils.FromMinorUnits(25000, "CAD")))
	assert.True(t, decimal.RequireFromString("1200").Equal(utils.FromMinorUnits(1200, "JPY")))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "250.00 CAD", utils.FormatMoney(decimal.NewFromInt(250), "cad"))
	assert.Equal(t, "50.50 CAD", utils.FormatMoney(decimal.RequireFromString("50.5"), "CAD"))
}
