package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "CERO CON 00/100"},
		{"1", "UNO CON 00/100"},
		{"21", "VEINTIUNO CON 00/100"},
		{"100", "CIEN CON 00/100"},
		{"101", "CIENTO UNO CON 00/100"},
		{"1000", "MIL CON 00/100"},
		{"1500.5", "MIL QUINIENTOS CON 50/100"},
		{"21000", "VEINTIÚN MIL CON 00/100"},
		{"25000", "VEINTICINCO MIL CON 00/100"},
		{"31000", "TREINTA Y UN MIL CON 00/100"},
		{"101000", "CIENTO UN MIL CON 00/100"},
		{"1000000", "UN MILLÓN CON 00/100"},
		{"2500000.75", "DOS MILLONES QUINIENTOS MIL CON 75/100"},
		{"999.999", "MIL CON 00/100"},
		{"-12.30", "MENOS DOCE CON 30/100"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, AmountInWords(decimal.RequireFromString(tt.amount)))
		})
	}
}
