package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountInWords spells an amount in Spanish the way payslips print it.
// Example: 1500.50 -> "MIL QUINIENTOS CON 50/100"
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	prefix := ""
	if amount.IsNegative() {
		prefix = "MENOS "
		amount = amount.Neg()
	}
	integer := amount.IntPart()
	cents := amount.Sub(decimal.NewFromInt(integer)).Mul(decimal.NewFromInt(100)).IntPart()
	return fmt.Sprintf("%s%s CON %02d/100", prefix, numberToWords(integer), cents)
}

func numberToWords(n int64) string {
	switch {
	case n == 0:
		return "CERO"
	case n < 10:
		return units[n]
	case n < 30:
		return specials[n]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " Y " + units[n%10]
	case n < 1000:
		h, rest := n/100, n%100
		if rest == 0 {
			return hundreds[h]
		}
		if h == 1 {
			return "CIENTO " + numberToWords(rest)
		}
		return hundreds[h] + " " + numberToWords(rest)
	case n < 1_000_000:
		return scaled(n/1000, n%1000, "MIL", "MIL")
	case n < 1_000_000_000_000:
		return scaled(n/1_000_000, n%1_000_000, "UN MILLÓN", "MILLONES")
	}
	return "NÚMERO MUY GRANDE"
}

// scaled renders count*scale + rest. A count of one takes the singular form ("MIL", "UN MILLÓN").
func scaled(count, rest int64, one, many string) string {
	text := one
	if count > 1 {
		text = apocope(numberToWords(count)) + " " + many
	}
	if rest == 0 {
		return text
	}
	return text + " " + numberToWords(rest)
}

// apocope shortens a trailing "UNO" before a noun: "VEINTIUNO" -> "VEINTIÚN", "TREINTA Y UNO" -> "TREINTA Y UN"
func apocope(words string) string {
	if strings.HasSuffix(words, "VEINTIUNO") {
		return strings.TrimSuffix(words, "VEINTIUNO") + "VEINTIÚN"
	}
	if strings.HasSuffix(words, "UNO") {
		return strings.TrimSuffix(words, "O")
	}
	return words
}

var units = []string{
	"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
}

var specials = map[int64]string{
	10: "DIEZ", 11: "ONCE", 12: "DOCE", 13: "TRECE", 14: "CATORCE", 15: "QUINCE",
	16: "DIECISÉIS", 17: "DIECISIETE", 18: "DIECIOCHO", 19: "DIECINUEVE",
	20: "VEINTE", 21: "VEINTIUNO", 22: "VEINTIDÓS", 23: "VEINTITRÉS", 24: "VEINTICUATRO",
	25: "VEINTICINCO", 26: "VEINTISÉIS", 27: "VEINTISIETE", 28: "VEINTIOCHO", 29: "VEINTINUEVE",
}

var tens = []string{
	"", "", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var hundreds = []string{
	"", "CIEN", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}
