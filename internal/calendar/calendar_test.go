package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEndOfDay(t *testing.T) {
	eod := EndOfDay(time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 15, 23, 59, 59, 999000000, time.UTC), eod)
}

func TestAddInterval(t *testing.T) {
	base := date(2024, 1, 10)

	tests := []struct {
		unit     string
		expected time.Time
	}{
		{Daily, date(2024, 1, 11)},
		{Weekly, date(2024, 1, 17)},
		{Monthly, date(2024, 2, 10)},
		{Yearly, date(2025, 1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			next, err := AddInterval(base, tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, next)
		})
	}

	_, err := AddInterval(base, "HOURLY")
	assert.Error(t, err)
}

func TestAddInterval_MonthOverflow(t *testing.T) {
	next, err := AddInterval(date(2023, 1, 31), Monthly)
	require.NoError(t, err)
	assert.Equal(t, date(2023, 3, 3), next)
}

func TestDiffDays(t *testing.T) {
	today := time.Date(2024, 3, 10, 17, 45, 0, 0, time.UTC)

	assert.Equal(t, 0, DiffDays(date(2024, 3, 10), today))
	assert.Equal(t, 7, DiffDays(date(2024, 3, 17), today))
	assert.Equal(t, -1, DiffDays(date(2024, 3, 9), today))
	assert.Equal(t, -7, DiffDays(time.Date(2024, 3, 3, 23, 0, 0, 0, time.UTC), today))
	// crosses a month boundary
	assert.Equal(t, 1, DiffDays(date(2024, 4, 1), date(2024, 3, 31)))
}

func TestPreviousPeriod(t *testing.T) {
	assert.Equal(t, "2024-02", PreviousPeriod(date(2024, 3, 31)))
	assert.Equal(t, "2023-12", PreviousPeriod(date(2024, 1, 15)))
}

func TestParsePeriod(t *testing.T) {
	first, err := ParsePeriod("2024-02")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 1), first)

	for _, bad := range []string{"", "2024-13", "2024/02", "24-02", "2024-02-01"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsPaymentDay(t *testing.T) {
	assert.True(t, IsPaymentDay(date(2024, 3, 15), 15))
	assert.False(t, IsPaymentDay(date(2024, 3, 14), 15))
	// short month: last day stands in for days 29-31
	assert.True(t, IsPaymentDay(date(2023, 2, 28), 31))
	assert.False(t, IsPaymentDay(date(2023, 2, 27), 31))
	assert.True(t, IsPaymentDay(date(2024, 4, 30), 31))
}

func TestNextPaymentDate(t *testing.T) {
	assert.Equal(t, date(2024, 3, 15), NextPaymentDate(date(2024, 3, 10), 15))
	assert.Equal(t, date(2024, 3, 15), NextPaymentDate(time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC), 15))
	assert.Equal(t, date(2024, 4, 15), NextPaymentDate(date(2024, 3, 16), 15))
	assert.Equal(t, date(2024, 2, 29), NextPaymentDate(date(2024, 2, 1), 31))
	assert.Equal(t, date(2025, 1, 5), NextPaymentDate(date(2024, 12, 20), 5))
}

func TestCalculationWindow(t *testing.T) {
	w, err := CalculationWindow("2024-02", 1, 31)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 1), w.From)
	assert.Equal(t, date(2024, 2, 29), w.To)

	w, err = CalculationWindow("2024-05", 20, 10)
	require.NoError(t, err)
	assert.Equal(t, w.From, w.To)

	_, err = CalculationWindow("May", 1, 31)
	assert.Error(t, err)
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	in := time.Date(2024, 1, 10, 22, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), DateOnly(in))
}
