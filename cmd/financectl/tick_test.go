package main

import (
	"testing"

	"github.com/sjperalta/fintera-ops/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTicks(t *testing.T) {
	tests := []struct {
		target   string
		expected []string
	}{
		{"recurring", []string{services.JobRecurringObligations}},
		{" Invoices ", []string{services.JobInvoiceLifecycle}},
		{"payroll", []string{services.JobPayrollScheduling}},
		{services.JobPayrollScheduling, []string{services.JobPayrollScheduling}},
		{"all", services.JobNames},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			names, err := resolveTicks(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names)
		})
	}

	_, err := resolveTicks("backups")
	assert.EqualError(t, err, `unknown tick "backups", expected recurring, invoices, payroll or all`)
}

func TestParseDateFlag(t *testing.T) {
	d, err := parseDateFlag("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseDateFlag("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.Format("2006-01-02"))

	_, err = parseDateFlag("29/02/2024")
	assert.Error(t, err)
}
