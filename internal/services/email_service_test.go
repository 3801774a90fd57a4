package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/config"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_checkEmailPreconditions(t *testing.T) {
	logger.Setup("test")

	// Email notifications disabled
	service := NewEmailService(&config.Config{EnableEmailNotifications: false})
	ok, err := service.checkEmailPreconditions("test@example.com", "test operation")
	assert.False(t, ok, "Should return false when notifications are disabled")
	assert.Nil(t, err, "Should not return error when notifications are disabled")

	// Email configured and valid
	cfg := &config.Config{
		EnableEmailNotifications: true,
		ResendAPIKey:             "test_key",
		FromEmail:                "from@example.com",
	}
	service = NewEmailService(cfg)
	ok, err = service.checkEmailPreconditions("test@example.com", "test operation")
	assert.True(t, ok)
	assert.Nil(t, err)

	// Missing key
	service = NewEmailService(&config.Config{EnableEmailNotifications: true, FromEmail: "from@example.com"})
	ok, err = service.checkEmailPreconditions("test@example.com", "test operation")
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY is not set")

	// Empty recipient
	service = NewEmailService(cfg)
	ok, err = service.checkEmailPreconditions("", "test operation")
	assert.False(t, ok)
	assert.EqualError(t, err, "email address is empty")
}

func TestEmailService_renderTemplates(t *testing.T) {
	service := NewEmailService(&config.Config{})

	body, err := service.renderTemplate("payment_link.html", struct {
		CustomerName, Number, Total, Currency, DueDate, LinkURL string
	}{"Acme", "F-001", "1150.00", "USD", "10/02/2024", "https://pay.example/lnk_1"})
	require.NoError(t, err)
	assert.Contains(t, body, "F-001")
	assert.Contains(t, body, "https://pay.example/lnk_1")

	_, err = service.renderTemplate("missing.html", nil)
	assert.Error(t, err)
}

func TestEmailService_SendPayrollPaidSkipsWhenDisabled(t *testing.T) {
	service := NewEmailService(&config.Config{EnableEmailNotifications: false})
	payroll := &models.Payroll{
		Period:    "2024-01",
		NetSalary: decimal.NewFromInt(25000),
		User:      models.User{Email: "ana@example.com"},
	}
	assert.NoError(t, service.SendPayrollPaid(context.Background(), payroll))
}
