package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/fintera-ops/internal/config"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// checkEmailPreconditions reports whether an email for operation should be sent to recipient.
// Disabled notifications are not an error; a missing configuration or address is.
func (s *EmailService) checkEmailPreconditions(recipient, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Debug("Email notifications disabled, skipping", "operation", operation)
		return false, nil
	}
	if s.config.ResendAPIKey == "" {
		return false, errors.New("RESEND_API_KEY is not set")
	}
	if s.config.FromEmail == "" {
		return false, errors.New("FROM_EMAIL is not set")
	}
	if strings.TrimSpace(recipient) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

// SendPaymentLink emails the hosted checkout link of an invoice to its customer
func (s *EmailService) SendPaymentLink(ctx context.Context, invoice *models.Invoice, payment *models.InvoicePayment) error {
	to := invoice.Customer.Email
	ok, err := s.checkEmailPreconditions(to, "payment link")
	if !ok {
		return err
	}

	data := struct {
		CustomerName string
		Number       string
		Total        string
		Currency     string
		DueDate      string
		LinkURL      string
	}{
		CustomerName: invoice.Customer.Name,
		Number:       invoiceLabel(invoice),
		Total:        payment.Amount.StringFixed(2),
		Currency:     payment.Currency,
		DueDate:      invoice.DueDate.UTC().Format("02/01/2006"),
		LinkURL:      payment.LinkURL,
	}

	subject := fmt.Sprintf("Factura %s - enlace de pago", data.Number)
	return s.send(to, subject, "payment_link.html", data)
}

// SendPayrollPaid tells an employee their payroll was paid
func (s *EmailService) SendPayrollPaid(ctx context.Context, payroll *models.Payroll) error {
	to := payroll.User.Email
	ok, err := s.checkEmailPreconditions(to, "payroll paid")
	if !ok {
		return err
	}

	paidOn := ""
	if payroll.PaymentDate != nil {
		paidOn = payroll.PaymentDate.Format("02/01/2006")
	}
	data := struct {
		Name       string
		Period     string
		BaseSalary string
		Bonus      string
		Deductions string
		NetSalary  string
		PaidOn     string
	}{
		Name:       payroll.User.FullName,
		Period:     payroll.Period,
		BaseSalary: payroll.BaseSalary.StringFixed(2),
		Bonus:      payroll.Bonus.StringFixed(2),
		Deductions: payroll.Deductions.StringFixed(2),
		NetSalary:  payroll.NetSalary.StringFixed(2),
		PaidOn:     paidOn,
	}

	return s.send(to, "Planilla pagada "+payroll.Period, "payroll_paid.html", data)
}

func (s *EmailService) send(to, subject, templateName string, data interface{}) error {
	body, err := s.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}

	logger.Info("📧 [Email Sent]", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
