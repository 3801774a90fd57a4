package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService renders payroll data as spreadsheets and payslips
type ExportService struct {
	repos *repository.Repositories
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{repos: repos}
}

// payrollReport is the data shared by every payroll export format
type payrollReport struct {
	TenantName string
	Period     string
	Window     calendar.Window
	Payrolls   []models.Payroll
	Totals     payrollTotals
}

type payrollTotals struct {
	Base       decimal.Decimal
	Bonus      decimal.Decimal
	Deductions decimal.Decimal
	Net        decimal.Decimal
}

func (s *ExportService) loadPayrollReport(ctx context.Context, tenantID uint, period string) (*payrollReport, error) {
	tenant, err := s.repos.Tenant.FindByID(ctx, tenantID)
	if err != nil {
		return nil, mapStoreError(err, "tenant")
	}
	settings := tenant.PayrollSettings().Normalize()
	window, err := calendar.CalculationWindow(period, settings.CalculationStartDay, settings.CalculationEndDay)
	if err != nil {
		return nil, validationError("%v", err)
	}
	payrolls, err := s.repos.Payroll.ListByPeriod(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}

	report := &payrollReport{TenantName: tenant.Name, Period: period, Window: window, Payrolls: payrolls}
	for _, p := range payrolls {
		report.Totals.Base = report.Totals.Base.Add(p.BaseSalary)
		report.Totals.Bonus = report.Totals.Bonus.Add(p.Bonus)
		report.Totals.Deductions = report.Totals.Deductions.Add(p.Deductions)
		report.Totals.Net = report.Totals.Net.Add(p.NetSalary)
	}
	return report, nil
}

var payrollHeader = []string{"Empleado", "Correo", "Salario Base", "Bonificación", "Deducciones", "Neto", "Estado", "Fecha de Pago"}

func payrollRow(p models.Payroll) []string {
	paidOn := ""
	if p.PaymentDate != nil {
		paidOn = p.PaymentDate.Format("2006-01-02")
	}
	return []string{
		p.User.FullName,
		p.User.Email,
		p.BaseSalary.StringFixed(2),
		p.Bonus.StringFixed(2),
		p.Deductions.StringFixed(2),
		p.NetSalary.StringFixed(2),
		p.Status,
		paidOn,
	}
}

// ExportPayrollCSV renders a period's payrolls as CSV
func (s *ExportService) ExportPayrollCSV(ctx context.Context, tenantID uint, period string) ([]byte, string, error) {
	report, err := s.loadPayrollReport(ctx, tenantID, period)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	_ = writer.Write([]string{"Planilla", report.Period, report.Window.From.Format("2006-01-02"), report.Window.To.Format("2006-01-02")})
	_ = writer.Write(payrollHeader)
	for _, p := range report.Payrolls {
		_ = writer.Write(payrollRow(p))
	}
	_ = writer.Write([]string{"Total", "", report.Totals.Base.StringFixed(2), report.Totals.Bonus.StringFixed(2),
		report.Totals.Deductions.StringFixed(2), report.Totals.Net.StringFixed(2), "", ""})
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), fmt.Sprintf("planilla_%s.csv", period), nil
}

// ExportPayrollXLSX renders a period's payrolls as a spreadsheet with the calculation window
func (s *ExportService) ExportPayrollXLSX(ctx context.Context, tenantID uint, period string) ([]byte, string, error) {
	report, err := s.loadPayrollReport(ctx, tenantID, period)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Planilla"
	_ = f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Planilla %s - %s", report.Period, report.TenantName))
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheet, "A2", "Período de cálculo")
	_ = f.SetCellValue(sheet, "B2", report.Window.From.Format("2006-01-02"))
	_ = f.SetCellValue(sheet, "C2", report.Window.To.Format("2006-01-02"))

	const headerRow = 4
	for col, title := range payrollHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		_ = f.SetCellValue(sheet, cell, title)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(payrollHeader), headerRow)
	_ = f.SetCellStyle(sheet, "A4", lastHeader, headerStyle)

	row := headerRow + 1
	for _, p := range report.Payrolls {
		values := []interface{}{
			p.User.FullName,
			p.User.Email,
			p.BaseSalary.InexactFloat64(),
			p.Bonus.InexactFloat64(),
			p.Deductions.InexactFloat64(),
			p.NetSalary.InexactFloat64(),
			p.Status,
		}
		if p.PaymentDate != nil {
			values = append(values, p.PaymentDate.Format("2006-01-02"))
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetSheetRow(sheet, cell, &values)
		row++
	}

	totalCell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, totalCell, &[]interface{}{
		"Total", "",
		report.Totals.Base.InexactFloat64(),
		report.Totals.Bonus.InexactFloat64(),
		report.Totals.Deductions.InexactFloat64(),
		report.Totals.Net.InexactFloat64(),
	})
	_ = f.SetColWidth(sheet, "A", "B", 28)
	_ = f.SetColWidth(sheet, "C", "H", 15)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("planilla_%s.xlsx", period), nil
}

// PayslipPDF renders the payslip of one payroll
func (s *ExportService) PayslipPDF(ctx context.Context, tenantID, payrollID uint) ([]byte, string, error) {
	payroll, err := s.repos.Payroll.FindByID(ctx, tenantID, payrollID)
	if err != nil {
		return nil, "", mapStoreError(err, "payroll")
	}
	tenant, err := s.repos.Tenant.FindByID(ctx, tenantID)
	if err != nil {
		return nil, "", mapStoreError(err, "tenant")
	}
	advances, err := s.repos.Advance.FindByPayroll(ctx, payroll.ID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Comprobante de pago - "+tenant.Name))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		pdf.Cell(60, 8, tr(label))
		pdf.Cell(0, 8, tr(value))
		pdf.Ln(7)
	}
	line("Empleado:", payroll.User.FullName)
	line("Correo:", payroll.User.Email)
	line("Período:", payroll.Period)
	line("Estado:", payroll.Status)
	if payroll.PaymentDate != nil {
		line("Fecha de pago:", payroll.PaymentDate.Format("02/01/2006"))
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, "Detalle")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 11)
	line("Salario base:", payroll.BaseSalary.StringFixed(2))
	line("Bonificación:", payroll.Bonus.StringFixed(2))
	line("Deducciones:", "-"+payroll.Deductions.StringFixed(2))
	for _, a := range advances {
		desc := a.Description
		if desc == "" {
			desc = "Adelanto"
		}
		line("   "+a.Date.Format("02/01/2006"), desc+" ("+a.Amount.StringFixed(2)+")")
	}
	pdf.SetFont("Arial", "B", 12)
	line("Salario neto:", payroll.NetSalary.StringFixed(2))
	pdf.SetFont("Arial", "", 10)
	line("Son:", AmountInWords(payroll.NetSalary))

	if payroll.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, tr(payroll.Notes), "", "L", false)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("comprobante_%s_%d.pdf", payroll.Period, payroll.ID), nil
}
