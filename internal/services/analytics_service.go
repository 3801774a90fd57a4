package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ops/internal/calendar"
	"github.com/sjperalta/fintera-ops/internal/models"
	"github.com/sjperalta/fintera-ops/internal/repository"
)

type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	clock         Clock
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, clock Clock) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo, clock: clock}
}

// Summary aggregates the ledger of a calendar month (the current one when period is empty)
// and compares its realized net with the previous month.
func (s *AnalyticsService) Summary(ctx context.Context, tenantID uint, period string) (*models.LedgerSummary, error) {
	if period == "" {
		period = calendar.FormatPeriod(s.clock.Today())
	}
	start, err := calendar.ParsePeriod(period)
	if err != nil {
		return nil, validationError("%v", err)
	}
	end := start.AddDate(0, 1, 0)

	summary := &models.LedgerSummary{
		Period: period,
		From:   start,
		To:     end.AddDate(0, 0, -1),
	}

	totals, err := s.analyticsRepo.SumLedger(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	for _, t := range totals {
		amount := t.Total.Round(2)
		switch {
		case t.Type == models.TransactionTypeIncome && t.Status == models.TransactionStatusPaid:
			summary.IncomePaid = summary.IncomePaid.Add(amount)
		case t.Type == models.TransactionTypeIncome:
			summary.IncomePending = summary.IncomePending.Add(amount)
		case t.Status == models.TransactionStatusPaid:
			summary.ExpensePaid = summary.ExpensePaid.Add(amount)
		default:
			summary.ExpensePending = summary.ExpensePending.Add(amount)
		}
	}
	summary.Net = summary.IncomePaid.Sub(summary.ExpensePaid)

	previous, err := s.realizedNet(ctx, tenantID, start.AddDate(0, -1, 0), start)
	if err != nil {
		return nil, err
	}
	summary.PreviousNet = previous
	summary.NetChangePercentage = calculatePercentageChange(summary.Net, previous)

	summary.Receivables, err = s.analyticsRepo.Receivables(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for i := range summary.Receivables {
		summary.Receivables[i].Total = summary.Receivables[i].Total.Round(2)
	}
	return summary, nil
}

func (s *AnalyticsService) realizedNet(ctx context.Context, tenantID uint, from, to time.Time) (decimal.Decimal, error) {
	totals, err := s.analyticsRepo.SumLedger(ctx, tenantID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	net := decimal.Zero
	for _, t := range totals {
		if t.Status != models.TransactionStatusPaid {
			continue
		}
		if t.Type == models.TransactionTypeIncome {
			net = net.Add(t.Total)
		} else {
			net = net.Sub(t.Total)
		}
	}
	return net.Round(2), nil
}

// calculatePercentageChange computes the percentage difference between current and previous values,
// rounded to one decimal. A zero previous value yields 100 for growth and 0 otherwise.
func calculatePercentageChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100.0
		}
		return 0.0
	}
	change, _ := current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return change
}
