package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/policy"
	"warungpos/backend/internal/store"
)

// Summarize produces the read-only financial rollup: revenue totals, a
// per-payment-method breakdown, beverage sales, and the cash reconciliation
// closing_balance = opening_balance + cash_sales - expenses. With a full
// date range it adds one independently computed entry per calendar day.
// Results are cached briefly; identical arguments with no intervening
// writes yield identical output.
func (s *Service) Summarize(ctx context.Context, actor domain.Actor, req domain.SummaryRequest) (domain.SalesSummary, error) {
	if !policy.IsOwner(actor) {
		req.OutletID = actor.OutletID
	}
	if (req.StartDate == "") != (req.EndDate == "") {
		return domain.SalesSummary{}, &store.ValidationError{Field: "date_range", Message: "start_date and end_date must be provided together"}
	}

	hasRange := req.StartDate != ""
	startDay := time.Now().UTC().Truncate(24 * time.Hour)
	endDay := startDay
	if hasRange {
		var err error
		startDay, err = parseDay(req.StartDate)
		if err != nil {
			return domain.SalesSummary{}, &store.ValidationError{Field: "start_date", Message: "must be yyyy-mm-dd"}
		}
		endDay, err = parseDay(req.EndDate)
		if err != nil {
			return domain.SalesSummary{}, &store.ValidationError{Field: "end_date", Message: "must be yyyy-mm-dd"}
		}
		if endDay.Before(startDay) {
			return domain.SalesSummary{}, &store.ValidationError{Field: "end_date", Message: "must not precede start_date"}
		}
	}
	from := startDay
	to := endDay.AddDate(0, 0, 1)

	// A rangeless call and an explicit one-day range for the same day carry
	// different payloads (only the latter has a daily breakdown), so the key
	// must tell them apart.
	cacheKey := fmt.Sprintf("pos:summary:%s:%s:%s:%t", from.Format(dayFormat), endDay.Format(dayFormat), req.OutletID, hasRange)
	if cached, ok, err := s.summaryCache.GetSummary(ctx, cacheKey); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		log.Printf("[summary] WARN: cache read failed key=%s: %v", cacheKey, err)
	}

	totals, err := s.repo.GetSalesTotals(ctx, from, to, req.OutletID)
	if err != nil {
		return domain.SalesSummary{}, err
	}
	breakdown, err := s.repo.GetPaymentBreakdown(ctx, from, to, req.OutletID)
	if err != nil {
		return domain.SalesSummary{}, err
	}
	beverage, err := s.repo.GetCategorySales(ctx, from, to, req.OutletID, domain.CategoryBeverage)
	if err != nil {
		return domain.SalesSummary{}, err
	}
	ledger, err := s.repo.GetCashLedgerTotals(ctx, from, to, req.OutletID)
	if err != nil {
		return domain.SalesSummary{}, err
	}

	cashSales := methodTotal(breakdown, domain.PaymentCash)
	qrisSales := methodTotal(breakdown, domain.PaymentQris)

	summary := domain.SalesSummary{
		StartDate:          startDay.Format(dayFormat),
		EndDate:            endDay.Format(dayFormat),
		OutletID:           req.OutletID,
		OrderCount:         totals.OrderCount,
		TotalRevenue:       totals.Revenue,
		TotalSubtotal:      totals.Subtotal,
		TotalDiscount:      totals.Discount,
		TotalTax:           totals.Tax,
		TotalServiceCharge: totals.ServiceCharge,
		PaymentBreakdown:   breakdown,
		CashSales:          cashSales,
		QrisSales:          qrisSales,
		BeverageSales:      beverage,
		OpeningBalance:     ledger.OpeningBalance,
		Expenses:           ledger.Expenses,
		ClosingBalance:     ledger.OpeningBalance + cashSales - ledger.Expenses,
	}

	if hasRange {
		summary.DailyBreakdown = make([]domain.DailySummaryEntry, 0, int(endDay.Sub(startDay).Hours()/24)+1)
		for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
			entry, err := s.summarizeDay(ctx, day, req.OutletID)
			if err != nil {
				return domain.SalesSummary{}, err
			}
			summary.DailyBreakdown = append(summary.DailyBreakdown, entry)
		}
	}

	if err := s.summaryCache.SetSummary(ctx, cacheKey, &summary, s.summaryTTL); err != nil {
		log.Printf("[summary] WARN: cache write failed key=%s: %v", cacheKey, err)
	}
	return summary, nil
}

// summarizeDay computes one breakdown entry from that day's own ledger row
// and sales, never a running total carried from the prior day.
func (s *Service) summarizeDay(ctx context.Context, day time.Time, outletID string) (domain.DailySummaryEntry, error) {
	from := day
	to := day.AddDate(0, 0, 1)

	breakdown, err := s.repo.GetPaymentBreakdown(ctx, from, to, outletID)
	if err != nil {
		return domain.DailySummaryEntry{}, err
	}
	ledger, err := s.repo.GetCashLedgerTotals(ctx, from, to, outletID)
	if err != nil {
		return domain.DailySummaryEntry{}, err
	}

	cashSales := methodTotal(breakdown, domain.PaymentCash)
	qrisSales := methodTotal(breakdown, domain.PaymentQris)
	return domain.DailySummaryEntry{
		Date:           day.Format(dayFormat),
		OpeningBalance: ledger.OpeningBalance,
		Expenses:       ledger.Expenses,
		CashSales:      cashSales,
		QrisSales:      qrisSales,
		TotalSales:     cashSales + qrisSales,
		ClosingBalance: ledger.OpeningBalance + cashSales - ledger.Expenses,
	}, nil
}

func methodTotal(breakdown []domain.PaymentMethodSummary, method string) int64 {
	for _, entry := range breakdown {
		if entry.Method == method {
			return entry.Total
		}
	}
	return 0
}
