package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/restock"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/store/memory"
)

func seedOrderOn(t *testing.T, repo interface {
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
}, day string, outletID string, method string, total int64, items []domain.OrderItem) {
	t.Helper()
	at, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		t.Fatalf("parse day %s: %v", day, err)
	}
	_, err = repo.CreateOrder(context.Background(), domain.Order{
		OutletID:        outletID,
		CashierUsername: "cashier",
		OrderType:       domain.OrderTypeDineIn,
		PaymentMethod:   method,
		Subtotal:        total,
		Total:           total,
		AmountPaid:      total,
		TransactionTime: at.Add(10 * time.Hour),
		Items:           items,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestSummarizeClosingBalance(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	day := "2026-08-10"
	seedOrderOn(t, repo, day, "outlet-pusat", domain.PaymentCash, 10000, []domain.OrderItem{
		{ProductID: "prd-jeruk", ProductName: "Es Jeruk Peras", Category: domain.CategoryBeverage, Quantity: 1, UnitPrice: 10000, LineTotal: 10000},
	})
	if _, err := svc.UpsertDailyCash(ctx, ownerActor, domain.DailyCashUpsertRequest{
		OutletID:       "outlet-pusat",
		Date:           day,
		OpeningBalance: 20000,
		Expenses:       3000,
	}); err != nil {
		t.Fatalf("upsert daily cash: %v", err)
	}

	summary, err := svc.Summarize(ctx, ownerActor, domain.SummaryRequest{
		StartDate: day,
		EndDate:   day,
		OutletID:  "outlet-pusat",
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if summary.CashSales != 10000 {
		t.Fatalf("expected cash sales 10000, got %d", summary.CashSales)
	}
	if summary.BeverageSales != 10000 {
		t.Fatalf("expected beverage sales 10000, got %d", summary.BeverageSales)
	}
	if summary.ClosingBalance != 27000 {
		t.Fatalf("expected closing balance 27000 (20000 + 10000 - 3000), got %d", summary.ClosingBalance)
	}
}

func TestSummarizeTwoDayBreakdownIsIndependentPerDay(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seedOrderOn(t, repo, "2026-08-01", "outlet-pusat", domain.PaymentCash, 50000, nil)
	seedOrderOn(t, repo, "2026-08-02", "outlet-pusat", domain.PaymentQris, 30000, nil)
	for _, entry := range []struct {
		day     string
		opening int64
		expense int64
	}{
		{"2026-08-01", 10000, 2000},
		{"2026-08-02", 15000, 0},
	} {
		if _, err := svc.UpsertDailyCash(ctx, ownerActor, domain.DailyCashUpsertRequest{
			OutletID:       "outlet-pusat",
			Date:           entry.day,
			OpeningBalance: entry.opening,
			Expenses:       entry.expense,
		}); err != nil {
			t.Fatalf("upsert daily cash %s: %v", entry.day, err)
		}
	}

	summary, err := svc.Summarize(ctx, ownerActor, domain.SummaryRequest{
		StartDate: "2026-08-01",
		EndDate:   "2026-08-02",
		OutletID:  "outlet-pusat",
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if len(summary.DailyBreakdown) != 2 {
		t.Fatalf("expected exactly 2 daily entries, got %d", len(summary.DailyBreakdown))
	}

	day1 := summary.DailyBreakdown[0]
	if day1.Date != "2026-08-01" || day1.CashSales != 50000 || day1.QrisSales != 0 {
		t.Fatalf("unexpected day 1 entry: %+v", day1)
	}
	if day1.ClosingBalance != 58000 {
		t.Fatalf("expected day 1 closing 58000 (10000 + 50000 - 2000), got %d", day1.ClosingBalance)
	}

	// Day 2 must be computed from its own ledger row and sales, not a
	// running total carried over from day 1.
	day2 := summary.DailyBreakdown[1]
	if day2.Date != "2026-08-02" || day2.CashSales != 0 || day2.QrisSales != 30000 {
		t.Fatalf("unexpected day 2 entry: %+v", day2)
	}
	if day2.ClosingBalance != 15000 {
		t.Fatalf("expected day 2 closing 15000 (15000 + 0 - 0), got %d", day2.ClosingBalance)
	}

	if summary.OrderCount != 2 || summary.TotalRevenue != 80000 {
		t.Fatalf("expected 2 orders totalling 80000, got %d / %d", summary.OrderCount, summary.TotalRevenue)
	}
}

func TestSummarizeDateRangeValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var validationErr *store.ValidationError
	_, err := svc.Summarize(ctx, ownerActor, domain.SummaryRequest{StartDate: "2026-08-01"})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for lone start_date, got %v", err)
	}
	_, err = svc.Summarize(ctx, ownerActor, domain.SummaryRequest{StartDate: "2026-08-02", EndDate: "2026-08-01"})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for inverted range, got %v", err)
	}
	_, err = svc.Summarize(ctx, ownerActor, domain.SummaryRequest{StartDate: "not-a-date", EndDate: "2026-08-01"})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for malformed date, got %v", err)
	}
}

func TestSummarizeScopesNonOwnerToOwnOutlet(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seedOrderOn(t, repo, "2026-08-05", "outlet-pusat", domain.PaymentCash, 10000, nil)
	seedOrderOn(t, repo, "2026-08-05", "outlet-cabang", domain.PaymentCash, 99000, nil)

	summary, err := svc.Summarize(ctx, managerActor, domain.SummaryRequest{
		StartDate: "2026-08-05",
		EndDate:   "2026-08-05",
		OutletID:  "outlet-cabang",
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.OutletID != "outlet-pusat" {
		t.Fatalf("expected manager to be forced to their own outlet, got %s", summary.OutletID)
	}
	if summary.TotalRevenue != 10000 {
		t.Fatalf("expected only outlet-pusat revenue 10000, got %d", summary.TotalRevenue)
	}
}

func TestSummarizeDailyTotalSalesCountsCashAndQrisOnly(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	day := "2026-08-12"
	seedOrderOn(t, repo, day, "outlet-pusat", domain.PaymentCash, 10000, nil)
	seedOrderOn(t, repo, day, "outlet-pusat", domain.PaymentQris, 5000, nil)
	seedOrderOn(t, repo, day, "outlet-pusat", domain.PaymentDebit, 7000, nil)

	summary, err := svc.Summarize(ctx, ownerActor, domain.SummaryRequest{
		StartDate: day,
		EndDate:   day,
		OutletID:  "outlet-pusat",
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summary.DailyBreakdown) != 1 {
		t.Fatalf("expected 1 daily entry, got %d", len(summary.DailyBreakdown))
	}
	entry := summary.DailyBreakdown[0]
	if entry.CashSales != 10000 || entry.QrisSales != 5000 {
		t.Fatalf("unexpected cash/qris split: %+v", entry)
	}
	if entry.TotalSales != 15000 {
		t.Fatalf("expected total_sales 15000 (cash + qris, debit excluded), got %d", entry.TotalSales)
	}
	// The debit order still counts toward the period revenue.
	if summary.TotalRevenue != 22000 {
		t.Fatalf("expected total revenue 22000, got %d", summary.TotalRevenue)
	}
}

type mapSummaryCache struct {
	entries map[string]*domain.SalesSummary
}

func (c *mapSummaryCache) GetSummary(_ context.Context, key string) (*domain.SalesSummary, bool, error) {
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *mapSummaryCache) SetSummary(_ context.Context, key string, value *domain.SalesSummary, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

func TestSummarizeCacheSeparatesRangelessAndOneDayRange(t *testing.T) {
	repo := memory.NewSeeded()
	cacheStore := &mapSummaryCache{entries: map[string]*domain.SalesSummary{}}
	svc := New(repo, restock.NewEngine(nil, 0), cacheStore, time.Minute)
	ctx := context.Background()

	today := time.Now().UTC().Format("2006-01-02")
	seedOrderOn(t, repo, today, "outlet-pusat", domain.PaymentCash, 12000, nil)

	rangeless, err := svc.Summarize(ctx, ownerActor, domain.SummaryRequest{OutletID: "outlet-pusat"})
	if err != nil {
		t.Fatalf("rangeless summarize: %v", err)
	}
	if len(rangeless.DailyBreakdown) != 0 {
		t.Fatalf("expected no daily breakdown without an explicit range, got %d entries", len(rangeless.DailyBreakdown))
	}

	ranged, err := svc.Summarize(ctx, ownerActor, domain.SummaryRequest{
		StartDate: today,
		EndDate:   today,
		OutletID:  "outlet-pusat",
	})
	if err != nil {
		t.Fatalf("ranged summarize: %v", err)
	}
	if len(ranged.DailyBreakdown) != 1 {
		t.Fatalf("expected 1 daily breakdown entry for an explicit one-day range, got %d", len(ranged.DailyBreakdown))
	}
	if len(cacheStore.entries) != 2 {
		t.Fatalf("expected the two calls to occupy distinct cache keys, got %d", len(cacheStore.entries))
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seedOrderOn(t, repo, "2026-08-07", "outlet-pusat", domain.PaymentCash, 12000, nil)

	req := domain.SummaryRequest{StartDate: "2026-08-07", EndDate: "2026-08-07", OutletID: "outlet-pusat"}
	first, err := svc.Summarize(ctx, ownerActor, req)
	if err != nil {
		t.Fatalf("first summarize: %v", err)
	}
	second, err := svc.Summarize(ctx, ownerActor, req)
	if err != nil {
		t.Fatalf("second summarize: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical summaries, got\n%+v\nvs\n%+v", first, second)
	}
}
