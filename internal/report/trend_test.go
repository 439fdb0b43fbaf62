package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
	"github.com/Paulkm2006/hust-ledger-back/internal/ecard"
)

func seedReport(t *testing.T, store *MemStore, period domain.Period, account, label string, count int, spend float64) {
	t.Helper()
	_, err := store.Put(context.Background(), period, account, &domain.ReportDocument{
		Date:         label,
		TotalCount:   count,
		TotalExpense: spend,
	})
	if err != nil {
		t.Fatalf("seed %s failed: %v", label, err)
	}
}

func TestTrendWeekUsesExistingReportsOnly(t *testing.T) {
	api := &fakeAPI{pages: map[string]map[string]*ecard.Page{}}
	agg, store := newTestAggregator(api)

	// anchor is ISO week 35; weeks 34 and 32 exist, week 33 was never built
	seedReport(t, store, domain.PeriodWeek, "123456", "202634", 12, 340.50)
	seedReport(t, store, domain.PeriodWeek, "123456", "202632", 7, 120.00)

	doc, _, err := agg.Generate(context.Background(), "123456", domain.PeriodWeek, "tok")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// most recent first
	if doc.Trend[0].Count != 12 || !almostEqual(doc.Trend[0].Expense, 340.50) {
		t.Errorf("Trend[0] = %+v, want week 34", doc.Trend[0])
	}
	if doc.Trend[1].Count != 0 || doc.Trend[1].Expense != 0 {
		t.Errorf("Trend[1] = %+v, want zero slot for missing week", doc.Trend[1])
	}
	if doc.Trend[2].Count != 7 || !almostEqual(doc.Trend[2].Expense, 120.00) {
		t.Errorf("Trend[2] = %+v, want week 32", doc.Trend[2])
	}

	// week history is never backfilled
	if api.sessions != 1 {
		t.Errorf("issued %d sessions, want 1 (no backfill for weeks)", api.sessions)
	}
}

func TestTrendMonthBackfillsMissingMonths(t *testing.T) {
	monthPage := func(merchant string, minor int64) map[string]*ecard.Page {
		return map[string]*ecard.Page{
			"1": {
				NextCursor: "0",
				Transactions: []ecard.Transaction{
					expense("20260801120000", merchant, "m-x", minor),
				},
			},
		}
	}

	api := &fakeAPI{pages: map[string]map[string]*ecard.Page{
		"2026-08-01": monthPage("八月商户", 1000),
		"2026-07-01": monthPage("七月商户", 2000),
		"2026-06-01": monthPage("六月商户", 3000),
		"2026-05-01": monthPage("五月商户", 4000),
	}}
	agg, store := newTestAggregator(api)

	doc, _, err := agg.Generate(context.Background(), "123456", domain.PeriodMonth, "tok")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	wantTrend := []struct {
		expense float64
	}{{20.00}, {30.00}, {40.00}}
	for i, want := range wantTrend {
		if doc.Trend[i].Count != 1 || !almostEqual(doc.Trend[i].Expense, want.expense) {
			t.Errorf("Trend[%d] = %+v, want expense %v", i, doc.Trend[i], want.expense)
		}
	}

	// one session for the anchor month plus one per backfilled month
	if api.sessions != 4 {
		t.Errorf("issued %d sessions, want 4", api.sessions)
	}

	// the backfilled documents are persisted and retrievable
	for _, label := range []string{"202607", "202606", "202605"} {
		if _, err := store.Get(context.Background(), domain.PeriodMonth, "123456", label); err != nil {
			t.Errorf("backfilled month %s missing: %v", label, err)
		}
	}

	// the backfill never recurses: the oldest generated month sees its own
	// predecessors as absent and keeps zero slots instead of generating
	// April, March and February
	may, err := store.Get(context.Background(), domain.PeriodMonth, "123456", "202605")
	if err != nil {
		t.Fatal(err)
	}
	for i, slot := range may.Trend {
		if slot.Count != 0 || slot.Expense != 0 {
			t.Errorf("backfilled month trend[%d] = %+v, want zero", i, slot)
		}
	}
}

func TestTrendMonthBackfillReusesExistingReports(t *testing.T) {
	api := &fakeAPI{pages: map[string]map[string]*ecard.Page{}}
	agg, store := newTestAggregator(api)

	seedReport(t, store, domain.PeriodMonth, "123456", "202607", 30, 900.00)
	seedReport(t, store, domain.PeriodMonth, "123456", "202606", 20, 600.00)
	seedReport(t, store, domain.PeriodMonth, "123456", "202605", 10, 300.00)

	doc, _, err := agg.Generate(context.Background(), "123456", domain.PeriodMonth, "tok")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if doc.Trend[0].Count != 30 || doc.Trend[1].Count != 20 || doc.Trend[2].Count != 10 {
		t.Errorf("Trend = %+v", doc.Trend)
	}
	if api.sessions != 1 {
		t.Errorf("issued %d sessions, want 1 (all history present)", api.sessions)
	}
}

func TestTrendMonthBackfillErrorFailsJob(t *testing.T) {
	api := &fakeAPI{
		pages:    map[string]map[string]*ecard.Page{},
		fetchErr: map[string]error{"2026-07-01": &domain.CardSystemError{Message: "history unavailable"}},
	}
	agg, store := newTestAggregator(api)

	_, _, err := agg.Generate(context.Background(), "123456", domain.PeriodMonth, "tok")
	if err == nil {
		t.Fatal("expected backfill failure to fail the job")
	}
	var cardErr *domain.CardSystemError
	if !errors.As(err, &cardErr) {
		t.Errorf("error = %v, want wrapped CardSystemError", err)
	}
	if !strings.Contains(err.Error(), "202607") {
		t.Errorf("error should name the month that failed, got: %v", err)
	}

	// the enclosing report must not be persisted with a silently zeroed trend
	if _, err := store.Get(context.Background(), domain.PeriodMonth, "123456", "202608"); !errors.Is(err, ErrNotFound) {
		t.Error("failed run must not persist the anchor document")
	}
}
