package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
)

// trend summarizes the three periods immediately preceding anchor, ordered
// most recent first (trend[0] is the period right before anchor).
//
// Week history is never backfilled: an absent week leaves its slot at zero.
// An absent month is generated on demand, but only from a top-level run:
// allowBackfill is false inside a backfill-triggered generation, so the
// recursion is bounded at one level and a new account cannot cascade
// arbitrarily far into the past. Store and generation errors fail the
// enclosing job rather than silently zeroing the slot.
func (a *Aggregator) trend(ctx context.Context, account string, period domain.Period, anchor time.Time, token string, allowBackfill bool) ([3]domain.TrendPoint, error) {
	var trend [3]domain.TrendPoint

	switch period {
	case domain.PeriodWeek:
		for i := 1; i <= 3; i++ {
			label := period.Label(anchor.AddDate(0, 0, -7*i))
			doc, err := a.store.Get(ctx, period, account, label)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return trend, err
			}
			trend[i-1] = domain.TrendPoint{Count: doc.TotalCount, Expense: doc.TotalExpense}
		}

	case domain.PeriodMonth:
		start := domain.MonthStart(anchor)
		for i := 1; i <= 3; i++ {
			start = domain.PrevMonthStart(start)
			label := period.Label(start)

			doc, err := a.store.Get(ctx, period, account, label)
			if errors.Is(err, ErrNotFound) {
				if !allowBackfill {
					continue
				}
				doc, _, err = a.generate(ctx, account, period, token, start, false)
				if err != nil {
					return trend, fmt.Errorf("backfill month %s: %w", label, err)
				}
			} else if err != nil {
				return trend, err
			}
			trend[i-1] = domain.TrendPoint{Count: doc.TotalCount, Expense: doc.TotalExpense}
		}
	}

	return trend, nil
}
