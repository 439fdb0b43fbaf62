package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
	"github.com/Paulkm2006/hust-ledger-back/internal/ecard"
	"github.com/Paulkm2006/hust-ledger-back/internal/tagger"
)

// Aggregator turns an account's upstream transaction history into a
// ReportDocument for one period instance.
type Aggregator struct {
	api    ecard.API
	store  Store
	tagger *tagger.Tagger
	log    zerolog.Logger
	now    func() time.Time
}

// NewAggregator wires the aggregation engine to its collaborators.
func NewAggregator(api ecard.API, store Store, tg *tagger.Tagger, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		api:    api,
		store:  store,
		tagger: tg,
		log:    log,
		now:    time.Now,
	}
}

// Generate produces and persists the report for the period containing the
// current date. Historical months missing from the trend window are
// generated on demand; see trend.go for the recursion bound.
func (a *Aggregator) Generate(ctx context.Context, account string, period domain.Period, token string) (*domain.ReportDocument, Locator, error) {
	if _, err := domain.ParsePeriod(string(period)); err != nil {
		return nil, Locator{}, err
	}
	return a.generate(ctx, account, period, token, a.now(), true)
}

func (a *Aggregator) generate(ctx context.Context, account string, period domain.Period, token string, anchor time.Time, allowBackfill bool) (*domain.ReportDocument, Locator, error) {
	sess, err := a.api.NewSession(ctx, token)
	if err != nil {
		return nil, Locator{}, err
	}

	var dateFilter string
	switch period {
	case domain.PeriodWeek:
		// Upstream relative filter selecting the current week.
		dateFilter = "3"
	case domain.PeriodMonth:
		dateFilter = domain.MonthStart(anchor).Format("2006-01-02")
	}

	acc := newAccumulator()
	cursor := "1"
	for {
		page, err := sess.FetchPage(ctx, ecard.PageRequest{
			Account:    account,
			DateFilter: dateFilter,
			Cursor:     cursor,
		})
		if err != nil {
			return nil, Locator{}, err
		}

		if !acc.hasBalance && page.HasBalance {
			acc.balance = float64(page.BalanceMinor) / 100
			acc.hasBalance = true
		}

		for _, tx := range page.Transactions {
			if err := a.consume(ctx, acc, tx); err != nil {
				return nil, Locator{}, err
			}
		}

		cursor = page.NextCursor
		if cursor == "0" {
			break
		}
	}

	doc := acc.document(period.Label(anchor))

	trend, err := a.trend(ctx, account, period, anchor, token, allowBackfill)
	if err != nil {
		return nil, Locator{}, err
	}
	doc.Trend = trend

	loc, err := a.store.Put(ctx, period, account, doc)
	if err != nil {
		return nil, Locator{}, err
	}

	a.log.Debug().
		Str("account", account).
		Str("label", doc.Date).
		Int("transactions", doc.TotalCount).
		Msg("report aggregated")

	return doc, loc, nil
}

// consume folds one transaction line into the running totals.
func (a *Aggregator) consume(ctx context.Context, acc *accumulator, tx ecard.Transaction) error {
	amount := float64(tx.AmountMinor) / 100

	if tx.TopUp {
		acc.totalTopup += amount
		return nil
	}

	acc.totalCount++
	acc.totalExpense += amount

	tally := acc.merchants[tx.Merchant]
	if tally == nil {
		tally = &merchantTally{}
		acc.merchants[tx.Merchant] = tally
	}
	tally.count++
	tally.amount += amount

	// Strict comparisons keep the first merchant to reach a count ahead of
	// later merchants that merely equal it.
	if tally.count > acc.topCount.Count {
		acc.topCount = domain.TopCount{Merchant: tx.Merchant, Amount: tally.amount, Count: tally.count}
	}
	if amount > acc.topExpense.Amount {
		acc.topExpense = domain.TopExpense{Time: tx.Time, Merchant: tx.Merchant, Amount: amount}
	}

	tag, err := a.tagger.Classify(ctx, tx.MerchantID, tx.Merchant)
	if err != nil {
		return err
	}

	stat := acc.category(tag)
	stat.Count++
	stat.Amount += amount

	if tag == tagger.TagCafeteria {
		if idx, ok := mealWindow(tx.Clock); ok {
			acc.meals[idx].Count++
			acc.meals[idx].Amount += amount
		}
	}
	return nil
}

// mealWindow assigns a time-of-day (hhmmss) to one of the four meal buckets.
// Windows are half-open; cafeteria spending outside every window still counts
// toward the category total.
func mealWindow(clock int64) (int, bool) {
	switch {
	case clock >= 60000 && clock < 90000:
		return 0, true // breakfast
	case clock >= 110000 && clock < 140000:
		return 1, true // lunch
	case clock >= 170000 && clock < 200000:
		return 2, true // dinner
	case clock >= 220000 && clock < 240000:
		return 3, true // midnight snack
	}
	return 0, false
}

type merchantTally struct {
	count  int
	amount float64
}

// accumulator holds the running state of one aggregation run. The merchant
// tally is scoped to the run and never persisted.
type accumulator struct {
	balance      float64
	hasBalance   bool
	totalExpense float64
	totalTopup   float64
	totalCount   int
	topExpense   domain.TopExpense
	topCount     domain.TopCount
	merchants    map[string]*merchantTally
	categories   map[tagger.Tag]*domain.CategoryStat
	meals        [4]domain.Meal
}

func newAccumulator() *accumulator {
	return &accumulator{
		merchants: make(map[string]*merchantTally),
		categories: map[tagger.Tag]*domain.CategoryStat{
			tagger.TagCafeteria: {},
			tagger.TagGroceries: {},
			tagger.TagLogistics: {},
			tagger.TagOther:     {},
		},
	}
}

func (acc *accumulator) category(tag tagger.Tag) *domain.CategoryStat {
	if stat, ok := acc.categories[tag]; ok {
		return stat
	}
	return acc.categories[tagger.TagOther]
}

func (acc *accumulator) document(label string) *domain.ReportDocument {
	return &domain.ReportDocument{
		Date:          label,
		Balance:       acc.balance,
		TotalExpense:  acc.totalExpense,
		TotalTopup:    acc.totalTopup,
		TotalCount:    acc.totalCount,
		TopExpense:    acc.topExpense,
		TopCount:      acc.topCount,
		Cafeteria:     *acc.categories[tagger.TagCafeteria],
		Groceries:     *acc.categories[tagger.TagGroceries],
		Logistics:     *acc.categories[tagger.TagLogistics],
		Other:         *acc.categories[tagger.TagOther],
		Breakfast:     acc.meals[0],
		Lunch:         acc.meals[1],
		Dinner:        acc.meals[2],
		MidnightSnack: acc.meals[3],
	}
}
