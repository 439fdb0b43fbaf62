package domain

// TopExpense is the single largest expense transaction of the period.
type TopExpense struct {
	Time     string  `json:"time" firestore:"time"`
	Merchant string  `json:"location" firestore:"location"`
	Amount   float64 `json:"amount" firestore:"amount"`
}

// TopCount is the merchant with the most expense transactions in the period.
type TopCount struct {
	Merchant string  `json:"location" firestore:"location"`
	Amount   float64 `json:"amount" firestore:"amount"`
	Count    int     `json:"count" firestore:"count"`
}

// TrendPoint summarizes one prior period for the trend chart.
type TrendPoint struct {
	Count   int     `json:"count" firestore:"count"`
	Expense float64 `json:"expense" firestore:"expense"`
}

// Meal accumulates cafeteria spending inside one meal-time window.
type Meal struct {
	Count  int     `json:"count" firestore:"count"`
	Amount float64 `json:"amount" firestore:"amount"`
}

// CategoryStat accumulates spending for one merchant category.
type CategoryStat struct {
	Count  int     `json:"count" firestore:"count"`
	Amount float64 `json:"amount" firestore:"amount"`
}

// ReportDocument is the persisted aggregate for one account and one period
// instance. Date carries the canonical period label and is also the document
// ID in the report store.
//
// Invariants: TotalCount equals the sum of the four category counts, and
// TotalExpense equals the sum of the four category amounts.
type ReportDocument struct {
	Date         string     `json:"date" firestore:"date"`
	Balance      float64    `json:"balance" firestore:"balance"`
	TotalExpense float64    `json:"total_expense" firestore:"total_expense"`
	TotalTopup   float64    `json:"total_topup" firestore:"total_topup"`
	TotalCount   int        `json:"total_count" firestore:"total_count"`
	TopExpense   TopExpense `json:"top_expense" firestore:"top_expense"`
	TopCount     TopCount   `json:"top_count" firestore:"top_count"`

	// Trend holds the three periods preceding this one, most recent first.
	Trend [3]TrendPoint `json:"trend" firestore:"trend"`

	Cafeteria CategoryStat `json:"cafeteria" firestore:"cafeteria"`
	Groceries CategoryStat `json:"groceries" firestore:"groceries"`
	Logistics CategoryStat `json:"logistics" firestore:"logistics"`
	Other     CategoryStat `json:"other" firestore:"other"`

	Breakfast     Meal `json:"breakfast" firestore:"breakfast"`
	Lunch         Meal `json:"lunch" firestore:"lunch"`
	Dinner        Meal `json:"dinner" firestore:"dinner"`
	MidnightSnack Meal `json:"midnight_snack" firestore:"midnight_snack"`
}
