// Package ecard talks to the campus card-payment service: session derivation
// from an auth token, and the paginated transaction query API.
package ecard

import "context"

// API derives authenticated sessions from opaque auth tokens.
type API interface {
	// NewSession exchanges the auth token for an upstream session. Returns
	// domain.AuthError when the token is expired or invalid.
	NewSession(ctx context.Context, token string) (Session, error)
}

// Session fetches transaction pages for one authenticated user.
type Session interface {
	FetchPage(ctx context.Context, req PageRequest) (*Page, error)
}

// PageRequest selects one page of an account's transaction history.
type PageRequest struct {
	Account string
	// DateFilter is the upstream dateStatus value: "3" selects the current
	// week, "YYYY-MM-01" selects the month starting on that day.
	DateFilter string
	// Cursor is the upstream curpage value. The first request sends "1";
	// each response carries the next cursor, with "0" meaning no more pages.
	Cursor string
}

// Transaction is one validated upstream transaction line. Amounts stay in
// integer minor units here; the aggregator converts to currency values.
type Transaction struct {
	Time        string // raw occtime, e.g. "20240315121530"
	Clock       int64  // time-of-day part of occtime, hhmmss as a number
	Merchant    string // display name
	MerchantID  string // stable merchant account identifier
	AmountMinor int64
	TopUp       bool // signed amount was positive
}

// Page is one validated page of the upstream response envelope.
type Page struct {
	// BalanceMinor is the card balance reported on this page's first line.
	// HasBalance is false for pages without transaction lines.
	BalanceMinor int64
	HasBalance   bool
	NextCursor   string
	Transactions []Transaction
}
