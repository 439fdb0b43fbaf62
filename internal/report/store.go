// Package report contains the aggregation engine, the trend backfill logic
// and the report document store interface.
package report

import (
	"context"
	"errors"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
)

// ErrNotFound is returned by Store.Get for period instances that have no
// persisted report yet.
var ErrNotFound = errors.New("report: document not found")

// Locator points at one persisted report document. Its string form is the
// result-pointer payload shared with the web layer.
type Locator struct {
	Store      string // database name, report_week or report_month
	Collection string // account id
	DocumentID string // canonical period label
}

func (l Locator) String() string {
	return l.Store + "/" + l.Collection + "/" + l.DocumentID
}

// DatabaseName maps a period kind to its report database.
func DatabaseName(p domain.Period) string {
	return "report_" + string(p)
}

// Store persists and retrieves finished report documents, one document per
// account and period instance. Implementations wrap persistence failures in
// domain.StoreError.
type Store interface {
	// Put stores doc under its canonical label, overwriting any previous
	// report for the same period instance.
	Put(ctx context.Context, period domain.Period, account string, doc *domain.ReportDocument) (Locator, error)

	// Get retrieves the report labeled label, or ErrNotFound.
	Get(ctx context.Context, period domain.Period, account, label string) (*domain.ReportDocument, error)
}
