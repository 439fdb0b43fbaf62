// Package firestore persists report documents in Cloud Firestore: a
// top-level collection per period kind, a document per account, and a
// "reports" subcollection keyed by the canonical period label.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
	"github.com/Paulkm2006/hust-ledger-back/internal/report"
)

const reportsSubcollection = "reports"

// Store implements report.Store on Firestore.
type Store struct {
	client *firestore.Client
}

// New connects to the Firestore database of the given project. Credentials
// resolve through Application Default Credentials unless overridden by opts.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) doc(period domain.Period, account, label string) *firestore.DocumentRef {
	return s.client.Collection(report.DatabaseName(period)).
		Doc(account).
		Collection(reportsSubcollection).
		Doc(label)
}

func (s *Store) Put(ctx context.Context, period domain.Period, account string, doc *domain.ReportDocument) (report.Locator, error) {
	if _, err := s.doc(period, account, doc.Date).Set(ctx, doc); err != nil {
		return report.Locator{}, &domain.StoreError{Op: "report put", Err: err}
	}
	return report.Locator{
		Store:      report.DatabaseName(period),
		Collection: account,
		DocumentID: doc.Date,
	}, nil
}

func (s *Store) Get(ctx context.Context, period domain.Period, account, label string) (*domain.ReportDocument, error) {
	snap, err := s.doc(period, account, label).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, report.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "report get", Err: err}
	}

	var doc domain.ReportDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, &domain.StoreError{Op: "report decode", Err: err}
	}
	return &doc, nil
}

var _ report.Store = (*Store)(nil)
