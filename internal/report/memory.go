package report

import (
	"context"
	"sync"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
)

// MemStore is an in-memory Store for tests and development runs. Safe for
// concurrent use; documents are copied on read and write.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string]*domain.ReportDocument
}

// NewMemStore creates an empty in-memory report store.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]*domain.ReportDocument)}
}

func memKey(period domain.Period, account, label string) string {
	return DatabaseName(period) + "/" + account + "/" + label
}

func (s *MemStore) Put(ctx context.Context, period domain.Period, account string, doc *domain.ReportDocument) (Locator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docCopy := *doc
	s.docs[memKey(period, account, doc.Date)] = &docCopy

	return Locator{
		Store:      DatabaseName(period),
		Collection: account,
		DocumentID: doc.Date,
	}, nil
}

func (s *MemStore) Get(ctx context.Context, period domain.Period, account, label string) (*domain.ReportDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[memKey(period, account, label)]
	if !ok {
		return nil, ErrNotFound
	}
	docCopy := *doc
	return &docCopy, nil
}

var _ Store = (*MemStore)(nil)
