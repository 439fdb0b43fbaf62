// Package tagger classifies merchants into spending categories. Assignments
// are write-once: a merchant keeps its first persisted tag until an operator
// changes it out-of-band in the tag store.
package tagger

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
	"github.com/Paulkm2006/hust-ledger-back/internal/kv"
)

// Tag is a merchant spending category.
type Tag string

const (
	TagCafeteria Tag = "CAF"
	TagGroceries Tag = "GRO"
	TagLogistics Tag = "LOG" // never assigned automatically, curated only
	TagOther     Tag = "OTH"
)

// Merchant name fragments, checked in order. Cafeteria fragments win over
// grocery fragments when a name matches both lists.
var (
	cafeteriaFragments = []string{"组", "百景", "食堂", "饭"}
	groceryFragments   = []string{"超市", "商店", "便利", "百货"}
)

// Strategy is an optional fallback classifier consulted when the substring
// rules miss. Implementations must return one of the four tags.
type Strategy interface {
	Classify(ctx context.Context, merchantName string) (Tag, error)
}

// Tagger resolves merchant categories against the tag store, the built-in
// rule sets and, if configured, a fallback strategy.
type Tagger struct {
	tags     kv.Store
	untagged kv.Store
	fallback Strategy
	log      zerolog.Logger
}

// New creates a Tagger over the tag and untagged-merchant stores.
func New(tags, untagged kv.Store, log zerolog.Logger) *Tagger {
	return &Tagger{tags: tags, untagged: untagged, log: log}
}

// WithFallback installs a fallback classification strategy consulted between
// the rule sets and the OTH default.
func (t *Tagger) WithFallback(s Strategy) *Tagger {
	t.fallback = s
	return t
}

// Classify maps a merchant to its category. Persisted tags win; otherwise the
// rule sets are applied and a CAF/GRO hit is persisted so future lookups hit
// the store. A merchant that falls through every rule is tagged OTH and
// recorded in the untagged store for operator review.
func (t *Tagger) Classify(ctx context.Context, merchantID, merchantName string) (Tag, error) {
	stored, err := t.tags.Get(ctx, merchantID)
	if err == nil {
		if tag, ok := parseTag(stored); ok {
			return tag, nil
		}
		t.log.Warn().Str("merchant", merchantID).Str("tag", stored).Msg("ignoring unrecognized stored tag")
	} else if !errors.Is(err, kv.ErrNotFound) {
		return "", &domain.StoreError{Op: "tag lookup", Err: err}
	}

	if tag, ok := matchFragments(merchantName); ok {
		if err := t.tags.Set(ctx, merchantID, string(tag)); err != nil {
			return "", &domain.StoreError{Op: "tag persist", Err: err}
		}
		return tag, nil
	}

	if t.fallback != nil {
		tag, err := t.fallback.Classify(ctx, merchantName)
		if err != nil {
			// The fallback is best-effort; degrade to the default tag.
			t.log.Warn().Err(err).Str("merchant", merchantName).Msg("fallback classification failed")
		} else if tag != TagOther {
			if err := t.tags.Set(ctx, merchantID, string(tag)); err != nil {
				return "", &domain.StoreError{Op: "tag persist", Err: err}
			}
			return tag, nil
		}
	}

	if err := t.untagged.Set(ctx, merchantID, merchantName); err != nil {
		return "", &domain.StoreError{Op: "untagged record", Err: err}
	}
	return TagOther, nil
}

func matchFragments(name string) (Tag, bool) {
	for _, frag := range cafeteriaFragments {
		if strings.Contains(name, frag) {
			return TagCafeteria, true
		}
	}
	for _, frag := range groceryFragments {
		if strings.Contains(name, frag) {
			return TagGroceries, true
		}
	}
	return "", false
}

func parseTag(s string) (Tag, bool) {
	switch Tag(s) {
	case TagCafeteria, TagGroceries, TagLogistics, TagOther:
		return Tag(s), true
	}
	return "", false
}
