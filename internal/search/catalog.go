package search

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jmanzanog/instrument-search/internal/domain"
)

// indexedRecord caches the normalized forms each strategy compares against.
type indexedRecord struct {
	key        domain.BusinessKey
	nameExact  string
	nameNorm   string
	tickerFold string
	tickerCode string
	code       string
}

// Catalog is an immutable snapshot of instrument records. It is safe for
// concurrent readers; reloading builds a new Catalog instead of mutating one.
type Catalog struct {
	version  string
	loadedAt time.Time

	records []domain.InstrumentRecord
	index   []indexedRecord

	active   []int
	byWallet map[string][]int
	wallets  map[string]struct{}
}

// NewCatalog copies records into a new snapshot and builds the wallet index.
// Eligibility sets are cloned so later changes by the caller do not leak in.
func NewCatalog(records []domain.InstrumentRecord) *Catalog {
	c := &Catalog{
		version:  uuid.New().String(),
		loadedAt: time.Now(),
		records:  make([]domain.InstrumentRecord, len(records)),
		index:    make([]indexedRecord, len(records)),
		byWallet: make(map[string][]int),
		wallets:  make(map[string]struct{}),
	}

	for i, r := range records {
		r.Eligibility = r.Eligibility.Clone()
		c.records[i] = r
		c.index[i] = indexedRecord{
			key:        r.Key(),
			nameExact:  foldSpaces(r.Name),
			nameNorm:   normalizeText(r.Name),
			tickerFold: foldSpaces(r.Ticker),
			tickerCode: compactCode(r.Ticker),
			code:       compactCode(r.IdentifierCode),
		}

		for w := range r.Eligibility {
			c.wallets[w] = struct{}{}
		}
		if !r.Active {
			continue
		}
		c.active = append(c.active, i)
		for w := range r.Eligibility {
			c.byWallet[w] = append(c.byWallet[w], i)
		}
	}

	return c
}

func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}
	return c.version
}

func (c *Catalog) LoadedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.loadedAt
}

// Len returns the number of records, active or not.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

func (c *Catalog) ActiveCount() int {
	if c == nil {
		return 0
	}
	return len(c.active)
}

// Record returns a read-only pointer into the snapshot.
func (c *Catalog) Record(i int) *domain.InstrumentRecord {
	return &c.records[i]
}

// HasWallet reports whether any record lists the wallet in its eligibility set.
func (c *Catalog) HasWallet(wallet string) bool {
	if c == nil {
		return false
	}
	_, ok := c.wallets[wallet]
	return ok
}

// Wallets returns every wallet id known to the catalog, sorted.
func (c *Catalog) Wallets() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.wallets))
	for w := range c.wallets {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
