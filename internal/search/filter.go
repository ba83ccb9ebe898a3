package search

import (
	"strings"

	"github.com/jmanzanog/instrument-search/internal/domain"
)

// View is a read-only list of catalog positions that passed the wallet filter.
// It borrows the catalog and never copies records.
type View struct {
	catalog *Catalog
	indices []int
}

// Filter narrows the catalog to active records eligible for wallet. An empty
// wallet means no restriction; a wallet unknown to the catalog yields an empty
// view rather than being ignored.
func Filter(c *Catalog, wallet string) View {
	if c == nil {
		return View{}
	}
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return View{catalog: c, indices: c.active}
	}
	return View{catalog: c, indices: c.byWallet[wallet]}
}

func (v View) Len() int {
	return len(v.indices)
}

// At returns the i-th record of the view.
func (v View) At(i int) *domain.InstrumentRecord {
	return v.catalog.Record(v.indices[i])
}

func (v View) position(i int) int {
	return v.indices[i]
}

func (v View) indexed(i int) *indexedRecord {
	return &v.catalog.index[v.indices[i]]
}
