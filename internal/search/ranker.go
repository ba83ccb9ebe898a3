package search

import (
	"sort"

	"github.com/jmanzanog/instrument-search/internal/domain"
)

// merge deduplicates candidates by business key and returns at most
// maxResults matches ordered by score, strategy priority and input order.
// Lists are consumed in the order given; that order defines the final
// tie-break.
func merge(c *Catalog, lists [][]candidate, maxResults int) []domain.RankedMatch {
	survivors := make(map[domain.BusinessKey]candidate)
	order := 0
	for _, list := range lists {
		for _, cand := range list {
			cand.order = order
			order++

			key := c.index[cand.pos].key
			current, seen := survivors[key]
			if !seen || outranks(cand, current) {
				survivors[key] = cand
			}
		}
	}

	ranked := make([]candidate, 0, len(survivors))
	for _, cand := range survivors {
		ranked = append(ranked, cand)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return outranks(ranked[i], ranked[j])
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	matches := make([]domain.RankedMatch, len(ranked))
	for i, cand := range ranked {
		matches[i] = domain.RankedMatch{
			Instrument: c.Record(cand.pos),
			Strategy:   cand.strategy,
			Score:      cand.score,
		}
	}
	return matches
}

// outranks is a strict total order over candidates since order is unique.
func outranks(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.strategy.Priority() != b.strategy.Priority() {
		return a.strategy.Priority() < b.strategy.Priority()
	}
	return a.order < b.order
}
