package search

import (
	"strings"

	"github.com/jmanzanog/instrument-search/internal/domain"
)

const (
	ExactNameScore       = 100
	ExactTickerScore     = 95
	ExactIdentifierScore = 90

	// Fuzzy scores stay below the exact score of the same field so a fuzzy hit
	// can never outrank the exact hit it shadows.
	maxFuzzyNameScore      = ExactNameScore - 1
	maxFuzzyTickerScore    = ExactTickerScore - 1
	maxNearIdentifierScore = ExactIdentifierScore - 1
)

// prepared holds the query text in every form the strategies compare.
type prepared struct {
	exact string
	norm  string
	code  string
}

func prepare(text string) prepared {
	return prepared{
		exact: foldSpaces(text),
		norm:  normalizeText(text),
		code:  compactCode(text),
	}
}

// floors are the minimum scores each strategy accepts for one query.
type floors struct {
	query      int
	name       int
	ticker     int
	identifier int
}

func newFloors(threshold int, opts Options) floors {
	return floors{
		query:      threshold,
		name:       max(threshold, opts.NameThreshold),
		ticker:     max(threshold, opts.TickerThreshold),
		identifier: max(threshold, opts.IdentifierThreshold),
	}
}

// candidate is a strategy hit before deduplication.
type candidate struct {
	pos      int
	strategy domain.Strategy
	score    int
	order    int
}

// strategiesFor returns the strategies that run for a mode, in priority order.
func strategiesFor(mode domain.SearchMode) []domain.Strategy {
	switch mode {
	case domain.SearchModeExactOnly:
		return []domain.Strategy{domain.StrategyExactName, domain.StrategyExactTicker, domain.StrategyIdentifierCode}
	case domain.SearchModeFuzzyOnly:
		return []domain.Strategy{domain.StrategyIdentifierCode, domain.StrategyFuzzyName, domain.StrategyFuzzyTicker}
	default:
		return domain.Strategies
	}
}

// run applies one strategy to every record of the view and returns its own
// candidate list. It only reads shared state.
func run(s domain.Strategy, v View, q prepared, f floors, mode domain.SearchMode) []candidate {
	var out []candidate
	for i := 0; i < v.Len(); i++ {
		score, ok := scoreRecord(s, v.indexed(i), q, f, mode)
		if !ok {
			continue
		}
		out = append(out, candidate{pos: v.position(i), strategy: s, score: score})
	}
	return out
}

// scoreRecord scores one record under strategy s. Records lacking the target
// field are skipped rather than scored as zero.
func scoreRecord(s domain.Strategy, r *indexedRecord, q prepared, f floors, mode domain.SearchMode) (int, bool) {
	switch s {
	case domain.StrategyExactName:
		if r.nameExact == "" || !strings.EqualFold(r.nameExact, q.exact) {
			return 0, false
		}
		return accept(ExactNameScore, f.query)

	case domain.StrategyExactTicker:
		if r.tickerFold == "" || !strings.EqualFold(r.tickerFold, q.exact) {
			return 0, false
		}
		return accept(ExactTickerScore, f.query)

	case domain.StrategyIdentifierCode:
		if r.code == "" || q.code == "" {
			return 0, false
		}
		if r.code == q.code {
			return accept(ExactIdentifierScore, f.query)
		}
		if mode == domain.SearchModeExactOnly {
			return 0, false
		}
		return accept(min(Ratio(q.code, r.code), maxNearIdentifierScore), f.identifier)

	case domain.StrategyFuzzyName:
		if r.nameNorm == "" || q.norm == "" {
			return 0, false
		}
		return accept(min(NameSimilarity(q.norm, r.nameNorm), maxFuzzyNameScore), f.name)

	case domain.StrategyFuzzyTicker:
		if r.tickerCode == "" || q.code == "" {
			return 0, false
		}
		return accept(min(Ratio(q.code, r.tickerCode), maxFuzzyTickerScore), f.ticker)

	default:
		return 0, false
	}
}

func accept(score, floor int) (int, bool) {
	if score < floor {
		return 0, false
	}
	return score, true
}
