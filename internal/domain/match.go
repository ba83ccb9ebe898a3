package domain

import "fmt"

// Strategy names the matcher that produced a candidate. The declaration order
// is the tie-break priority: lower values win.
type Strategy int

const (
	StrategyExactName Strategy = iota
	StrategyExactTicker
	StrategyIdentifierCode
	StrategyFuzzyName
	StrategyFuzzyTicker
)

// Strategies lists every strategy in priority order.
var Strategies = []Strategy{
	StrategyExactName,
	StrategyExactTicker,
	StrategyIdentifierCode,
	StrategyFuzzyName,
	StrategyFuzzyTicker,
}

func (s Strategy) String() string {
	switch s {
	case StrategyExactName:
		return "exact_name"
	case StrategyExactTicker:
		return "exact_ticker"
	case StrategyIdentifierCode:
		return "identifier_code"
	case StrategyFuzzyName:
		return "fuzzy_name"
	case StrategyFuzzyTicker:
		return "fuzzy_ticker"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Priority is the tie-break rank; lower is better.
func (s Strategy) Priority() int {
	return int(s)
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RankedMatch is a scored reference to a catalog record.
type RankedMatch struct {
	Instrument *InstrumentRecord `json:"instrument"`
	Strategy   Strategy          `json:"strategy"`
	Score      int               `json:"score"`
}
