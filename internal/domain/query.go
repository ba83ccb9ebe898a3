package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuery       = errors.New("invalid query")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// InvalidQueryError describes which SearchQuery field was rejected.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s %s", e.Field, e.Reason)
}

func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

type SearchMode string

const (
	SearchModeSmart     SearchMode = "smart"
	SearchModeExactOnly SearchMode = "exact"
	SearchModeFuzzyOnly SearchMode = "fuzzy"
)

// ParseSearchMode accepts the canonical names plus a few aliases used by callers.
// An empty string maps to smart mode.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smart", "all":
		return SearchModeSmart, nil
	case "exact", "exact-only", "exact_only":
		return SearchModeExactOnly, nil
	case "fuzzy", "fuzzy-only", "fuzzy_only":
		return SearchModeFuzzyOnly, nil
	default:
		return "", &InvalidQueryError{Field: "mode", Reason: fmt.Sprintf("unknown search mode %q", s)}
	}
}

// SearchQuery is the per-call input to the search engine.
type SearchQuery struct {
	Text       string     `json:"text"`
	Wallet     string     `json:"wallet,omitempty"`
	Threshold  int        `json:"threshold"`
	MaxResults int        `json:"max_results"`
	Mode       SearchMode `json:"mode,omitempty"`
}

func NewSearchQuery(text, wallet string, threshold, maxResults int) SearchQuery {
	return SearchQuery{
		Text:       text,
		Wallet:     wallet,
		Threshold:  threshold,
		MaxResults: maxResults,
		Mode:       SearchModeSmart,
	}
}

// Validate rejects malformed parameters. Values are never clamped.
func (q SearchQuery) Validate() error {
	if q.MaxResults <= 0 {
		return &InvalidQueryError{Field: "max_results", Reason: fmt.Sprintf("must be positive, got %d", q.MaxResults)}
	}
	if q.Threshold < 0 || q.Threshold > 100 {
		return &InvalidQueryError{Field: "threshold", Reason: fmt.Sprintf("must be within 0-100, got %d", q.Threshold)}
	}
	switch q.Mode {
	case "", SearchModeSmart, SearchModeExactOnly, SearchModeFuzzyOnly:
	default:
		return &InvalidQueryError{Field: "mode", Reason: fmt.Sprintf("unknown search mode %q", q.Mode)}
	}
	return nil
}

// IsBlank reports whether the query text carries nothing to match.
func (q SearchQuery) IsBlank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// NormalizedWallet returns the trimmed wallet id; empty means unrestricted.
func (q SearchQuery) NormalizedWallet() string {
	return strings.TrimSpace(q.Wallet)
}

func (q SearchQuery) EffectiveMode() SearchMode {
	if q.Mode == "" {
		return SearchModeSmart
	}
	return q.Mode
}
