package domain

import (
	"fmt"
	"strings"
)

// BusinessKey identifies a real-world instrument across duplicate catalog rows.
// When exchange, ticker and contract code are all empty the key falls back to
// the legacy (id, name) pair.
type BusinessKey struct {
	Exchange     string
	Ticker       string
	ContractCode string
	LegacyID     string
	LegacyName   string
}

func NewBusinessKey(r InstrumentRecord) BusinessKey {
	key := BusinessKey{
		Exchange:     normalizeKeyPart(r.Exchange),
		Ticker:       normalizeKeyPart(r.Ticker),
		ContractCode: normalizeKeyPart(r.ContractCode),
	}
	if key.Exchange == "" && key.Ticker == "" && key.ContractCode == "" {
		key.LegacyID = strings.TrimSpace(r.ID)
		key.LegacyName = strings.TrimSpace(r.Name)
	}
	return key
}

func (k BusinessKey) IsLegacy() bool {
	return k.Exchange == "" && k.Ticker == "" && k.ContractCode == ""
}

func (k BusinessKey) String() string {
	if k.IsLegacy() {
		return fmt.Sprintf("legacy:%s|%s", k.LegacyID, k.LegacyName)
	}
	return fmt.Sprintf("%s|%s|%s", k.Exchange, k.Ticker, k.ContractCode)
}

func normalizeKeyPart(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
