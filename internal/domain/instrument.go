package domain

import (
	"sort"
	"strings"
)

// WalletSet is the set of wallet identifiers allowed to trade an instrument.
type WalletSet map[string]struct{}

// NewWalletSet builds a set from the given wallet ids, trimming blanks.
func NewWalletSet(wallets ...string) WalletSet {
	set := make(WalletSet, len(wallets))
	for _, w := range wallets {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func (s WalletSet) Contains(wallet string) bool {
	_, ok := s[wallet]
	return ok
}

// Slice returns the wallet ids in sorted order.
func (s WalletSet) Slice() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func (s WalletSet) Clone() WalletSet {
	out := make(WalletSet, len(s))
	for w := range s {
		out[w] = struct{}{}
	}
	return out
}

// InstrumentRecord is a normalized catalog row. Records are owned by a catalog
// snapshot and must not be mutated once the snapshot is built.
type InstrumentRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Ticker         string    `json:"ticker,omitempty"`
	IdentifierCode string    `json:"identifier_code,omitempty"`
	ContractCode   string    `json:"contract_code,omitempty"`
	Exchange       string    `json:"exchange,omitempty"`
	Active         bool      `json:"active"`
	Eligibility    WalletSet `json:"-"`
}

func NewInstrumentRecord(id, name, ticker, identifierCode, contractCode, exchange string, active bool, wallets ...string) InstrumentRecord {
	return InstrumentRecord{
		ID:             id,
		Name:           name,
		Ticker:         ticker,
		IdentifierCode: identifierCode,
		ContractCode:   contractCode,
		Exchange:       exchange,
		Active:         active,
		Eligibility:    NewWalletSet(wallets...),
	}
}

func (r InstrumentRecord) IsValid() bool {
	return r.ID != ""
}

// Wallets returns the eligibility set as a sorted slice, mainly for serialization.
func (r InstrumentRecord) Wallets() []string {
	return r.Eligibility.Slice()
}

// EligibleFor reports whether the record may be offered to the wallet.
// An empty wallet means no restriction.
func (r InstrumentRecord) EligibleFor(wallet string) bool {
	if wallet == "" {
		return true
	}
	return r.Eligibility.Contains(wallet)
}

// Key returns the identity used to merge duplicate catalog rows.
func (r InstrumentRecord) Key() BusinessKey {
	return NewBusinessKey(r)
}
