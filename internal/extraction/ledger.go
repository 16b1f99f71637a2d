package extraction

import (
	"sort"

	"slideset/internal/identifier"
)

// LedgerEntry locates the slide that last produced a ledger key.
type LedgerEntry struct {
	Deck    string
	Ordinal int
	// Position is the ordinal relative to the first slide id (256).
	Position int
}

// firstSlideID is the id PowerPoint assigns to the first slide of a deck.
const firstSlideID = 256

// Ledger maps ledger keys to the slide that produced them across one run.
// Later observations with the same key overwrite earlier ones.
type Ledger struct {
	scheme  identifier.Scheme
	entries map[string]LedgerEntry
}

// NewLedger returns an empty ledger keyed by scheme.
func NewLedger(scheme identifier.Scheme) *Ledger {
	if scheme == "" {
		scheme = identifier.SchemeLabel
	}
	return &Ledger{scheme: scheme, entries: make(map[string]LedgerEntry)}
}

// Record adds one observation.
func (l *Ledger) Record(obs Observation) string {
	key := identifier.LedgerKey(obs.Label, obs.Year, obs.Ordinal, l.scheme)
	l.entries[key] = LedgerEntry{Deck: obs.Deck, Ordinal: obs.Ordinal, Position: obs.Ordinal - firstSlideID}
	return key
}

// RecordAll adds every observation of a deck in order.
func (l *Ledger) RecordAll(observations []Observation) {
	for _, obs := range observations {
		l.Record(obs)
	}
}

// Len returns the number of distinct keys.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Lookup returns the entry stored for key.
func (l *Ledger) Lookup(key string) (LedgerEntry, bool) {
	entry, ok := l.entries[key]
	return entry, ok
}

// Keys returns the ledger keys in sorted order.
func (l *Ledger) Keys() []string {
	keys := make([]string, 0, len(l.entries))
	for key := range l.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Whitelist returns the set of filenames cleanup preserves.
func (l *Ledger) Whitelist() map[string]struct{} {
	names := make(map[string]struct{}, len(l.entries))
	for key := range l.entries {
		names[identifier.WhitelistName(key)] = struct{}{}
	}
	return names
}
