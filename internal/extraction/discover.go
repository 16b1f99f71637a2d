package extraction

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slideset/internal/identifier"
)

const (
	deckExtension   = ".pptx"
	ownerLockPrefix = "~$"
)

// DiscoverDecks returns the .pptx files directly under dir in name order.
// Office owner lock files (~$name.pptx) are skipped.
func DiscoverDecks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read presentations dir: %w", err)
	}
	var decks []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(name, ownerLockPrefix) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), deckExtension) {
			continue
		}
		decks = append(decks, filepath.Join(dir, name))
	}
	sort.Strings(decks)
	return decks, nil
}

// DeckYears returns the distinct years carried by deck file names, sorted.
func DeckYears(decks []string) []string {
	seen := make(map[string]struct{})
	var years []string
	for _, deck := range decks {
		year, err := identifier.YearFromPath(deck)
		if err != nil {
			continue
		}
		if _, ok := seen[year]; ok {
			continue
		}
		seen[year] = struct{}{}
		years = append(years, year)
	}
	sort.Strings(years)
	return years
}
