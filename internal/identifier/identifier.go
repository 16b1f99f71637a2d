package identifier

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Extension is appended to every artifact and whitelist name.
const Extension = ".jpg"

// ErrNoYear reports a deck filename without a 19xx/20xx token.
var ErrNoYear = errors.New("no year token in filename")

// Scheme selects which form of the label keys a ledger entry.
type Scheme string

const (
	// SchemeLabel keys by the trimmed raw label.
	SchemeLabel Scheme = "label"
	// SchemeDigits keys by the digit run when one exists, matching artifact names.
	SchemeDigits Scheme = "digits"
)

var (
	digitsPattern = regexp.MustCompile(`\p{Nd}+`)
	yearPattern   = regexp.MustCompile(`(19|20)\d\d`)
)

// Digits returns the first run of decimal digits in the trimmed label.
func Digits(label string) (string, bool) {
	match := digitsPattern.FindString(strings.TrimSpace(label))
	return match, match != ""
}

// ArtifactName returns {digits}_{year}_{ordinal}.jpg, or false when the label
// carries no digits.
func ArtifactName(label, year string, ordinal int) (string, bool) {
	digits, ok := Digits(label)
	if !ok {
		return "", false
	}
	return join(digits, year, ordinal) + Extension, true
}

// LedgerKey returns the whitelist key for an observation under scheme.
func LedgerKey(label, year string, ordinal int, scheme Scheme) string {
	if scheme == SchemeDigits {
		if digits, ok := Digits(label); ok {
			return join(digits, year, ordinal)
		}
	}
	return join(strings.TrimSpace(label), year, ordinal)
}

// WhitelistName converts a ledger key into the filename cleanup preserves.
func WhitelistName(key string) string {
	return strings.ReplaceAll(key, " ", "_") + Extension
}

// YearFromPath returns the first 19xx/20xx token in the base name of path.
func YearFromPath(path string) (string, error) {
	base := filepath.Base(path)
	year := yearPattern.FindString(base)
	if year == "" {
		return "", fmt.Errorf("%s: %w", base, ErrNoYear)
	}
	return year, nil
}

func join(label, year string, ordinal int) string {
	return label + "_" + year + "_" + strconv.Itoa(ordinal)
}
