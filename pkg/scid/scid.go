// Package scid canonicalizes free-text pole identifiers (SCIDs) so that the
// same pole can be matched across independently authored data sources.
// Two identifiers are equal for all matching purposes if and only if their
// normalized forms are equal.
package scid

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spanline/makeready/pkg/logging"
)

var (
	// simpleRe matches a digit run with optional trailing letters,
	// e.g. "001A" or "0073".
	simpleRe = regexp.MustCompile(`^0*([0-9]+)([A-Za-z]*)$`)

	// leadingDigitsRe captures the numeric prefix of an identifier.
	leadingDigitsRe = regexp.MustCompile(`^([0-9]+)`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a raw identifier. Ignore keywords are removed with
// whole-word, case-insensitive matching before normalization.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string, ignore []string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// Spreadsheets sometimes prepend an apostrophe to force text formatting.
	s = strings.TrimPrefix(s, "'")

	s = stripKeywords(s, ignore)
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}

	if m := simpleRe.FindStringSubmatch(s); m != nil {
		return trimZeros(m[1]) + strings.ToUpper(m[2])
	}

	// Compound form: identifier followed by auxiliary text. Keep only the
	// leading identifier token when it reduces cleanly.
	if head, _, ok := strings.Cut(s, " "); ok {
		if m := simpleRe.FindStringSubmatch(head); m != nil {
			return trimZeros(m[1]) + strings.ToUpper(m[2])
		}
	}

	logging.Warn().Str("scid", raw).Msg("identifier could not be reduced; keeping cleaned form")
	return s
}

// stripKeywords removes each ignore keyword using whole-word,
// case-insensitive matching.
func stripKeywords(s string, ignore []string) string {
	for _, kw := range ignore {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			continue
		}
		s = re.ReplaceAllString(s, " ")
	}
	return s
}

// trimZeros removes leading zeros from a digit run.
func trimZeros(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Digit run too large for int; trim zeros textually.
		trimmed := strings.TrimLeft(digits, "0")
		if trimmed == "" {
			return "0"
		}
		return trimmed
	}
	return strconv.Itoa(n)
}

// Key is a sort key derived from an identifier: numeric prefix ascending,
// then alphabetic suffix. Identifiers without a numeric prefix sort last.
type Key struct {
	Num    int
	Suffix string
}

// SortKey extracts the sort key for an identifier.
func SortKey(s string) Key {
	s = strings.TrimSpace(s)
	m := leadingDigitsRe.FindStringSubmatch(s)
	if m == nil {
		return Key{Num: math.MaxInt, Suffix: s}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		n = math.MaxInt
	}
	return Key{Num: n, Suffix: strings.ToUpper(s[len(m[1]):])}
}

// Less reports whether identifier a sorts before identifier b.
func Less(a, b string) bool {
	ka, kb := SortKey(a), SortKey(b)
	if ka.Num != kb.Num {
		return ka.Num < kb.Num
	}
	return ka.Suffix < kb.Suffix
}

// Base extracts the leading numeric run of an identifier, used as a
// last-resort match key when compound identifiers carry trailing free text
// (e.g. "118 MISM13" -> "118"). Identifiers without a numeric prefix are
// returned unchanged.
func Base(s string) string {
	s = strings.TrimSpace(s)
	if m := leadingDigitsRe.FindStringSubmatch(s); m != nil {
		return trimZeros(m[1])
	}
	return s
}
