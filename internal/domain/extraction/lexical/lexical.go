// Package lexical provides the low-level text normalization used by the
// invoice line extractor: whitespace collapsing, boilerplate stripping,
// localized number parsing and product name canonicalization.
//
// Every function here is pure and total. Parse failures are reported through
// a boolean, never through an error or a panic, because upstream callers use
// them as cheap "does this token look numeric" probes on very noisy input.
package lexical

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`[\s\x{00A0}\x{202F}]+`)

// NormalizeWhitespace collapses every run of whitespace, including
// non-breaking and narrow non-breaking spaces, to a single ASCII space and
// trims both ends. Idempotent.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// boilerplatePatterns are removed from descriptions in order. Order matters:
// some patterns are substrings of later ones ("PRIX AU KG SOUS EMBALLAGE"
// must go before the bare "PRIX AU KG" sweep or its tail survives).
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)prix au kg sous emballage[\s:]*[\d.,]*`),
	regexp.MustCompile(`(?i)prix au kg[\s:]*[\d.,]*`),
	regexp.MustCompile(`(?i)a consommer de preference avant(?: le)?[\s:]*[\d/.-]*`),
	regexp.MustCompile(`(?i)a consommer jusqu'?au[\s:]*[\d/.-]*`),
	regexp.MustCompile(`(?i)dluo[\s:]*[\d/.-]+`),
	regexp.MustCompile(`(?i)dlc[\s:]*[\d/.-]+`),
	regexp.MustCompile(`(?i)gencod\s*[:#]?\s*\d*`),
	regexp.MustCompile(`(?i)code\s+ean\s*[:#]?\s*`),
}

// StripBoilerplate removes the known supplier annotations (GTIN labels,
// per-kilo price footnotes, best-before tags) from a description fragment.
func StripBoilerplate(s string) string {
	for _, re := range boilerplatePatterns {
		s = re.ReplaceAllString(s, " ")
	}
	return NormalizeWhitespace(s)
}

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// ParseDecimal parses a localized numeric token: thousands separators
// (regular, non-breaking and narrow non-breaking spaces) are stripped, a
// comma decimal separator becomes a dot, and any leftover currency symbol or
// stray character is discarded. Returns false on an empty or malformed
// result.
func ParseDecimal(s string) (float64, bool) {
	s = strings.NewReplacer(" ", "", " ", "", " ", "").Replace(s)
	s = strings.ReplaceAll(s, ",", ".")
	s = nonNumericRe.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseInt is ParseDecimal rounded to the nearest integer.
func ParseInt(s string) (int, bool) {
	v, ok := ParseDecimal(s)
	if !ok {
		return 0, false
	}
	return int(math.Round(v)), true
}

var apostropheReplacer = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// NormalizeProductName applies Unicode compatibility normalization (NFKC),
// replaces typographic apostrophes with the ASCII apostrophe and collapses
// whitespace. This is the final form product names are stored under.
func NormalizeProductName(s string) string {
	s = norm.NFKC.String(s)
	s = apostropheReplacer.Replace(s)
	return NormalizeWhitespace(s)
}
