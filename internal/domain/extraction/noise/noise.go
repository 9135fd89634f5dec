// Package noise recognizes the boilerplate lines that supplier invoice dumps
// interleave between product records: subtotals, page footers, legal
// mentions, promotional inserts. Recognition is a single Aho-Corasick pass
// over the uppercased line, with a Levenshtein fallback so that lightly
// OCR-garbled phrases are still caught.
package noise

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// noisePhrases mark a whole line as discardable boilerplate.
var noisePhrases = []string{
	"SOUS-TOTAL",
	"SOUS TOTAL",
	"TOTAL TVA",
	"TOTAL HT",
	"TOTAL TTC",
	"NET A PAYER",
	"REPORT PAGE",
	"SUITE PAGE",
	"PAGE ",
	"BON DE LIVRAISON",
	"CONDITIONS GENERALES DE VENTE",
	"TVA INTRACOMMUNAUTAIRE",
	"SIRET",
	"R.C.S",
	"RCS ",
	"PENALITES DE RETARD",
	"ESCOMPTE",
	"FRANCO DE PORT",
	"PRIX AU KG",
	"GENCOD",
}

// mentionPhrases flag promotional or informational inserts that may sit
// inside a vertical detail block and must be skipped, not treated as data.
var mentionPhrases = []string{
	"OFFRE SPECIALE",
	"OFFRE PROMO",
	"PROMOTION",
	"PROMO ",
	"REMISE",
	"GRATUIT",
	"MENTION",
	"NOUVEAUTE",
	"DEGUSTATION",
}

// Detector classifies lines as noise using exact multi-pattern matching with
// a fuzzy fallback. Safe for concurrent use: it is immutable after New.
type Detector struct {
	noiseMatcher   *ahocorasick.Matcher
	mentionMatcher *ahocorasick.Matcher
}

// New builds a detector over the built-in phrase lists.
func New() *Detector {
	return &Detector{
		noiseMatcher:   ahocorasick.NewStringMatcher(noisePhrases),
		mentionMatcher: ahocorasick.NewStringMatcher(mentionPhrases),
	}
}

// IsNoise reports whether the line is boilerplate that carries no product
// data. Product-start lines are never passed here; callers classify those
// before consulting the detector.
func (d *Detector) IsNoise(line string) bool {
	upper := strings.ToUpper(line)
	if len(d.noiseMatcher.MatchThreadSafe([]byte(upper))) > 0 {
		return true
	}
	return fuzzyHit(upper, noisePhrases)
}

// IsMention reports whether the line is a promotional or informational
// insert, the kind the vertical-block parser skips while looking ahead.
func (d *Detector) IsMention(line string) bool {
	upper := strings.ToUpper(line)
	if len(d.mentionMatcher.MatchThreadSafe([]byte(upper))) > 0 {
		return true
	}
	return fuzzyHit(upper, mentionPhrases)
}

// fuzzyHit catches OCR-mangled boilerplate ("PR1X AU KG", "S0US-TOTAL") by
// Levenshtein distance against short lines. Only near-identical lines count:
// the fallback must never swallow a real product description.
func fuzzyHit(upper string, phrases []string) bool {
	if len(upper) < 4 || len(upper) > 40 {
		return false
	}
	for _, phrase := range phrases {
		p := strings.TrimSpace(phrase)
		if len(upper) < len(p)-2 || len(upper) > len(p)+6 {
			continue
		}
		if fuzzy.LevenshteinDistance(upper, p) <= 2 {
			return true
		}
	}
	return false
}
