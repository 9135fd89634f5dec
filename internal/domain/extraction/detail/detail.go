// Package detail extracts the numeric tail of a product record. Supplier
// dumps carry the figures in two shapes: the whole summary on the product
// line itself, or a vertical block spread over the following lines. Three
// strategies cover both, tried in a fixed order by the classifier: inline
// summary, vertical block, bare tail scan. First success wins; there is no
// scoring.
package detail

import (
	"strings"

	"github.com/epicier/invoice-extract/internal/domain/extraction/lexical"
)

// Fields is the normalized result of any strategy. Whatever the source
// shape, parsed details always land in this one struct.
type Fields struct {
	Regie            string // single-letter zone code, may be empty
	VolumeLiter      float64
	VAP              float64
	UnitWeight       float64
	UnitPrice        float64
	QuantityPackages int
	PackagingFactor  int // units per package, never below 1
	TotalAmount      float64
	HasTotal         bool // false when TotalAmount had to be derived
	VATCode          string
}

// tailWindow is the fixed numeric window at the end of a summary line:
// regie, volume, vap, unit weight, unit price, packages, packaging factor,
// total amount. An optional trailing single letter is the VAT code.
const tailWindow = 8

// shortWindow is the reduced variant some layouts use: unit price, package
// count, packaging factor, total amount, with no regie or volumetric block.
const shortWindow = 4

// ScanTail inspects the last 8 or 9 tokens of a token list for the full
// numeric window, then falls back to the reduced 4-token variant. On success
// it returns the parsed fields and how many trailing tokens were consumed,
// so the caller can recover the description from the tokens before the
// window. The scan fails unless unit price, package count and total amount
// all parse.
func ScanTail(tokens []string) (Fields, int, bool) {
	extra := 0
	vatCode := ""

	if len(tokens) > 0 {
		if last := tokens[len(tokens)-1]; isSingleLetter(last) {
			vatCode = strings.ToUpper(last)
			extra = 1
		}
	}

	if f, ok := scanFullWindow(tokens, vatCode, extra); ok {
		return f, tailWindow + extra, true
	}
	if f, ok := scanShortWindow(tokens, vatCode, extra); ok {
		return f, shortWindow + extra, true
	}
	return Fields{}, 0, false
}

func scanFullWindow(tokens []string, vatCode string, extra int) (Fields, bool) {
	if len(tokens) < tailWindow+extra {
		return Fields{}, false
	}
	w := tokens[len(tokens)-tailWindow-extra : len(tokens)-extra]

	// The regie letter anchors the full window. Without it an 8-token
	// description ending in a reduced tail would be misread as a full one,
	// swallowing the product name into the volumetric positions.
	if !isSingleLetter(w[0]) {
		return Fields{}, false
	}

	f := Fields{VATCode: vatCode, PackagingFactor: 1, Regie: strings.ToUpper(w[0])}
	f.VolumeLiter, _ = lexical.ParseDecimal(w[1])
	f.VAP, _ = lexical.ParseDecimal(w[2])
	f.UnitWeight, _ = lexical.ParseDecimal(w[3])

	price, okPrice := lexical.ParseDecimal(w[4])
	qty, okQty := lexical.ParseInt(w[5])
	total, okTotal := lexical.ParseDecimal(w[7])
	if !okPrice || !okQty || !okTotal || qty < 0 {
		return Fields{}, false
	}
	f.UnitPrice = price
	f.QuantityPackages = qty
	f.TotalAmount = total
	f.HasTotal = true

	if factor, ok := lexical.ParseInt(w[6]); ok && factor >= 1 {
		f.PackagingFactor = factor
	}
	return f, true
}

// scanShortWindow requires all four positions to parse, packaging factor
// included: the reduced window has no anchor token like the regie letter,
// so a stricter parse is what keeps description text from being misread as
// figures.
func scanShortWindow(tokens []string, vatCode string, extra int) (Fields, bool) {
	if len(tokens) < shortWindow+extra {
		return Fields{}, false
	}
	w := tokens[len(tokens)-shortWindow-extra : len(tokens)-extra]

	price, okPrice := lexical.ParseDecimal(w[0])
	qty, okQty := lexical.ParseInt(w[1])
	factor, okFactor := lexical.ParseInt(w[2])
	total, okTotal := lexical.ParseDecimal(w[3])
	if !okPrice || !okQty || !okFactor || !okTotal || qty < 0 || factor < 1 {
		return Fields{}, false
	}

	return Fields{
		VATCode:          vatCode,
		UnitPrice:        price,
		QuantityPackages: qty,
		PackagingFactor:  factor,
		TotalAmount:      total,
		HasTotal:         true,
	}, true
}

// ParseInline applies the tail scan to a product-start label that carries
// its full numeric summary on the same line. The tokens before the window
// become the product name. A window that consumes the entire label still
// succeeds with an empty name: the detail is resolved and the record dies
// later for lack of a name, rather than letting a following strategy read
// unrelated lines as this product's figures.
func ParseInline(label string) (Fields, string, bool) {
	tokens := strings.Fields(label)
	f, consumed, ok := ScanTail(tokens)
	if !ok {
		return Fields{}, "", false
	}
	return f, strings.Join(tokens[:len(tokens)-consumed], " "), true
}

// ParseVertical reads a detail block spread vertically under a product-start
// line: unit price, then package count with an optional packaging factor,
// then total amount, then an optional single-letter VAT code. Promotional
// inserts between those lines are skipped via the skip predicate. Returns
// how many of the given lines were consumed, skipped inserts included.
func ParseVertical(lines []string, skip func(string) bool) (Fields, int, bool) {
	const maxUsable = 4
	const maxScan = 8

	type usableLine struct {
		content string
		index   int
	}

	var usable []usableLine
	for i, line := range lines {
		if i >= maxScan || len(usable) == maxUsable {
			break
		}
		if skip != nil && skip(line) {
			continue
		}
		usable = append(usable, usableLine{content: line, index: i})
	}
	if len(usable) < 3 {
		return Fields{}, 0, false
	}

	f := Fields{PackagingFactor: 1}

	priceTokens := strings.Fields(usable[0].content)
	if len(priceTokens) == 0 {
		return Fields{}, 0, false
	}
	price, ok := lexical.ParseDecimal(priceTokens[0])
	if !ok {
		return Fields{}, 0, false
	}
	f.UnitPrice = price

	qtyTokens := strings.Fields(usable[1].content)
	if len(qtyTokens) == 0 {
		return Fields{}, 0, false
	}
	qty, ok := lexical.ParseInt(qtyTokens[0])
	if !ok || qty < 0 {
		return Fields{}, 0, false
	}
	f.QuantityPackages = qty
	if len(qtyTokens) > 1 {
		if factor, ok := lexical.ParseInt(qtyTokens[1]); ok && factor >= 1 {
			f.PackagingFactor = factor
		}
	}

	consumed := usable[2].index + 1
	if total, ok := lexical.ParseDecimal(strings.TrimSpace(usable[2].content)); ok {
		f.TotalAmount = total
		f.HasTotal = true
	} else {
		f.TotalAmount = f.UnitPrice * float64(f.QuantityPackages) * float64(f.PackagingFactor)
	}

	if len(usable) > 3 && isSingleLetter(strings.TrimSpace(usable[3].content)) {
		f.VATCode = strings.ToUpper(strings.TrimSpace(usable[3].content))
		consumed = usable[3].index + 1
	}

	return f, consumed, true
}

func isSingleLetter(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
