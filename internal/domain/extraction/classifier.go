package extraction

import (
	"regexp"

	"github.com/epicier/invoice-extract/internal/domain/extraction/record"
)

// lineKind is the closed set of outcomes the classifier can assign to a
// normalized line. The engine switches exhaustively over it.
type lineKind int

const (
	// lineProductStart opens a new product record.
	lineProductStart lineKind = iota
	// lineDiscard is dropped: noise, or text arriving where no record can
	// accept it.
	lineDiscard
	// lineDetailOrText belongs to the live record, either as its numeric
	// detail tail or as another description fragment.
	lineDetailOrText
)

// productStartRe captures EAN (10-14 digits), article number (4-10 digits)
// and the remaining label of a product-start line.
var productStartRe = regexp.MustCompile(`^(\d{10,14})\s+(\d{4,10})\s+(.+)$`)

// classify decides what an incoming line means given the record currently
// under construction. A line arriving after the record's detail is complete
// is discarded rather than risk corrupting a finished record; trailing text
// that actually belonged to the next product is lost with it. Known
// limitation, kept for parity with historical output.
func classify(content string, pending *record.Pending) lineKind {
	if productStartRe.MatchString(content) {
		return lineProductStart
	}
	if pending == nil || pending.DetailComplete {
		return lineDiscard
	}
	return lineDetailOrText
}
