// Package segmenter turns the raw extracted invoice text into an ordered
// stream of normalized lines, each tagged with the invoice it belongs to and
// the section of the store it was listed under. It owns the invoice boundary
// rules: "date facture" markers, the end-of-invoice sentinel and the
// identifier minting sequence.
package segmenter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/epicier/invoice-extract/internal/domain/extraction/lexical"
)

// Line is one physical invoice line after segmentation. Content has been
// whitespace-normalized; InvoiceDate is nil when the document never declared
// a date for this invoice.
type Line struct {
	Content     string
	InvoiceID   string
	InvoiceDate *time.Time
	Section     string
}

var (
	// A product record opens with a 10-14 digit EAN, a 4-10 digit article
	// number and at least one label character.
	productStartRe = regexp.MustCompile(`^\d{10,14}\s+\d{4,10}\s+\S`)

	// eanArticleRe locates the same head pattern anywhere in flattened text
	// so that line breaks can be re-injected in front of each product.
	eanArticleRe = regexp.MustCompile(`\b\d{10,14}\s+\d{4,10}\s+`)

	dateMarkerRe = regexp.MustCompile(`(?i)date\s+facture\s*:?\s*(\d{2})-(\d{2})-(\d{4})(?:\s+(\d{2}):(\d{2}))?`)
	endMarkerRe  = regexp.MustCompile(`(?i)FIN\s+DE\s+LA\s+FACTURE`)

	// Section headers look like "[* CAVE *]" and precede the zone subtotal.
	sectionRe = regexp.MustCompile(`^\[\*+\s*([^*\]]+?)\s*\*+\]`)
)

// Segment splits the raw text into tagged lines. It never fails; unusable
// input simply yields an empty stream.
func Segment(text string) []Line {
	rawLines := splitLines(text)

	var (
		out         []Line
		invoiceID   string
		invoiceDate *time.Time
		pendingDate *time.Time
		section     string
		seq         int
	)

	for _, raw := range rawLines {
		content := lexical.NormalizeWhitespace(raw)
		if content == "" {
			continue
		}

		if m := dateMarkerRe.FindStringSubmatch(content); m != nil {
			if d, ok := parseMarkerDate(m); ok {
				pendingDate = &d
			}
			continue
		}

		if endMarkerRe.MatchString(content) {
			invoiceID = ""
			invoiceDate = nil
			section = ""
			continue
		}

		if m := sectionRe.FindStringSubmatch(content); m != nil {
			section = lexical.NormalizeWhitespace(m[1])
			continue
		}

		if productStartRe.MatchString(content) {
			// Invoice boundaries commit lazily, at the first product of the
			// new invoice: a pending date that differs from the committed
			// one, or the absence of any active invoice, mints the next
			// identifier in the sequence.
			switch {
			case pendingDate != nil && !sameDate(pendingDate, invoiceDate):
				seq++
				invoiceID = mintID(seq)
				invoiceDate = pendingDate
				pendingDate = nil
			case invoiceID == "":
				seq++
				invoiceID = mintID(seq)
				if pendingDate != nil {
					invoiceDate = pendingDate
					pendingDate = nil
				}
			default:
				pendingDate = nil
			}
		}

		out = append(out, Line{
			Content:     content,
			InvoiceID:   invoiceID,
			InvoiceDate: invoiceDate,
			Section:     section,
		})
	}

	return out
}

// splitLines breaks the text on newlines. When no line anywhere matches the
// product-start pattern the extractor has flattened the document, so line
// breaks are injected before every EAN-article occurrence and the split is
// retried.
func splitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, l := range lines {
		if productStartRe.MatchString(strings.TrimSpace(l)) {
			return lines
		}
	}
	if !eanArticleRe.MatchString(text) {
		return lines
	}
	injected := eanArticleRe.ReplaceAllString(text, "\n$0")
	return strings.Split(strings.ReplaceAll(injected, "\r\n", "\n"), "\n")
}

func parseMarkerDate(m []string) (time.Time, bool) {
	layout := "02-01-2006"
	value := fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	if m[4] != "" {
		layout = "02-01-2006 15:04"
		value = fmt.Sprintf("%s %s:%s", value, m[4], m[5])
	}
	d, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}

func mintID(seq int) string {
	return fmt.Sprintf("INV-%03d", seq)
}
