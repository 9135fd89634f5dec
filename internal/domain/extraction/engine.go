// Package extraction is the invoice line extraction engine. It wires the
// segmenter, the line classifier, the detail parsing strategies and the
// record normalizer into one synchronous pass over a raw invoice text blob,
// producing the ordered canonical purchase lines.
//
// Extract is deterministic and pure: no I/O, no logging, no shared state.
// Separate goroutines may run separate extractions with no coordination.
package extraction

import (
	"strings"
	"time"

	"github.com/epicier/invoice-extract/internal/domain/extraction/detail"
	"github.com/epicier/invoice-extract/internal/domain/extraction/noise"
	"github.com/epicier/invoice-extract/internal/domain/extraction/record"
	"github.com/epicier/invoice-extract/internal/domain/extraction/segmenter"
)

// Options are the caller-tunable knobs of a parse pass. The zero value is
// usable: standard default VAT, no overrides, no margin floor.
type Options struct {
	// VATOverrides maps single-letter codes to percentage rates, taking
	// precedence over the built-in table.
	VATOverrides map[string]float64
	// DefaultVATPercent applies to unknown or absent codes. Zero means the
	// standard 20% rate.
	DefaultVATPercent float64
	// MarginRate is the minimum fraction above purchase price a sale price
	// must respect, e.g. 0.25 for 25%. Negative values clamp to zero.
	MarginRate float64
}

// Engine extracts canonical purchase lines from raw invoice text. Immutable
// after New, safe for concurrent use.
type Engine struct {
	noise *noise.Detector
}

// New builds an engine with the built-in noise phrase tables.
func New() *Engine {
	return &Engine{noise: noise.New()}
}

// Extract parses a raw invoice text blob into ordered canonical lines.
// It never fails: unparseable lines are skipped, incomplete records are
// dropped, and the worst possible outcome for malformed input is an empty
// result. Identical input and options always produce identical output.
func (e *Engine) Extract(text string, opts Options) []record.CanonicalLine {
	normalizer := record.NewNormalizer(record.Options{
		VATOverrides:      opts.VATOverrides,
		DefaultVATPercent: opts.DefaultVATPercent,
		MarginRate:        opts.MarginRate,
	}, e.noise)

	lines := segmenter.Segment(text)

	out := make([]record.CanonicalLine, 0, len(lines)/2)
	var pending *record.Pending

	flush := func() {
		if pending == nil {
			return
		}
		if line, ok := normalizer.Normalize(pending); ok {
			out = append(out, line)
		}
		pending = nil
	}

	for i := 0; i < len(lines); i++ {
		ln := lines[i]

		switch classify(ln.Content, pending) {
		case lineProductStart:
			flush()
			m := productStartRe.FindStringSubmatch(ln.Content)
			pending = &record.Pending{
				EAN:           m[1],
				ArticleNumber: m[2],
				Section:       ln.Section,
				InvoiceID:     ln.InvoiceID,
				InvoiceDate:   ln.InvoiceDate,
			}
			label := m[3]

			// Strategy order is fixed: inline summary first, vertical
			// block second. First success wins; the bare tail scan covers
			// continuation lines below.
			if f, name, ok := detail.ParseInline(label); ok {
				pending.Detail = &f
				pending.DetailComplete = true
				if name != "" {
					pending.Fragments = append(pending.Fragments, name)
				}
				break
			}
			if f, consumed, ok := detail.ParseVertical(lookahead(lines, i+1), e.noise.IsMention); ok {
				pending.Detail = &f
				pending.DetailComplete = true
				pending.Fragments = append(pending.Fragments, label)
				i += consumed
				break
			}
			pending.Fragments = append(pending.Fragments, label)

		case lineDiscard:
			// Noise, or text after a completed record.

		case lineDetailOrText:
			if f, consumed, ok := detail.ScanTail(strings.Fields(ln.Content)); ok {
				pending.Detail = &f
				pending.DetailComplete = true
				tokens := strings.Fields(ln.Content)
				if rest := tokens[:len(tokens)-consumed]; len(rest) > 0 {
					pending.Fragments = append(pending.Fragments, strings.Join(rest, " "))
				}
				break
			}
			if !e.noise.IsNoise(ln.Content) {
				pending.Fragments = append(pending.Fragments, ln.Content)
			}
		}
	}

	flush()
	return out
}

// lookahead returns the contents of the lines following index start, for the
// vertical-block parser. It stops at the next product-start line so a
// following record can never be swallowed as numeric detail.
func lookahead(lines []segmenter.Line, start int) []string {
	const window = 8
	var out []string
	for i := start; i < len(lines) && len(out) < window; i++ {
		if productStartRe.MatchString(lines[i].Content) {
			break
		}
		out = append(out, lines[i].Content)
	}
	return out
}

// InvoiceGroup is the per-invoice bucket of extracted lines, ordered by
// first appearance in the document.
type InvoiceGroup struct {
	InvoiceID   string
	InvoiceDate *time.Time
	Lines       []record.CanonicalLine
}

// GroupByInvoice partitions extracted lines by invoice identifier,
// preserving both invoice order and line order within each invoice.
func GroupByInvoice(lines []record.CanonicalLine) []InvoiceGroup {
	var groups []InvoiceGroup
	index := make(map[string]int)
	for _, line := range lines {
		i, ok := index[line.InvoiceID]
		if !ok {
			i = len(groups)
			index[line.InvoiceID] = i
			groups = append(groups, InvoiceGroup{
				InvoiceID:   line.InvoiceID,
				InvoiceDate: line.InvoiceDate,
			})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}
	return groups
}
