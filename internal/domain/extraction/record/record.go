// Package record turns an accumulated raw product record into the canonical
// purchase line handed to callers: name joining, barcode canonicalization,
// VAT resolution, derived monetary fields and the margin floor.
package record

import (
	"strings"
	"time"
	"unicode"

	"github.com/epicier/invoice-extract/internal/domain/extraction/detail"
	"github.com/epicier/invoice-extract/internal/domain/extraction/lexical"
	"github.com/epicier/invoice-extract/internal/domain/extraction/noise"
	"github.com/epicier/invoice-extract/internal/domain/extraction/vat"
	"github.com/epicier/invoice-extract/pkg/money"
)

// Pending accumulates one product under construction while the classifier
// walks the line stream. At most one Pending is live at a time; it never
// survives a parse pass.
type Pending struct {
	EAN            string
	ArticleNumber  string
	Section        string
	Fragments      []string
	Detail         *detail.Fields
	DetailComplete bool
	InvoiceID      string
	InvoiceDate    *time.Time
}

// CanonicalLine is one fully resolved purchase line, the only value the
// engine returns to callers. All monetary fields are tax-exclusive euros
// rounded to 2 decimals unless named otherwise.
type CanonicalLine struct {
	Name                string     `csv:"name"`
	Barcode             string     `csv:"barcode"`
	ArticleNumber       string     `csv:"article_number"`
	Section             string     `csv:"section"`
	Regie               string     `csv:"regie"`
	VolumeLiter         float64    `csv:"volume_liter"`
	VAP                 float64    `csv:"vap"`
	UnitWeight          float64    `csv:"unit_weight"`
	QuantityPackages    int        `csv:"quantity_packages"`
	PackagingFactor     int        `csv:"packaging_factor"`
	TotalUnits          int        `csv:"total_units"`
	PurchasePrice       float64    `csv:"purchase_price"`
	SalePrice           float64    `csv:"sale_price"`
	SalePriceMinimum    float64    `csv:"sale_price_minimum"`
	VATRate             float64    `csv:"vat_rate"`
	VATCode             string     `csv:"vat_code"`
	AmountExclTax       float64    `csv:"amount_excl_tax"`
	AmountVAT           float64    `csv:"amount_vat"`
	AmountInclTax       float64    `csv:"amount_incl_tax"`
	TotalAmountInvoiced float64    `csv:"total_amount_invoiced"`
	InvoiceID           string     `csv:"invoice_id"`
	InvoiceDate         *time.Time `csv:"-"`
}

// Options carries the caller-tunable knobs of a parse pass.
type Options struct {
	VATOverrides      map[string]float64
	DefaultVATPercent float64
	MarginRate        float64
}

// Normalizer finalizes pending records. Immutable after construction, safe
// to share across concurrent parses.
type Normalizer struct {
	opts  Options
	noise *noise.Detector
}

// NewNormalizer builds a normalizer. A zero default VAT falls back to the
// standard rate; a negative margin rate is clamped to zero.
func NewNormalizer(opts Options, d *noise.Detector) *Normalizer {
	if opts.DefaultVATPercent == 0 {
		opts.DefaultVATPercent = vat.DefaultRatePercent
	}
	if opts.MarginRate < 0 {
		opts.MarginRate = 0
	}
	if d == nil {
		d = noise.New()
	}
	return &Normalizer{opts: opts, noise: d}
}

// Normalize produces the canonical line for a flushed pending record.
// Returns false when the record carries no actionable value: no detail was
// ever resolved, or the name normalizes to nothing. Dropping such records
// is the expected outcome for boilerplate that superficially resembled a
// product, not an engine failure.
func (n *Normalizer) Normalize(p *Pending) (CanonicalLine, bool) {
	if p == nil || p.Detail == nil {
		return CanonicalLine{}, false
	}

	name := n.joinName(p.Fragments)
	if name == "" {
		return CanonicalLine{}, false
	}

	d := p.Detail
	rate := vat.Resolve(d.VATCode, n.opts.VATOverrides, n.opts.DefaultVATPercent)

	factor := d.PackagingFactor
	if factor < 1 {
		factor = 1
	}
	qty := d.QuantityPackages
	if qty < 0 {
		qty = 0
	}
	totalUnits := qty * factor

	purchase := money.Round2(d.UnitPrice)
	amountExcl := money.LineTotal(d.UnitPrice, totalUnits)
	amountVAT := money.VATAmount(amountExcl, rate)
	amountIncl := money.SumExact(amountExcl, amountVAT)
	saleMin := money.WithMargin(d.UnitPrice, n.opts.MarginRate)

	totalInvoiced := amountExcl
	if d.HasTotal {
		totalInvoiced = money.Round2(d.TotalAmount)
	}

	return CanonicalLine{
		Name:                name,
		Barcode:             CanonicalBarcode(p.EAN),
		ArticleNumber:       p.ArticleNumber,
		Section:             p.Section,
		Regie:               d.Regie,
		VolumeLiter:         clampPositive(d.VolumeLiter),
		VAP:                 clampPositive(d.VAP),
		UnitWeight:          clampPositive(d.UnitWeight),
		QuantityPackages:    qty,
		PackagingFactor:     factor,
		TotalUnits:          totalUnits,
		PurchasePrice:       purchase,
		SalePrice:           saleMin,
		SalePriceMinimum:    saleMin,
		VATRate:             rate,
		VATCode:             d.VATCode,
		AmountExclTax:       amountExcl,
		AmountVAT:           amountVAT,
		AmountInclTax:       amountIncl,
		TotalAmountInvoiced: totalInvoiced,
		InvoiceID:           p.InvoiceID,
		InvoiceDate:         p.InvoiceDate,
	}, true
}

// joinName merges the description fragments, dropping the ones recognized
// as boilerplate, and canonicalizes the result.
func (n *Normalizer) joinName(fragments []string) string {
	var kept []string
	for _, frag := range fragments {
		if n.noise.IsNoise(frag) {
			continue
		}
		if cleaned := lexical.StripBoilerplate(frag); cleaned != "" {
			kept = append(kept, cleaned)
		}
	}
	return lexical.NormalizeProductName(strings.Join(kept, " "))
}

// CanonicalBarcode reduces a raw EAN capture to a digits-only GTIN when the
// digit count lands in the 8-15 range. Otherwise a compacted uppercase
// fallback is kept, but only when the source is numeric or longer than 3
// characters; a short alphabetic token is more likely a stray VAT code than
// a barcode and must not be promoted.
func CanonicalBarcode(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if l := digits.Len(); l >= 8 && l <= 15 {
		return digits.String()
	}

	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, strings.TrimSpace(raw))
	if compact == "" {
		return ""
	}
	if isNumeric(compact) || len(compact) > 3 {
		return compact
	}
	return ""
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func clampPositive(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
