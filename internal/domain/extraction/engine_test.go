package extraction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_InlineSummary(t *testing.T) {
	e := New()

	lines := e.Extract("1234567890123 456789 Riz basmati 1kg R 0.75 0.00 1.00 1.20 3 1 3.60 A", Options{})
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, "Riz basmati 1kg", l.Name)
	assert.Equal(t, "1234567890123", l.Barcode)
	assert.Equal(t, "456789", l.ArticleNumber)
	assert.Equal(t, 1.20, l.PurchasePrice)
	assert.Equal(t, 3, l.TotalUnits)
	assert.Equal(t, 20.0, l.VATRate)
	assert.Equal(t, 3.60, l.AmountExclTax)
	assert.Equal(t, 0.72, l.AmountVAT)
	assert.Equal(t, 4.32, l.AmountInclTax)
	assert.Equal(t, "INV-001", l.InvoiceID)
}

func TestExtract_InlineReducedTail(t *testing.T) {
	e := New()

	lines := e.Extract("1234567890123 456789 Riz basmati 1kg 1.20 3 1 3.60 A", Options{})
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, "Riz basmati 1kg", l.Name)
	assert.Equal(t, "1234567890123", l.Barcode)
	assert.Equal(t, 1.20, l.PurchasePrice)
	assert.Equal(t, 3, l.TotalUnits)
	assert.Equal(t, 20.0, l.VATRate)
	assert.Equal(t, 3.60, l.AmountExclTax)
	assert.Equal(t, 0.72, l.AmountVAT)
	assert.Equal(t, 4.32, l.AmountInclTax)
}

func TestExtract_VerticalBlock(t *testing.T) {
	e := New()

	text := strings.Join([]string{
		"1234567890123 456789 CREME FRAICHE EPAISSE 30CL",
		"2.50",
		"4 1",
		"10.00",
	}, "\n")

	lines := e.Extract(text, Options{})
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, "CREME FRAICHE EPAISSE 30CL", l.Name)
	assert.Equal(t, 2.50, l.PurchasePrice)
	assert.Equal(t, 4, l.QuantityPackages)
	assert.Equal(t, 1, l.PackagingFactor)
	assert.Equal(t, 10.00, l.TotalAmountInvoiced)
}

func TestExtract_VerticalBlockSkipsPromotions(t *testing.T) {
	e := New()

	text := strings.Join([]string{
		"1234567890123 456789 COTES DU RHONE 75CL",
		"OFFRE SPECIALE -20%",
		"3.80",
		"6 1",
		"22.80",
		"B",
	}, "\n")

	lines := e.Extract(text, Options{})
	require.Len(t, lines, 1)
	assert.Equal(t, 3.80, lines[0].PurchasePrice)
	assert.Equal(t, 10.0, lines[0].VATRate)
	assert.Equal(t, "B", lines[0].VATCode)
}

func TestExtract_DetailOnContinuationLine(t *testing.T) {
	e := New()

	text := strings.Join([]string{
		"1234567890123 456789 SAUCISSON SEC",
		"PUR PORC",
		"R 0.00 0.00 0.30 4.20 2 1 8.40 A",
	}, "\n")

	lines := e.Extract(text, Options{})
	require.Len(t, lines, 1)
	assert.Equal(t, "SAUCISSON SEC PUR PORC", lines[0].Name)
	assert.Equal(t, 4.20, lines[0].PurchasePrice)
	assert.Equal(t, 2, lines[0].TotalUnits)
}

func TestExtract_MultiInvoiceDocument(t *testing.T) {
	e := New()

	text := strings.Join([]string{
		"date facture: 05-03-2024",
		"1234567890123 456789 PRODUIT A R 0.00 0.00 0.00 1.20 3 1 3.60 A",
		"FIN DE LA FACTURE",
		"date facture: 12-03-2024",
		"1234567890124 456790 PRODUIT B R 0.00 0.00 0.00 2.50 4 1 10.00 B",
	}, "\n")

	lines := e.Extract(text, Options{})
	require.Len(t, lines, 2)

	groups := GroupByInvoice(lines)
	require.Len(t, groups, 2)
	assert.Equal(t, "INV-001", groups[0].InvoiceID)
	assert.Equal(t, "INV-002", groups[1].InvoiceID)
	require.NotNil(t, groups[0].InvoiceDate)
	require.NotNil(t, groups[1].InvoiceDate)
	assert.False(t, groups[0].InvoiceDate.Equal(*groups[1].InvoiceDate))
}

func TestExtract_UnparseableRecordIsDropped(t *testing.T) {
	e := New()

	// Matches the product-start pattern but never yields a numeric tail,
	// and its description strips down to nothing.
	text := strings.Join([]string{
		"1234567890123 456789 PRIX AU KG 12,50",
		"SOUS-TOTAL CAVE",
	}, "\n")

	lines := e.Extract(text, Options{})
	assert.Empty(t, lines)
}

func TestExtract_NamelessWindowOnlyStartIsDropped(t *testing.T) {
	e := New()

	// The label of the first start line is exactly its numeric window.
	// The record must die for lack of a name without the vertical parser
	// reading the next product's block as its figures.
	text := strings.Join([]string{
		"1234567890123 456789 R 0.75 0.00 1.00 1.20 3 1 3.60 A",
		"9876543210987 654321 CREME FRAICHE EPAISSE 30CL",
		"2.50",
		"4 1",
		"10.00",
	}, "\n")

	lines := e.Extract(text, Options{})
	require.Len(t, lines, 1)
	assert.Equal(t, "CREME FRAICHE EPAISSE 30CL", lines[0].Name)
	assert.Equal(t, 2.50, lines[0].PurchasePrice)
	assert.Equal(t, 10.00, lines[0].TotalAmountInvoiced)
}

func TestExtract_TextAfterCompleteRecordIsDropped(t *testing.T) {
	e := New()

	text := strings.Join([]string{
		"1234567890123 456789 Riz basmati 1kg R 0.00 0.00 0.00 1.20 3 1 3.60 A",
		"cette ligne arrive trop tard",
	}, "\n")

	lines := e.Extract(text, Options{})
	require.Len(t, lines, 1)
	assert.Equal(t, "Riz basmati 1kg", lines[0].Name)
}

func TestExtract_NoiseOnlyDocument(t *testing.T) {
	e := New()

	text := strings.Join([]string{
		"CONDITIONS GENERALES DE VENTE",
		"SIRET 123 456 789 00012",
		"page 3",
	}, "\n")

	assert.Empty(t, e.Extract(text, Options{}))
	assert.Empty(t, e.Extract("", Options{}))
}

func TestExtract_SectionAttachment(t *testing.T) {
	e := New()

	text := strings.Join([]string{
		"[* CAVE *]",
		"1234567890123 456789 COTES DU RHONE R 0.75 0.00 0.00 3.80 6 1 22.80 A",
		"[* EPICERIE *]",
		"1234567890124 456790 RIZ BASMATI R 0.00 0.00 1.00 1.20 3 1 3.60 A",
	}, "\n")

	lines := e.Extract(text, Options{})
	require.Len(t, lines, 2)
	assert.Equal(t, "CAVE", lines[0].Section)
	assert.Equal(t, "EPICERIE", lines[1].Section)
}

func TestExtract_VATOverridesAndDefault(t *testing.T) {
	e := New()

	text := "1234567890123 456789 PRODUIT R 0.00 0.00 0.00 1.00 1 1 1.00 A"

	lines := e.Extract(text, Options{
		VATOverrides:      map[string]float64{"A": 8.5},
		DefaultVATPercent: 13.0,
	})
	require.Len(t, lines, 1)
	assert.Equal(t, 8.5, lines[0].VATRate)

	// Without a code the default applies.
	text = "1234567890123 456789 PRODUIT R 0.00 0.00 0.00 1.00 1 1 1.00"
	lines = e.Extract(text, Options{DefaultVATPercent: 13.0})
	require.Len(t, lines, 1)
	assert.Equal(t, 13.0, lines[0].VATRate)
}

func TestExtract_Deterministic(t *testing.T) {
	e := New()

	text := strings.Join([]string{
		"date facture: 05-03-2024",
		"[* CAVE *]",
		"1234567890123 456789 PRODUIT A R 0.00 0.00 0.00 1.20 3 1 3.60 A",
		"1234567890124 456790 PRODUIT B",
		"2.50",
		"4 1",
		"10.00",
		"FIN DE LA FACTURE",
	}, "\n")
	opts := Options{MarginRate: 0.25}

	first := e.Extract(text, opts)
	second := e.Extract(text, opts)
	assert.Equal(t, first, second)
}

func TestExtract_GeneratedBulkDocument(t *testing.T) {
	faker := gofakeit.New(42)
	e := New()

	const products = 50
	var sb strings.Builder
	sb.WriteString("date facture: 01-02-2024\n")
	for i := 0; i < products; i++ {
		price := float64(faker.Number(10, 5000)) / 100
		qty := faker.Number(1, 20)
		sb.WriteString(fmt.Sprintf("%013d %06d %s R 0.00 0.00 0.00 %.2f %d 1 %.2f A\n",
			1000000000000+i, 100000+i,
			strings.ToUpper(faker.ProductName()),
			price, qty, price*float64(qty)))
	}

	lines := e.Extract(sb.String(), Options{MarginRate: 0.3})
	require.Len(t, lines, products)

	for _, l := range lines {
		assert.NotEmpty(t, l.Name)
		assert.Equal(t, "INV-001", l.InvoiceID)
		assert.GreaterOrEqual(t, l.TotalUnits, 0)
		assert.InDelta(t, l.AmountExclTax+l.AmountVAT, l.AmountInclTax, 0.0099)
		assert.GreaterOrEqual(t, l.SalePrice, l.SalePriceMinimum)
		assert.GreaterOrEqual(t, l.SalePriceMinimum, l.PurchasePrice)
	}
}
