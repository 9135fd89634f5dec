package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetector_IsNoise(t *testing.T) {
	d := New()

	t.Run("exact boilerplate", func(t *testing.T) {
		assert.True(t, d.IsNoise("SOUS-TOTAL CAVE 123,45"))
		assert.True(t, d.IsNoise("Net a payer 1 234,56"))
		assert.True(t, d.IsNoise("SIRET 123 456 789 00012"))
		assert.True(t, d.IsNoise("suite page 2"))
	})

	t.Run("ocr-garbled boilerplate", func(t *testing.T) {
		assert.True(t, d.IsNoise("S0US-TOTAL"))
		assert.True(t, d.IsNoise("PR1X AU KG"))
	})

	t.Run("product text passes", func(t *testing.T) {
		assert.False(t, d.IsNoise("RIZ BASMATI 1KG"))
		assert.False(t, d.IsNoise("CREME FRAICHE EPAISSE 30CL"))
		assert.False(t, d.IsNoise("2.50"))
	})
}

func TestDetector_IsMention(t *testing.T) {
	d := New()

	assert.True(t, d.IsMention("OFFRE SPECIALE -20%"))
	assert.True(t, d.IsMention("promotion du mois"))
	assert.True(t, d.IsMention("REMISE 5%"))
	assert.False(t, d.IsMention("4 1"))
	assert.False(t, d.IsMention("10.00"))
	assert.False(t, d.IsMention("SAUCISSON SEC"))
}
