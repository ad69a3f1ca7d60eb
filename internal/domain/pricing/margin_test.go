package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMarginFromPriceCost(t *testing.T) {
	cases := []struct {
		price, cost, want string
	}{
		{"100", "80", "25"},
		{"150", "100", "50"},
		{"10", "3", "233.3"},
		{"90", "100", "-10"},
		{"100", "0", "0"},
		{"100", "-5", "0"},
	}
	for _, c := range cases {
		got := MarginFromPriceCost(d(c.price), d(c.cost))
		assert.True(t, d(c.want).Equal(got), "precio %s costo %s: esperado %s, obtenido %s", c.price, c.cost, c.want, got)
	}
}

func TestPriceFromMargin(t *testing.T) {
	assert.True(t, d("100").Equal(PriceFromMargin(d("80"), d("25"))))
	assert.True(t, d("39.16").Equal(PriceFromMargin(d("33.33"), d("17.5"))))
	assert.True(t, d("0").Equal(PriceFromMargin(d("0"), d("40"))))
}

// Derivar precio desde margen y volver a derivar el margen reproduce el original dentro del redondeo.
func TestMargen_IdaYVuelta(t *testing.T) {
	cases := []struct{ cost, margin string }{
		{"80", "25"},
		{"33.33", "17.5"},
		{"7", "33.3"},
		{"1250.5", "12.4"},
		{"19.99", "0"},
	}
	tolerance := d("0.1")
	for _, c := range cases {
		price := PriceFromMargin(d(c.cost), d(c.margin))
		back := MarginFromPriceCost(price, d(c.cost))
		assert.True(t, back.Sub(d(c.margin)).Abs().LessThanOrEqual(tolerance),
			"costo %s margen %s -> precio %s -> margen %s", c.cost, c.margin, price, back)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// PriceEditor
// ──────────────────────────────────────────────────────────────────────────────

func TestPriceEditor_CampoEditadoNoSeRederiva(t *testing.T) {
	e := NewPriceEditor(d("100"), d("80"))
	assert.True(t, d("25").Equal(e.Margin()))

	e.SetMargin(d("50"))
	assert.True(t, d("120").Equal(e.Price()), "el margen recalcula el precio")
	assert.True(t, d("80").Equal(e.Cost()), "el costo queda fijo")
	assert.True(t, d("50").Equal(e.Margin()), "el margen editado no se recalcula")

	e.SetPrice(d("96"))
	assert.True(t, d("20").Equal(e.Margin()), "el precio recalcula el margen")
	assert.True(t, d("96").Equal(e.Price()))

	e.SetCost(d("0"))
	assert.True(t, e.Margin().IsZero(), "costo cero deja margen en cero")
	assert.True(t, d("96").Equal(e.Price()), "cambiar el costo no toca el precio")
}
