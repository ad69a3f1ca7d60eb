package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MarginFromPriceCost calcula el margen porcentual sobre costo (servicio de dominio).
// Margen = round((Precio - Costo) / Costo * 100, 1); con Costo <= 0 el margen es 0.
func MarginFromPriceCost(price, cost decimal.Decimal) decimal.Decimal {
	if cost.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return price.Sub(cost).Div(cost).Mul(hundred).Round(1)
}

// PriceFromMargin calcula el precio manteniendo fijo el costo.
// Precio = round(Costo * (1 + Margen/100), 2)
func PriceFromMargin(cost, margin decimal.Decimal) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(1).Add(margin.Div(hundred))).Round(2)
}

// PriceEditor mantiene consistentes precio, costo y margen durante la edición de un producto.
// Solo el campo editado dispara el recálculo; ese campo nunca se re-deriva en el mismo paso.
type PriceEditor struct {
	price  decimal.Decimal
	cost   decimal.Decimal
	margin decimal.Decimal
}

// NewPriceEditor parte de precio y costo guardados y deriva el margen.
func NewPriceEditor(price, cost decimal.Decimal) *PriceEditor {
	return &PriceEditor{price: price, cost: cost, margin: MarginFromPriceCost(price, cost)}
}

// SetPrice fija el precio y recalcula el margen.
func (e *PriceEditor) SetPrice(p decimal.Decimal) {
	e.price = p
	e.margin = MarginFromPriceCost(e.price, e.cost)
}

// SetCost fija el costo y recalcula el margen; el precio queda igual.
func (e *PriceEditor) SetCost(c decimal.Decimal) {
	e.cost = c
	e.margin = MarginFromPriceCost(e.price, e.cost)
}

// SetMargin fija el margen y recalcula el precio; el costo queda igual.
func (e *PriceEditor) SetMargin(m decimal.Decimal) {
	e.margin = m
	e.price = PriceFromMargin(e.cost, e.margin)
}

// Price precio vigente del editor.
func (e *PriceEditor) Price() decimal.Decimal { return e.price }

// Cost costo vigente del editor.
func (e *PriceEditor) Cost() decimal.Decimal { return e.cost }

// Margin margen vigente (porcentaje sobre el costo).
func (e *PriceEditor) Margin() decimal.Decimal { return e.margin }
