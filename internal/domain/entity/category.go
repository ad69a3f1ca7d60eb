package entity

// Category es una categoría de productos con sus subcategorías anidadas.
type Category struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// Subcategory pertenece a exactamente una categoría.
type Subcategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"categoryId,omitempty"`
	Name       string `json:"name"`
}

// HasSubcategory indica si la subcategoría pertenece a la categoría.
func (c Category) HasSubcategory(id int64) bool {
	for _, s := range c.Subcategories {
		if s.ID == id {
			return true
		}
	}
	return false
}

// PriceList es una lista de precios asignable a clientes.
type PriceList struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
}

// PaymentMethod es un medio de pago aceptado en ventas.
type PaymentMethod struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code,omitempty"`
	Active bool   `json:"active"`
}
