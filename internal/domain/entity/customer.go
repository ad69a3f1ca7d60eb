package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Condición frente al IVA del cliente.
const (
	TaxConditionRI = "RI" // responsable inscripto
	TaxConditionMT = "MT" // monotributista
	TaxConditionCF = "CF" // consumidor final
	TaxConditionEX = "EX" // exento
)

// Estados de cuenta del cliente.
const (
	CustomerStatusActive  = "ACTIVE"
	CustomerStatusBlocked = "BLOCKED"
)

// Customer representa un cliente del comercio.
// Balance y LastPurchaseAt los calcula el backend; el cliente nunca los envía.
type Customer struct {
	ID             int64           `json:"id"`
	TaxID          string          `json:"taxId"` // CUIT/DNI
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	TaxCondition   string          `json:"taxCondition"`
	PriceListID    *int64          `json:"priceListId,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	LastPurchaseAt *time.Time      `json:"lastPurchaseAt,omitempty"`
	Status         string          `json:"status"`
	Tags           []string        `json:"tags,omitempty"`
}

// Blocked indica si la cuenta está bloqueada.
func (c Customer) Blocked() bool {
	return c.Status == CustomerStatusBlocked
}

// HasDebt indica saldo deudor.
func (c Customer) HasDebt() bool {
	return c.Balance.IsPositive()
}

// ValidTaxCondition reporta si s es una condición frente al IVA conocida.
func ValidTaxCondition(s string) bool {
	switch s {
	case TaxConditionRI, TaxConditionMT, TaxConditionCF, TaxConditionEX:
		return true
	}
	return false
}
