package dto

// CustomerFilter filtros del listado de clientes. Search se reenvía tal cual al servidor.
type CustomerFilter struct {
	Search          string `query:"search" json:"search,omitempty"`
	Status          string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=ACTIVE BLOCKED"`
	WithDebt        bool   `query:"withDebt" json:"withDebt,omitempty"`
	NoPurchasesDays int    `query:"noPurchasesDays" json:"noPurchasesDays,omitempty" validate:"gte=0"`
	Page            int    `query:"page" json:"page" validate:"gte=0"`
	PageSize        int    `query:"pageSize" json:"pageSize" validate:"gte=0,lte=200"`
}

// CustomerInput entrada para crear/actualizar un cliente.
// No incluye balance ni última compra: los calcula el servidor.
type CustomerInput struct {
	TaxID        string   `json:"taxId" validate:"required,max=20"`
	Name         string   `json:"name" validate:"required,min=1,max=120"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string   `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address      string   `json:"address,omitempty" validate:"omitempty,max=200"`
	TaxCondition string   `json:"taxCondition" validate:"required,taxcond"`
	PriceListID  *int64   `json:"priceListId,omitempty" validate:"omitempty,gt=0"`
	Status       string   `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE BLOCKED"`
	Tags         []string `json:"tags,omitempty" validate:"omitempty,dive,required,max=30"`
}

// CustomerStatusRequest cambio de estado (bloquear/desbloquear).
type CustomerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE BLOCKED"`
}
