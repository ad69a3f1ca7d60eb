package entity

// Roles que emite el backend.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleCashier  = "cashier"
	RoleStockist = "stockist"
)

// User es el operador autenticado tal como lo devuelve el login.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	BranchID *int64 `json:"branchId,omitempty"`
}
