package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-pos/internal/application/auth"
	"github.com/jhoicas/backoffice-pos/internal/application/inventory"
	"github.com/jhoicas/backoffice-pos/internal/application/notify"
	"github.com/jhoicas/backoffice-pos/internal/application/usecase"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Session    SessionChecker
	AuthUC     *auth.AuthUseCase
	CustomerUC *usecase.CustomerUseCase
	ProductUC  *usecase.ProductUseCase
	CatalogUC  *usecase.CatalogUseCase
	SaleUC     *usecase.SaleUseCase
	MovementUC *inventory.MovementUseCase
	TransferUC *inventory.TransferUseCase
	SessionUC  *inventory.SessionUseCase
	Pages      Pages
	Notices    *notify.Center
}

// Router registra las rutas del BFF.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Sesión (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/session", authHandler.Login)
	api.Get("/session", authHandler.Me)
	api.Delete("/session", authHandler.Logout)

	// Rutas protegidas (requieren sesión del back-office)
	protected := api.Group("/", RequireSession(deps.Session))
	managers := RequireRole(entity.RoleAdmin, entity.RoleManager)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/", customerHandler.List)
	customers.Post("/", customerHandler.Create)
	customers.Get("/template", customerHandler.Template)
	customers.Post("/import", managers, customerHandler.Import)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)
	customers.Put("/:id/status", customerHandler.SetStatus)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/template", productHandler.Template)
	products.Post("/import", managers, productHandler.Import)
	products.Post("/archive", managers, productHandler.ArchiveBatch)
	products.Post("/margin", productHandler.Margin)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Archive)

	catalog := protected.Group("/catalog")
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	catalog.Get("/categories", catalogHandler.Categories)
	catalog.Get("/price-lists", catalogHandler.PriceLists)
	catalog.Get("/payment-methods", catalogHandler.PaymentMethods)

	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Get("/", saleHandler.List)
	sales.Post("/", saleHandler.Create)
	sales.Post("/:id/cancel", saleHandler.Cancel)

	stock := protected.Group("/stock")
	inventoryHandler := NewInventoryHandler(deps.MovementUC, deps.TransferUC, deps.SessionUC)
	stock.Get("/overview", inventoryHandler.Overview)
	stock.Get("/movements", inventoryHandler.Movements)
	stock.Get("/search", inventoryHandler.Search)
	stock.Get("/transfers", inventoryHandler.Transfers)
	stock.Post("/transfers", inventoryHandler.CreateTransfer)
	stock.Post("/transfers/:ref/receive", inventoryHandler.ReceiveTransfer)
	stock.Get("/sessions", inventoryHandler.Sessions)
	stock.Post("/sessions", inventoryHandler.CreateSession)
	stock.Get("/sessions/:id", inventoryHandler.Session)
	stock.Post("/sessions/:id/commit", RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleStockist), inventoryHandler.CommitSession)

	ui := protected.Group("/ui")
	uiHandler := NewUIHandler(deps.Notices)
	pageRoutes(ui.Group("/movements"), deps.Pages.Movements, prepareMovements)
	pageRoutes(ui.Group("/customers"), deps.Pages.Customers, prepareCustomers)
	pageRoutes(ui.Group("/products"), deps.Pages.Products, prepareProducts)
	ui.Get("/notices", uiHandler.Notices)
	ui.Delete("/notices/:id", uiHandler.DismissNotice)
}
