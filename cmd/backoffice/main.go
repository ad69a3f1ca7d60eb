package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/backoffice-pos/docs"
	"github.com/jhoicas/backoffice-pos/internal/application/auth"
	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/application/inventory"
	"github.com/jhoicas/backoffice-pos/internal/application/listing"
	"github.com/jhoicas/backoffice-pos/internal/application/notify"
	"github.com/jhoicas/backoffice-pos/internal/application/session"
	"github.com/jhoicas/backoffice-pos/internal/application/usecase"
	"github.com/jhoicas/backoffice-pos/internal/infrastructure/api"
	"github.com/jhoicas/backoffice-pos/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/backoffice-pos/internal/interfaces/http"
	"github.com/jhoicas/backoffice-pos/pkg/config"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.API.BaseURL).
		Str("session_store", cfg.Session.Store).
		Msg("iniciando back-office")

	ctx := context.Background()
	kv, closeKV, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de sesión")
	}
	defer closeKV()

	store := session.NewStore(kv, cfg.Session.Namespace, log)
	if err := store.Init(ctx); err != nil {
		// Sesión ilegible: se arranca sin sesión en lugar de fallar.
		log.Warn().Err(err).Msg("sesión guardada inválida, se descarta")
		_ = store.Clear(ctx)
	}

	gw := api.NewGateway(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, store, log)

	notices := notify.NewCenter(cfg.UI.NoticeTTL, log)
	stockClient := api.NewStockClient(gw)

	catalogUC := usecase.NewCatalogUseCase(api.NewCatalogClient(gw), 0)
	customerUC := usecase.NewCustomerUseCase(api.NewCustomerClient(gw), notices, log)
	productUC := usecase.NewProductUseCase(api.NewProductClient(gw), catalogUC, notices, log)
	saleUC := usecase.NewSaleUseCase(api.NewSalesClient(gw), notices, log)
	movementUC := inventory.NewMovementUseCase(stockClient, log)
	transferUC := inventory.NewTransferUseCase(stockClient, notices, log)
	sessionUC := inventory.NewSessionUseCase(stockClient, notices, log)
	authUC := auth.NewAuthUseCase(api.NewAuthClient(gw), store)

	lcfg := listing.Config{
		Debounce: cfg.UI.ListDebounce,
		Timeout:  cfg.API.Timeout,
		Log:      log,
		OnError:  func(err error) { notices.Error(err, "No se pudo cargar el listado") },
	}
	movements := dto.MovementFilter{}
	movements.DefaultPage()
	pages := httpRouter.Pages{
		Movements: listing.NewLoader(movementUC.ListMovements, movements, lcfg),
		Customers: listing.NewLoader(customerUC.List, dto.CustomerFilter{Page: 1, PageSize: cfg.UI.DefaultPageSize}, lcfg),
		Products:  listing.NewLoader(productUC.List, dto.ProductFilter{Page: 1, PageSize: cfg.UI.DefaultPageSize}, lcfg),
	}
	customerUC.Attach(pages.Customers)
	productUC.Attach(pages.Products)

	// Logout y 401 del backend comparten el mismo cierre: sesión y estado de vista.
	authUC.OnLogout(func(context.Context) {
		pages.Reset()
		transferUC.Reset()
		notices.Clear()
	})
	gw.OnUnauthorized(func(ctx context.Context) {
		if err := authUC.Logout(ctx); err != nil {
			log.Error().Err(err).Msg("no se pudo limpiar la sesión")
		}
	})

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		Session:    store,
		AuthUC:     authUC,
		CustomerUC: customerUC,
		ProductUC:  productUC,
		CatalogUC:  catalogUC,
		SaleUC:     saleUC,
		MovementUC: movementUC,
		TransferUC: transferUC,
		SessionUC:  sessionUC,
		Pages:      pages,
		Notices:    notices,
	}, log)

	// Especificación cruda, siempre disponible desde el binario.
	app.Get("/swagger.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})
	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Back-office POS",
		}))
	}

	go func() {
		addr := cfg.HTTP.Addr()
		log.Info().Str("addr", addr).Msg("servidor HTTP escuchando")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	pages.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
