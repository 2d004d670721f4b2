package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/innoquim/erp-backend/internal/application/auth"
	appkardex "github.com/innoquim/erp-backend/internal/application/kardex"
	"github.com/innoquim/erp-backend/internal/application/orders"
	"github.com/innoquim/erp-backend/internal/application/production"
	"github.com/innoquim/erp-backend/internal/application/reception"
	"github.com/innoquim/erp-backend/internal/application/report"
	"github.com/innoquim/erp-backend/internal/application/usecase"
	infrapdf "github.com/innoquim/erp-backend/internal/infrastructure/pdf"
	"github.com/innoquim/erp-backend/internal/infrastructure/postgres"
	httpRouter "github.com/innoquim/erp-backend/internal/interfaces/http"
	"github.com/innoquim/erp-backend/pkg/config"
	"github.com/innoquim/erp-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
		Level:   "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios sobre el pool (lecturas fuera de transacción).
	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	materialRepo := postgres.NewRawMaterialRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	kardexRepo := postgres.NewKardexRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	receptionRepo := postgres.NewReceptionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Núcleo Kardex: movimientos con costo promedio ponderado.
	kardexUC := appkardex.NewRecordMovementUseCase(txRunner, kardexRepo, materialRepo, productRepo, warehouseRepo)

	// Flujos que orquestan el Kardex dentro de sus propias transacciones.
	receptionUC := reception.NewReceptionUseCase(txRunner, kardexUC, receptionRepo, materialRepo, supplierRepo, warehouseRepo)
	batchUC := production.NewBatchUseCase(txRunner, kardexUC, batchRepo, materialRepo, productRepo, warehouseRepo)
	orderUC := orders.NewOrderUseCase(txRunner, kardexUC, orderRepo, productRepo, clientRepo)

	// Catálogos.
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	unitUC := usecase.NewUnitUseCase(unitRepo)
	materialUC := usecase.NewRawMaterialUseCase(materialRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	clientUC := usecase.NewClientUseCase(clientRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	userUC := usecase.NewUserUseCase(userRepo)

	// Reporte de valorización (PDF con Maroto).
	pdfGenerator := infrapdf.NewMarotoValuationGenerator()
	reportUC := report.NewValuationUseCase(kardexRepo, stockRepo, materialRepo, productRepo, warehouseRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "INNO-QUIM ERP API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      userUC,
		WarehouseUC: warehouseUC,
		UnitUC:      unitUC,
		MaterialUC:  materialUC,
		ProductUC:   productUC,
		ClientUC:    clientUC,
		SupplierUC:  supplierUC,
		KardexUC:    kardexUC,
		ReceptionUC: receptionUC,
		BatchUC:     batchUC,
		OrderUC:     orderUC,
		ReportUC:    reportUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
