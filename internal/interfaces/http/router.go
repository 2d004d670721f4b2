package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/innoquim/erp-backend/internal/application/auth"
	appkardex "github.com/innoquim/erp-backend/internal/application/kardex"
	"github.com/innoquim/erp-backend/internal/application/orders"
	"github.com/innoquim/erp-backend/internal/application/production"
	"github.com/innoquim/erp-backend/internal/application/reception"
	"github.com/innoquim/erp-backend/internal/application/report"
	"github.com/innoquim/erp-backend/internal/application/usecase"
	"github.com/innoquim/erp-backend/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	WarehouseUC *usecase.WarehouseUseCase
	UnitUC      *usecase.UnitUseCase
	MaterialUC  *usecase.RawMaterialUseCase
	ProductUC   *usecase.ProductUseCase
	ClientUC    *usecase.ClientUseCase
	SupplierUC  *usecase.SupplierUseCase
	KardexUC    *appkardex.RecordMovementUseCase
	ReceptionUC *reception.ReceptionUseCase
	BatchUC     *production.BatchUseCase
	OrderUC     *orders.OrderUseCase
	ReportUC    *report.ValuationUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
// Política de roles: bodeguero opera Kardex y recepciones, produccion opera
// lotes, vendedor opera órdenes; admin puede todo. Las lecturas de catálogo
// quedan abiertas a cualquier usuario autenticado.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	soloAdmin := RequireRole(entity.RoleAdmin)
	bodega := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	produccion := RequireRole(entity.RoleAdmin, entity.RoleProduccion)
	ventas := RequireRole(entity.RoleAdmin, entity.RoleVendedor)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Users (protegido)
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", userHandler.Me)
	users.Get("/", soloAdmin, userHandler.List)
	users.Get("/:id", soloAdmin, userHandler.GetByID)

	// Warehouses (protegido)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", bodega, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", bodega, warehouseHandler.Update)
	warehouses.Delete("/:id", soloAdmin, warehouseHandler.Delete)

	// Units (protegido)
	units := protected.Group("/units")
	unitHandler := NewUnitHandler(deps.UnitUC)
	units.Post("/", soloAdmin, unitHandler.Create)
	units.Get("/", unitHandler.List)
	units.Get("/:id", unitHandler.GetByID)
	units.Delete("/:id", soloAdmin, unitHandler.Delete)

	// Raw materials (protegido)
	materials := protected.Group("/raw-materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC)
	materials.Post("/", bodega, materialHandler.Create)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", bodega, materialHandler.Update)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", bodega, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", bodega, productHandler.Update)
	products.Delete("/:id", soloAdmin, productHandler.Delete)

	// Clients (protegido, ventas)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", ventas, clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", ventas, clientHandler.Update)
	clients.Delete("/:id", soloAdmin, clientHandler.Delete)

	// Suppliers (protegido, bodega)
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", bodega, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", bodega, supplierHandler.Update)
	suppliers.Delete("/:id", soloAdmin, supplierHandler.Delete)

	// Kardex (protegido)
	kardexGroup := protected.Group("/kardex")
	kardexHandler := NewKardexHandler(deps.KardexUC)
	kardexGroup.Post("/movements", bodega, kardexHandler.RegisterMovement)
	kardexGroup.Post("/adjustments", bodega, kardexHandler.Adjust)
	kardexGroup.Get("/balance", kardexHandler.GetBalance)
	kardexGroup.Get("/history", kardexHandler.History)

	// Receptions (protegido, bodega)
	receptions := protected.Group("/receptions")
	receptionHandler := NewReceptionHandler(deps.ReceptionUC)
	receptions.Post("/", bodega, receptionHandler.Create)
	receptions.Get("/", receptionHandler.List)
	receptions.Get("/:id", receptionHandler.GetByID)

	// Production batches (protegido, produccion)
	batches := protected.Group("/production/batches")
	batchHandler := NewBatchHandler(deps.BatchUC)
	batches.Post("/", produccion, batchHandler.Create)
	batches.Get("/", batchHandler.List)
	batches.Get("/:id", batchHandler.GetByID)
	batches.Post("/:id/materials", produccion, batchHandler.AddMaterial)
	batches.Delete("/:id/materials/:line_id", produccion, batchHandler.RemoveMaterial)
	batches.Post("/:id/start", produccion, batchHandler.Start)
	batches.Post("/:id/complete", produccion, batchHandler.Complete)
	batches.Post("/:id/cancel", produccion, batchHandler.Cancel)

	// Sales orders (protegido, ventas)
	orderGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orderGroup.Post("/", ventas, orderHandler.Create)
	orderGroup.Get("/", orderHandler.List)
	orderGroup.Get("/:id", orderHandler.GetByID)
	orderGroup.Post("/:id/items", ventas, orderHandler.AddItem)
	orderGroup.Put("/:id/items/:item_id", ventas, orderHandler.UpdateItem)
	orderGroup.Delete("/:id/items/:item_id", ventas, orderHandler.RemoveItem)
	orderGroup.Post("/:id/confirm", ventas, orderHandler.Confirm)
	orderGroup.Post("/:id/complete", ventas, orderHandler.Complete)
	orderGroup.Post("/:id/cancel", ventas, orderHandler.Cancel)

	// Reports (protegido)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/valuation/:warehouse_id", reportHandler.ValuationJSON)
	reports.Get("/valuation/:warehouse_id/pdf", reportHandler.ValuationPDF)
}
