package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kontia/kontia-api/internal/application/activos"
	"github.com/kontia/kontia-api/internal/application/auth"
	"github.com/kontia/kontia-api/internal/application/categorias"
	"github.com/kontia/kontia-api/internal/application/cfdis"
	"github.com/kontia/kontia-api/internal/application/fiscal"
	"github.com/kontia/kontia-api/internal/application/saldos"
	"github.com/kontia/kontia-api/internal/application/sat"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	CFDIUC          *cfdis.UseCase
	FiscalUC        *fiscal.UseCase
	ActivoUC        *activos.UseCase
	SaldoUC         *saldos.UseCase
	VerificacionUC  *sat.VerificacionUseCase
	SyncUC          *sat.SyncUseCase
	CategoriaUC     *categorias.UseCase
	DeclaracionRepo repository.DeclaracionRepository
	ClienteRepo     repository.ClienteRepository
	CFDIRepo        repository.CFDIRepository
	Exporter        ExportadorExcel
	Acuse           GeneradorAcuse
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// CFDIs (protegido)
	cfdiGroup := protected.Group("/cfdis")
	cfdiHandler := NewCFDIHandler(deps.CFDIUC)
	cfdiGroup.Post("/cargar", cfdiHandler.Cargar)
	cfdiGroup.Get("/", cfdiHandler.List)
	cfdiGroup.Patch("/:id/clasificar", cfdiHandler.Clasificar)
	cfdiGroup.Put("/:id/cancelado", cfdiHandler.MarcarCancelado)
	cfdiGroup.Delete("/:id", RequireRole("admin"), cfdiHandler.Eliminar)

	// Fiscal y declaraciones (protegido)
	fiscalHandler := NewFiscalHandler(deps.FiscalUC, deps.DeclaracionRepo, deps.ClienteRepo, deps.Acuse)
	fiscalGroup := protected.Group("/fiscal")
	fiscalGroup.Get("/resumen/:ejercicio", fiscalHandler.ResumenAnual)
	fiscalGroup.Get("/resumen/:ejercicio/:mes", fiscalHandler.ResumenMensual)
	fiscalGroup.Get("/acumulado/:ejercicio/:mes", fiscalHandler.Acumulado)

	declaraciones := protected.Group("/declaraciones")
	declaraciones.Post("/calcular", fiscalHandler.CalcularDeclaracion)
	declaraciones.Get("/", fiscalHandler.ListDeclaraciones)
	declaraciones.Post("/:id/presentar", fiscalHandler.Presentar)
	declaraciones.Get("/:id/acuse", fiscalHandler.Acuse)

	// Activos fijos (protegido)
	activosGroup := protected.Group("/activos")
	activoHandler := NewActivoHandler(deps.ActivoUC)
	activosGroup.Post("/", activoHandler.Crear)
	activosGroup.Get("/", activoHandler.List)
	activosGroup.Get("/:id/calendario", activoHandler.Calendario)
	activosGroup.Post("/:id/depreciar", activoHandler.RegistrarPeriodo)
	activosGroup.Post("/:id/disponer", activoHandler.Disponer)

	// Saldos a favor (protegido)
	saldosGroup := protected.Group("/saldos")
	saldoHandler := NewSaldoHandler(deps.SaldoUC)
	saldosGroup.Post("/", saldoHandler.Crear)
	saldosGroup.Get("/", saldoHandler.List)
	saldosGroup.Get("/disponible", saldoHandler.Disponible)
	saldosGroup.Post("/:id/aplicar", saldoHandler.Aplicar)
	saldosGroup.Delete("/:id", saldoHandler.Eliminar)

	// SAT (protegido)
	satGroup := protected.Group("/sat")
	satHandler := NewSATHandler(deps.VerificacionUC, deps.SyncUC)
	satGroup.Post("/cfdis/:id/verificar", satHandler.Verificar)
	satGroup.Post("/sync", satHandler.Solicitar)
	satGroup.Get("/sync", satHandler.Solicitudes)
	satGroup.Post("/sync/:id/procesar", satHandler.Procesar)

	// Categorías (protegido; alta solo admin o contador)
	categoriasGroup := protected.Group("/categorias")
	categoriaHandler := NewCategoriaHandler(deps.CategoriaUC)
	categoriasGroup.Post("/", RequireRole("admin", "contador"), categoriaHandler.Crear)
	categoriasGroup.Get("/", categoriaHandler.List)
	categoriasGroup.Post("/sugerir", categoriaHandler.Sugerir)

	// Export (protegido)
	exportGroup := protected.Group("/export")
	exportHandler := NewExportHandler(deps.CFDIRepo, deps.FiscalUC, deps.Exporter)
	exportGroup.Get("/cfdis/:ejercicio", exportHandler.CFDIs)
	exportGroup.Get("/resumen/:ejercicio", exportHandler.Resumen)
}
