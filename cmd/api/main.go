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

	"github.com/kontia/kontia-api/internal/application/activos"
	"github.com/kontia/kontia-api/internal/application/auth"
	"github.com/kontia/kontia-api/internal/application/categorias"
	"github.com/kontia/kontia-api/internal/application/cfdis"
	"github.com/kontia/kontia-api/internal/application/fiscal"
	"github.com/kontia/kontia-api/internal/application/saldos"
	appsat "github.com/kontia/kontia-api/internal/application/sat"
	"github.com/kontia/kontia-api/internal/infrastructure/excel"
	"github.com/kontia/kontia-api/internal/infrastructure/pdf"
	"github.com/kontia/kontia-api/internal/infrastructure/postgres"
	infrasat "github.com/kontia/kontia-api/internal/infrastructure/sat"
	httpRouter "github.com/kontia/kontia-api/internal/interfaces/http"
	"github.com/kontia/kontia-api/pkg/config"
	"github.com/kontia/kontia-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	clienteRepo := postgres.NewClienteRepository(pool)
	cfdiRepo := postgres.NewCFDIRepository(pool)
	activoRepo := postgres.NewActivoFijoRepository(pool)
	depRepo := postgres.NewDepreciacionRepository(pool)
	saldoRepo := postgres.NewSaldoFavorRepository(pool)
	declaracionRepo := postgres.NewDeclaracionRepository(pool)
	solicitudRepo := postgres.NewSolicitudSATRepository(pool)
	categoriaRepo := postgres.NewCategoriaRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	cfdiUC := cfdis.NewUseCase(cfdiRepo, clienteRepo, txRunner)
	fiscalUC := fiscal.NewUseCase(cfdiRepo, saldoRepo, declaracionRepo)
	activoUC := activos.NewUseCase(activoRepo, depRepo)
	saldoUC := saldos.NewUseCase(saldoRepo)
	categoriaUC := categorias.NewUseCase(categoriaRepo)

	// Servicios SAT. En modo dev no se invoca ningún WS: la verificación
	// reporta estado Error y la sincronización queda deshabilitada.
	var verificador appsat.Verificador
	var descargador appsat.Descargador
	if cfg.SAT.Environment == infrasat.AppEnvProd {
		verificador = infrasat.NewConsultaClient(cfg.SAT.ConsultaURL)
		fiel, err := infrasat.LoadFiel(cfg.SAT.CerPath, cfg.SAT.KeyPath)
		if err != nil {
			log.Fatal().Err(err).Msg("cargar FIEL")
		}
		if fiel != nil {
			descargador = infrasat.NewDescargaClient(fiel)
		}
	}
	verificacionUC := appsat.NewVerificacionUseCase(cfdiRepo, verificador)
	syncUC := appsat.NewSyncUseCase(solicitudRepo, clienteRepo, cfdiRepo, descargador, log)

	authUC := auth.NewAuthUseCase(userRepo, clienteRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    32 * 1024 * 1024, // lotes de XML
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kontia API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		CFDIUC:          cfdiUC,
		FiscalUC:        fiscalUC,
		ActivoUC:        activoUC,
		SaldoUC:         saldoUC,
		VerificacionUC:  verificacionUC,
		SyncUC:          syncUC,
		CategoriaUC:     categoriaUC,
		DeclaracionRepo: declaracionRepo,
		ClienteRepo:     clienteRepo,
		CFDIRepo:        cfdiRepo,
		Exporter:        excel.NewExporter(),
		Acuse:           pdf.NewAcuseGenerator(),
		JWTSecret:       cfg.JWT.Secret,
	})

	// Sondeo de solicitudes de descarga en curso. El SAT tarda minutos u
	// horas en preparar los paquetes; el cliente HTTP también puede forzar
	// el avance con POST /api/sat/sync/:id/procesar.
	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()
	if descargador != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-pollCtx.Done():
					return
				case <-ticker.C:
					syncUC.ProcesarPendientes(pollCtx, 10)
				}
			}
		}()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancelPoll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
