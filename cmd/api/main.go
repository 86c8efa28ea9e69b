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

	"github.com/jhoicas/Leadius-api/internal/application/allocation"
	"github.com/jhoicas/Leadius-api/internal/application/auth"
	"github.com/jhoicas/Leadius-api/internal/application/ingestion"
	"github.com/jhoicas/Leadius-api/internal/application/usecase"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/objectstore"
	infrapdf "github.com/jhoicas/Leadius-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/redislock"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/Leadius-api/internal/interfaces/http"
	"github.com/jhoicas/Leadius-api/pkg/config"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

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
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	sqlDB := postgres.SQLDB(pool)
	if err := postgres.Migrate(ctx, sqlDB); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	_ = sqlDB.Close()

	leadRepo := postgres.NewLeadRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	ledgerRepo := postgres.NewCreditLedgerRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Lock de ingesta: Redis si está configurado y responde, si no un mutex en proceso.
	rdb, err := redislock.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible, se usa lock local")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Origen remoto opcional (S3 / R2).
	var remote ingestion.RemoteSource
	if cfg.S3.Enabled() {
		s3Client, err := objectstore.NewS3Client(ctx, cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("cliente S3, se ingesta solo desde disco")
		} else {
			remote = objectstore.NewS3Source(s3Client, cfg.S3.Bucket, cfg.S3.Prefix, log)
		}
	}

	scanner := ingestion.NewScanner(leadRepo, spreadsheet.NewFileReader(), redislock.New(rdb), remote,
		ingestion.Config{
			SourceDirs:     cfg.Ingestion.SourceDirs,
			MinPhoneLength: cfg.Ingestion.MinPhoneLength,
			LockTTL:        cfg.Ingestion.LockTTL,
		}, log)

	allocationUC := allocation.NewUseCase(txRunner, accountRepo, leadRepo, scanner, cfg.Ingestion.LockDuration, log)
	accountUC := usecase.NewAccountUseCase(accountRepo, paymentRepo, ledgerRepo, txRunner, cfg.Pricing, log)
	leadUC := usecase.NewLeadUseCase(leadRepo, accountRepo, infrapdf.NewMarotoLeadsPDF(), log)
	authUC := auth.NewAuthUseCase(accountRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	if _, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Error().Err(err).Msg("sembrar cuenta admin")
	}

	// Worker de ingesta: corre al arrancar y luego cada INGEST_INTERVAL.
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		ingestion.NewWorker(scanner, cfg.Ingestion.Interval, log).Start(ctx)
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // la reposición perezosa puede leer varias hojas
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Leadius API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		AccountUC: accountUC,
		LeadUC:    leadUC,
		Allocator: allocationUC,
		Ingester:  scanner,
		JWTSecret: cfg.JWT.Secret,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("el worker de ingesta no terminó a tiempo")
	}

	log.Info().Msg("aplicación detenida")
}
